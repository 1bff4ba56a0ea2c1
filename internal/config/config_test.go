package config

import (
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "localhost",
			Port:         8000,
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		},
		Database: DatabaseConfig{
			Driver:       DriverSQLite,
			URL:          "./data/transactions.db",
			Table:        "transactions_sample",
			MaxOpenConns: 4,
			MaxIdleConns: 2,
		},
		Logger:   LoggerConfig{Level: "info", Format: "json"},
		Security: SecurityConfig{RateLimitRPS: 10, RateLimitBurst: 5},
	}
}

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"SERVER_HOST", "SERVER_PORT", "DB_DRIVER", "DATABASE_URL", "DB_TABLE", "SECURITY_ALLOWED_ORIGINS"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Address() != "localhost:8000" {
		t.Errorf("Address() = %q, want localhost:8000", cfg.Address())
	}
	if cfg.Database.Driver != DriverSQLite {
		t.Errorf("Driver = %q, want %q", cfg.Database.Driver, DriverSQLite)
	}
	if cfg.Database.Table != "transactions_sample" {
		t.Errorf("Table = %q, want transactions_sample", cfg.Database.Table)
	}
	if len(cfg.Security.AllowedOrigins) != 1 || cfg.Security.AllowedOrigins[0] != "*" {
		t.Errorf("AllowedOrigins = %v, want [*]", cfg.Security.AllowedOrigins)
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DB_DRIVER", "POSTGRES")
	t.Setenv("DATABASE_URL", "postgres://analytics@db/sales")
	t.Setenv("DB_CONN_MAX_LIFETIME", "5m")
	t.Setenv("SECURITY_ALLOWED_ORIGINS", "http://a.example, http://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Database.Driver != DriverPostgres {
		t.Errorf("Driver = %q, want %q", cfg.Database.Driver, DriverPostgres)
	}
	if cfg.Database.ConnMaxLifetime != 5*time.Minute {
		t.Errorf("ConnMaxLifetime = %v, want 5m", cfg.Database.ConnMaxLifetime)
	}
	if got := cfg.Security.AllowedOrigins; len(got) != 2 || got[1] != "http://b.example" {
		t.Errorf("AllowedOrigins = %v", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, true},
		{"unknown driver", func(c *Config) { c.Database.Driver = "oracle" }, true},
		{"empty url", func(c *Config) { c.Database.URL = "" }, true},
		{"table injection", func(c *Config) { c.Database.Table = "sales; DROP TABLE x" }, true},
		{"quoted table", func(c *Config) { c.Database.Table = `"sales"` }, true},
		{"sqlite custom table", func(c *Config) { c.Database.Table = "sales" }, true},
		{"postgres custom table", func(c *Config) { c.Database.Driver = DriverPostgres; c.Database.Table = "sales" }, false},
		{"csv ignores table", func(c *Config) { c.Database.Driver = DriverCSV; c.Database.Table = "" }, false},
		{"idle above open", func(c *Config) { c.Database.MaxIdleConns = 10 }, true},
		{"bad log level", func(c *Config) { c.Logger.Level = "trace" }, true},
		{"bad log format", func(c *Config) { c.Logger.Format = "xml" }, true},
		{"zero rate limit", func(c *Config) { c.Security.RateLimitRPS = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_SQLiteRejectsCustomTable(t *testing.T) {
	t.Setenv("DB_DRIVER", DriverSQLite)
	t.Setenv("DATABASE_URL", "./data/transactions.db")
	t.Setenv("DB_TABLE", "sales")

	if _, err := Load(); err == nil {
		t.Error("Load() should reject a table the sqlite migration does not create")
	}
}
