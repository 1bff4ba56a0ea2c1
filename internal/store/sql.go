package store

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"sales-analytics/internal/config"
	"sales-analytics/internal/errors"
	"sales-analytics/internal/models"
)

const pingTimeout = 6 * time.Second

// Column names of the transactions table, in scan order.
var columns = []string{
	"NumeroFatura",
	"CodigoProduto",
	"Descricao",
	"Quantidade",
	"DataFatura",
	"PrecoUnitario",
	"IDCliente",
	"Pais",
	"CategoriaProduto",
	"CategoriaPreco",
	"ValorTotalFatura",
	"FaturaUnica",
	"Ano",
	"Mes",
	"Dia",
	"DiaSemana",
	"SemanaAno",
}

type dialect struct {
	driverName string
	quote      func(string) string
}

func doubleQuote(id string) string { return `"` + id + `"` }
func backtick(id string) string    { return "`" + id + "`" }

var dialects = map[string]dialect{
	config.DriverPostgres: {driverName: "pgx", quote: doubleQuote},
	config.DriverSQLite:   {driverName: "sqlite", quote: doubleQuote},
	config.DriverMySQL:    {driverName: "mysql", quote: backtick},
}

// SQLStore reads transactions through database/sql. The table is owned
// elsewhere and is never written to, except that an SQLite database is
// migrated to the expected schema on open.
type SQLStore struct {
	db         *sql.DB
	selectRows string
	countRows  string
}

func NewSQLStore(ctx context.Context, cfg config.DatabaseConfig) (*SQLStore, error) {
	d, ok := dialects[cfg.Driver]
	if !ok {
		return nil, fmt.Errorf("unsupported sql driver %q", cfg.Driver)
	}

	dsn := cfg.URL
	switch cfg.Driver {
	case config.DriverMySQL:
		var err error
		if dsn, err = mysqlDSN(cfg.URL); err != nil {
			return nil, err
		}
	case config.DriverSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.URL), 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
		if err := RunMigrations(cfg.URL); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}

	db, err := sql.Open(d.driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Driver, err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w: %w", errors.ErrDataAccess, err)
	}

	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = d.quote(c)
	}
	table := d.quote(cfg.Table)

	return &SQLStore{
		db:         db,
		selectRows: fmt.Sprintf("SELECT %s FROM %s", strings.Join(quoted, ", "), table),
		countRows:  fmt.Sprintf("SELECT COUNT(*) FROM %s", table),
	}, nil
}

// mysqlDSN forces parseTime so DATETIME columns scan into time.Time.
func mysqlDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parse mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	return cfg.FormatDSN(), nil
}

func (s *SQLStore) Acquire(ctx context.Context) (Session, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w: %w", errors.ErrDataAccess, err)
	}
	return &sqlSession{conn: conn, store: s}, nil
}

func (s *SQLStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

type sqlSession struct {
	conn  *sql.Conn
	store *SQLStore
}

func (s *sqlSession) Transactions(ctx context.Context) ([]models.Transaction, error) {
	rows, err := s.conn.QueryContext(ctx, s.store.selectRows)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w: %w", errors.ErrDataAccess, err)
	}
	defer rows.Close()

	result := make([]models.Transaction, 0, 1024)
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row %d: %w: %w", len(result), errors.ErrMalformedRow, err)
		}
		result = append(result, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w: %w", errors.ErrDataAccess, err)
	}

	return result, nil
}

func (s *sqlSession) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.conn.QueryRowContext(ctx, s.store.countRows).Scan(&n); err != nil {
		return 0, fmt.Errorf("count transactions: %w: %w", errors.ErrDataAccess, err)
	}
	return n, nil
}

func (s *sqlSession) Close() error {
	return s.conn.Close()
}

func scanTransaction(rows *sql.Rows) (models.Transaction, error) {
	var (
		tx                                      models.Transaction
		invoice, code, description              sql.NullString
		customer, country, category, priceLabel sql.NullString
		date                                    sql.NullTime
		singleLine                              sql.NullBool
		cal                                     calendarColumns
	)

	err := rows.Scan(
		&invoice, &code, &description, &tx.Quantity, &date, &tx.UnitPrice,
		&customer, &country, &category, &priceLabel, &tx.TotalValue, &singleLine,
		&cal.year, &cal.month, &cal.day, &cal.dayOfWeek, &cal.week,
	)
	if err != nil {
		return models.Transaction{}, err
	}

	tx.InvoiceNumber = invoice.String
	tx.ProductCode = code.String
	tx.Description = description.String
	tx.InvoiceDate = date.Time
	tx.CustomerID = customer.String
	tx.Country = country.String
	tx.ProductCategory = category.String
	tx.PriceCategory = priceLabel.String
	tx.SingleLine = singleLine.Bool
	cal.apply(&tx)

	return tx, nil
}

// RedactedURL returns cfg.URL with the password masked, for logs.
func RedactedURL(cfg config.DatabaseConfig) string {
	switch cfg.Driver {
	case config.DriverMySQL:
		if mc, err := mysql.ParseDSN(cfg.URL); err == nil && mc.Passwd != "" {
			mc.Passwd = "xxxxx"
			return mc.FormatDSN()
		}
	case config.DriverPostgres:
		if u, err := url.Parse(cfg.URL); err == nil && u.User != nil {
			return u.Redacted()
		}
	}
	return cfg.URL
}
