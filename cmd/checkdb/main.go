// Command checkdb verifies that the configured transaction store is reachable
// and prints how many rows the transaction table holds.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"sales-analytics/internal/config"
	"sales-analytics/internal/observability"
	"sales-analytics/internal/store"
)

func main() {
	timeout := flag.Duration("timeout", 30*time.Second, "time allowed to connect and count rows")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := observability.NewLogger(cfg.Logger)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := check(ctx, os.Stdout, cfg.Database); err != nil {
		logger.Error("database check failed", "error", err)
		os.Exit(1)
	}
}

func check(ctx context.Context, out io.Writer, cfg config.DatabaseConfig) error {
	fmt.Fprintf(out, "driver: %s\nurl:    %s\n", cfg.Driver, store.RedactedURL(cfg))

	st, err := store.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	session, err := st.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire session: %w", err)
	}
	defer session.Close()

	n, err := session.Count(ctx)
	if err != nil {
		return fmt.Errorf("count rows: %w", err)
	}

	fmt.Fprintf(out, "connection ok, %s holds %d rows\n", tableName(cfg), n)
	return nil
}

func tableName(cfg config.DatabaseConfig) string {
	if cfg.Driver == config.DriverCSV {
		return "csv file"
	}
	return cfg.Table
}
