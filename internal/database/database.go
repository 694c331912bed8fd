// Package database opens the audit trail's SQL connection pool and carries transactions
// through context for the repositories.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
)

// Supported driver names, as registered with database/sql.
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

const defaultPingTimeout = 5 * time.Second

// Config holds connection pool settings.
type Config struct {
	Driver             string
	ConnectionString   string
	MaxOpenConnections int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
	// PingTimeout bounds the connectivity check in Connect. Zero means five seconds.
	PingTimeout time.Duration
}

// Connect opens a pool for cfg and pings it once so a bad DSN fails at startup
// rather than on the first audited request.
func Connect(ctx context.Context, cfg Config) (*sql.DB, error) {
	if !slices.Contains([]string{DriverPostgres, DriverMySQL}, cfg.Driver) {
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := sql.Open(cfg.Driver, cfg.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConnections)
	db.SetMaxIdleConns(cfg.MaxIdleConnections)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	timeout := cfg.PingTimeout
	if timeout <= 0 {
		timeout = defaultPingTimeout
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}
