package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
)

// DB wraps the PostgreSQL connection pool
type DB struct {
	conn *sql.DB
}

// New opens a connection pool and verifies connectivity
func New(connStr string) (*DB, error) {
	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(5 * time.Minute)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{conn: conn}, nil
}

// Migrate applies all pending migrations from the given source directory
func (db *DB) Migrate(migrationsPath string) error {
	driver, err := postgres.WithInstance(db.conn, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+migrationsPath, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Ping verifies the connection is alive
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// ServerVersion returns the backing store's version string
func (db *DB) ServerVersion(ctx context.Context) (string, error) {
	var version string
	err := db.conn.QueryRowContext(ctx, "SELECT version()").Scan(&version)
	if err != nil {
		return "", fmt.Errorf("failed to get server version: %w", err)
	}
	return version, nil
}

// TimescaleStatus reports whether the timescaledb extension is installed and
// how many hypertables it manages
func (db *DB) TimescaleStatus(ctx context.Context) (bool, int, error) {
	var installed bool
	err := db.conn.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM pg_extension WHERE extname = 'timescaledb')",
	).Scan(&installed)
	if err != nil {
		return false, 0, fmt.Errorf("failed to check timescaledb extension: %w", err)
	}
	if !installed {
		return false, 0, nil
	}

	var count int
	err = db.conn.QueryRowContext(ctx,
		"SELECT count(*) FROM timescaledb_information.hypertables",
	).Scan(&count)
	if err != nil {
		return true, 0, fmt.Errorf("failed to count hypertables: %w", err)
	}
	return true, count, nil
}

// TableRowCounts returns row counts for the core entity tables
func (db *DB) TableRowCounts(ctx context.Context) (map[string]int64, error) {
	tables := []string{"users", "assets", "portfolios", "positions", "orders", "ai_analyses", "risk_alerts"}

	counts := make(map[string]int64, len(tables))
	for _, table := range tables {
		var n int64
		err := db.conn.QueryRowContext(ctx, fmt.Sprintf("SELECT count(*) FROM %s", table)).Scan(&n)
		if err != nil {
			return nil, fmt.Errorf("failed to count rows in %s: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}

// Close closes the connection pool
func (db *DB) Close() error {
	return db.conn.Close()
}
