// Package database provides the PostgreSQL access layer shared by all
// entity stores. It wraps database/sql with the pgx driver and applies
// the embedded schema migrations on startup.
package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/lam-kelly/fritter/internal/config"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Service defines the database operations used by the entity stores.
type Service interface {
	Query(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) *sql.Row
	Exec(ctx context.Context, query string, args ...any) (sql.Result, error)
	Health() map[string]string
	Close() error
}

type service struct {
	db *sql.DB
}

// New opens a connection pool using DATABASE_URL and runs pending
// migrations. It panics on a misconfigured environment, matching the
// fail-fast startup of the rest of the stack.
func New() Service {
	dsn := config.MustGetEnv("DATABASE_URL")

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		panic(fmt.Sprintf("failed to open database: %v", err))
	}

	db.SetMaxOpenConns(poolSize())
	db.SetMaxIdleConns(poolSize() / 2)
	db.SetConnMaxLifetime(time.Hour)

	if err := runMigrations(db); err != nil {
		panic(fmt.Sprintf("failed to run migrations: %v", err))
	}

	slog.Info("Database service initialized")
	return &service{db: db}
}

// NewWithDB wraps an existing pool without running migrations. Used by
// tests that manage their own database lifecycle.
func NewWithDB(db *sql.DB) Service {
	return &service{db: db}
}

// RunMigrations applies all pending migrations to the given pool.
func RunMigrations(db *sql.DB) error {
	return runMigrations(db)
}

func runMigrations(db *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load migration source: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

func (s *service) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, query, args...)
}

func (s *service) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.db.QueryRowContext(ctx, query, args...)
}

func (s *service) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, query, args...)
}

// Health reports pool status for the /health endpoint.
func (s *service) Health() map[string]string {
	stats := make(map[string]string)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = err.Error()
		return stats
	}

	dbStats := s.db.Stats()
	stats["status"] = "up"
	stats["open_connections"] = strconv.Itoa(dbStats.OpenConnections)
	stats["in_use"] = strconv.Itoa(dbStats.InUse)
	stats["idle"] = strconv.Itoa(dbStats.Idle)

	return stats
}

func (s *service) Close() error {
	return s.db.Close()
}

func poolSize() int {
	if v := config.GetEnvOrDefault("DATABASE_MAX_CONNS", ""); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return 20
}
