package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Connect opens a PostgreSQL connection pool and verifies connectivity.
func Connect(ctx context.Context, postgresURI string) (*sqlx.DB, error) {
	if postgresURI == "" {
		return nil, fmt.Errorf("POSTGRES_URI is required")
	}

	pgDB, err := sqlx.ConnectContext(ctx, "postgres", postgresURI)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	// Configure connection pool
	pgDB.SetMaxOpenConns(25)
	pgDB.SetMaxIdleConns(25)
	pgDB.SetConnMaxLifetime(5 * time.Minute)
	pgDB.SetConnMaxIdleTime(1 * time.Minute)

	if err := pgDB.PingContext(ctx); err != nil {
		pgDB.Close()
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	return pgDB, nil
}
