// internal/database/db.go
package database

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the global connection pool, nil when persistence is disabled.
var DB *pgxpool.Pool

// Connect initializes the global pool from the POSTGRES_* / PG_* env vars
// and verifies connectivity with a short ping.
func Connect(ctx context.Context) error {
	connStr := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s",
		os.Getenv("POSTGRES_USER"),
		os.Getenv("POSTGRES_PASSWORD"),
		os.Getenv("PG_HOST"),
		os.Getenv("PG_PORT"),
		os.Getenv("PG_DATABASE"),
	)

	config, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return fmt.Errorf("unable to parse pgx config: %w", err)
	}

	DB, err = pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return fmt.Errorf("unable to create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := DB.Ping(pingCtx); err != nil {
		return fmt.Errorf("db ping error: %w", err)
	}
	return nil
}

// Enabled reports whether settings persistence is available.
func Enabled() bool {
	return DB != nil
}
