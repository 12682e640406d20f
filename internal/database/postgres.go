// Package database opens the PostgreSQL pool used by the repositories and
// bootstraps the service schema.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/juju/errors"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/inZane-Dev/microservicios--producto--inventario/internal/config"
)

const (
	readyAttempts = 30
	readyDelay    = time.Second

	uniqueViolation = "23505"
)

// Connect creates the pgx pool and waits until the database answers pings.
func Connect(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := waitReady(ctx, logger, cfg.Name, pool.Ping); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// EnsureSchema applies idempotent DDL through database/sql. It runs once at
// startup before the pool serves requests.
func EnsureSchema(ctx context.Context, cfg config.DatabaseConfig, ddl string, logger *zap.Logger) error {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(1)

	if err := waitReady(ctx, logger, cfg.Name, db.PingContext); err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	logger.Info("schema ready", zap.String("database", cfg.Name))
	return nil
}

func waitReady(ctx context.Context, logger *zap.Logger, name string, ping func(context.Context) error) error {
	for i := 0; i < readyAttempts; i++ {
		if err := ping(ctx); err == nil {
			logger.Info("connected to database", zap.String("database", name))
			return nil
		}
		logger.Info("waiting for database",
			zap.String("database", name),
			zap.Int("attempt", i+1),
			zap.Int("max_attempts", readyAttempts),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(readyDelay):
		}
	}
	return fmt.Errorf("failed to connect to database after %d attempts", readyAttempts)
}

// IsUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
