package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/Pesokrava/product_reviews/internal/config"
	"github.com/Pesokrava/product_reviews/internal/pkg/logger"
)

const pingTimeout = 5 * time.Second

// NewPostgresDB opens a pooled PostgreSQL connection and pings it
func NewPostgresDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// WaitForDB retries NewPostgresDB until the database answers or maxRetries is reached
func WaitForDB(cfg *config.Config, maxRetries int, retryDelay time.Duration, log *logger.Logger) (*sqlx.DB, error) {
	var err error

	for attempt := range maxRetries {
		var db *sqlx.DB
		db, err = NewPostgresDB(cfg)
		if err == nil {
			return db, nil
		}

		log.WithFields(map[string]any{
			"host":    cfg.Database.Host,
			"attempt": attempt + 1,
			"of":      maxRetries,
		}).Warnf("Database not ready: %v", err)

		if attempt < maxRetries-1 {
			time.Sleep(retryDelay)
		}
	}

	return nil, fmt.Errorf("failed to connect to database after %d retries: %w", maxRetries, err)
}
