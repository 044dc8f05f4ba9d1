package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sethvargo/go-retry"
)

const (
	maxConns       = 10
	connectRetries = 5
	pingTimeout    = 5 * time.Second
)

// NewPool connects and pings, retrying with backoff while the database is
// still starting. A malformed URL fails immediately.
func NewPool(ctx context.Context, dbURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("parse db url: %w", err)
	}

	cfg.MaxConns = maxConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	backoff := retry.WithMaxRetries(connectRetries, retry.NewExponential(500*time.Millisecond))

	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()

		if err := pool.Ping(pingCtx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})

	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return pool, nil
}
