package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool defaults applied when the corresponding Config value is zero. The
// snapshot reads that feed index builds run on this pool, so connections are
// kept long-lived rather than churned per batch.
const (
	defaultMaxConns     = 25
	defaultConnLifetime = time.Hour
	defaultConnIdleTime = 30 * time.Minute
	pingTimeout         = 5 * time.Second
)

// DB wraps a pgxpool connection pool.
type DB struct {
	*pgxpool.Pool
}

// Config holds database connection configuration.
type Config struct {
	URL             string
	MaxConnections  int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

func (c *Config) maxConns() int32 {
	if c.MaxConnections > 0 {
		return c.MaxConnections
	}
	return defaultMaxConns
}

func (c *Config) connLifetime() time.Duration {
	if c.MaxConnLifetime > 0 {
		return c.MaxConnLifetime
	}
	return defaultConnLifetime
}

func (c *Config) connIdleTime() time.Duration {
	if c.MaxConnIdleTime > 0 {
		return c.MaxConnIdleTime
	}
	return defaultConnIdleTime
}

// NewConnection creates a connection pool and verifies it with a bounded
// ping before handing it out.
func NewConnection(ctx context.Context, cfg *Config) (*DB, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	poolConfig.MaxConns = cfg.maxConns()
	poolConfig.MaxConnLifetime = cfg.connLifetime()
	poolConfig.MaxConnIdleTime = cfg.connIdleTime()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// Close closes the connection pool.
func (db *DB) Close() {
	db.Pool.Close()
}
