package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tiffinly/tiffinly/internal/config"
	"github.com/tiffinly/tiffinly/internal/logger"
	"github.com/tiffinly/tiffinly/internal/types"
)

// IClient is the transactional seam the service layer depends on.
// Mutations that must be atomic (invoice creation + credit consumption
// + renewal-date advance) run inside a single WithTx call; the
// datastore is the serialization point between overlapping job runs.
type IClient interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error

	// TryAdvisoryLock takes a named cross-instance lock; see locks.go.
	TryAdvisoryLock(ctx context.Context, key string) (release func(), ok bool, err error)
}

// Querier is the subset of pgx shared by pools and transactions.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Client wraps a pgx pool and carries open transactions through the
// context so repositories join them transparently.
type Client struct {
	pool   *pgxpool.Pool
	logger *logger.Logger
}

// NewClient creates a new postgres client
func NewClient(pool *pgxpool.Pool, logger *logger.Logger) *Client {
	return &Client{pool: pool, logger: logger}
}

// NewPool builds a pgx connection pool from configuration.
func NewPool(ctx context.Context, cfg *config.Configuration) (*pgxpool.Pool, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.User,
		cfg.Postgres.Password, cfg.Postgres.DBName, cfg.Postgres.SSLMode,
	)
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres config: %w", err)
	}
	if cfg.Postgres.MaxOpenConns > 0 {
		poolCfg.MaxConns = int32(cfg.Postgres.MaxOpenConns)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	return pool, nil
}

// TxFromContext returns the transaction carried by the context, if any.
func TxFromContext(ctx context.Context) pgx.Tx {
	if tx, ok := ctx.Value(types.CtxDBTx).(pgx.Tx); ok {
		return tx
	}
	return nil
}

// Querier returns the active transaction when inside WithTx, otherwise
// the pool.
func (c *Client) Querier(ctx context.Context) Querier {
	if tx := TxFromContext(ctx); tx != nil {
		return tx
	}
	return c.pool
}

// WithTx runs fn inside a transaction. A nested call joins the
// transaction already carried by the context.
func (c *Client) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if TxFromContext(ctx) != nil {
		return fn(ctx)
	}

	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	txCtx := context.WithValue(ctx, types.CtxDBTx, tx)
	if err := fn(txCtx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			c.logger.Errorw("failed to rollback transaction", "error", rbErr)
		}
		return err
	}
	return tx.Commit(ctx)
}
