package postgres

import (
	"context"
	"fmt"
)

// TryAdvisoryLock attempts a session-level advisory lock keyed by name.
// The lock is held on a dedicated connection until release is called,
// so it spans transactions; batch jobs take one per job type to keep
// overlapping scheduler triggers from running the same job twice.
// Returns ok=false without error when the lock is already held
// elsewhere.
func (c *Client) TryAdvisoryLock(ctx context.Context, key string) (release func(), ok bool, err error) {
	conn, err := c.pool.Acquire(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire connection for advisory lock: %w", err)
	}

	if err := conn.QueryRow(ctx, `SELECT pg_try_advisory_lock(hashtext($1))`, key).Scan(&ok); err != nil {
		conn.Release()
		return nil, false, fmt.Errorf("failed to acquire advisory lock: %w", err)
	}
	if !ok {
		conn.Release()
		return nil, false, nil
	}

	release = func() {
		// Unlock on a fresh context: the request context may already be
		// done by the time the job finishes.
		if _, err := conn.Exec(context.Background(), `SELECT pg_advisory_unlock(hashtext($1))`, key); err != nil {
			c.logger.Errorw("failed to release advisory lock", "key", key, "error", err)
		}
		conn.Release()
	}
	return release, true, nil
}
