package testutil

import (
	"context"

	"github.com/tiffinly/tiffinly/internal/postgres"
)

// MockDB satisfies the transactional client interface for tests. The
// in-memory stores are not transactional, so WithTx just runs the
// function; atomicity assertions belong in repository-level tests
// against a real database.
type MockDB struct{}

// NewMockDB creates a new mock transactional client
func NewMockDB() postgres.IClient {
	return &MockDB{}
}

func (m *MockDB) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// TryAdvisoryLock always grants the lock; single-process tests have no
// concurrent scheduler to exclude.
func (m *MockDB) TryAdvisoryLock(ctx context.Context, key string) (func(), bool, error) {
	return func() {}, true, nil
}
