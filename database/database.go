// Package database executes rendered statements against a live PostgreSQL server.
package database

import (
	"context"
)

// Executor runs a statement that returns no rows.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (int64, error)
}

// Database is an Executor that can also scope a batch of statements to one
// transaction. If fn returns an error or panics the transaction is rolled
// back; otherwise it is committed.
type Database interface {
	Executor
	WithinTx(ctx context.Context, fn func(tx Executor) error) error
	PingContext(ctx context.Context) error
	Close() error
}
