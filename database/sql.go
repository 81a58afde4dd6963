package database

import (
	"context"
	"database/sql"
	"fmt"
)

// SqlDatabase implements Database for *sql.DB.
type SqlDatabase struct {
	db *sql.DB
}

// NewSqlDatabase creates a new SqlDatabase.
func NewSqlDatabase(db *sql.DB) *SqlDatabase {
	return &SqlDatabase{db: db}
}

// ExecContext executes a statement and returns the number of rows affected.
func (s *SqlDatabase) ExecContext(ctx context.Context, query string, args ...any) (int64, error) {
	return execRows(s.db.ExecContext(ctx, query, args...))
}

// WithinTx runs fn inside a single transaction.
func (s *SqlDatabase) WithinTx(ctx context.Context, fn func(tx Executor) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback()
			panic(r)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(&sqlTx{tx: tx}); err != nil {
		return err
	}
	return tx.Commit()
}

// PingContext verifies the connection to the database is alive.
func (s *SqlDatabase) PingContext(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *SqlDatabase) Close() error {
	return s.db.Close()
}

type sqlTx struct {
	tx *sql.Tx
}

func (t *sqlTx) ExecContext(ctx context.Context, query string, args ...any) (int64, error) {
	return execRows(t.tx.ExecContext(ctx, query, args...))
}

func execRows(res sql.Result, err error) (int64, error) {
	if err != nil {
		return 0, describe(err)
	}
	return res.RowsAffected()
}

var _ Database = (*SqlDatabase)(nil)
