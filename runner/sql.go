// Package runner executes compiled statements against a live database. Each
// runner satisfies query.Client for one dialect.
package runner

import (
	"context"
	"database/sql"
	"errors"

	"github.com/weldsql/weld/compile"
	"github.com/weldsql/weld/query"
)

// Querier is the interface for executing queries.
// *sql.DB, *sql.Tx and *sql.Conn all implement it.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Compile-time checks that the database/sql handles implement Querier
var (
	_ Querier = (*sql.DB)(nil)
	_ Querier = (*sql.Tx)(nil)
	_ Querier = (*sql.Conn)(nil)

	_ query.Client = (*DB)(nil)
)

// DB runs statements through database/sql. Driver errors are returned
// unchanged.
type DB struct {
	dialect compile.Dialect
	db      Querier
	closer  func() error
}

// New creates a runner for db speaking dialect d.
func New(db Querier, d compile.Dialect) *DB {
	return &DB{dialect: d, db: db}
}

// Dialect returns the runner's dialect.
func (r *DB) Dialect() compile.Dialect {
	return r.dialect
}

// Querier returns the underlying connection.
func (r *DB) Querier() Querier {
	return r.db
}

// WithTx returns a runner on the same dialect that executes inside tx.
func (r *DB) WithTx(tx *sql.Tx) *DB {
	return &DB{dialect: r.dialect, db: tx}
}

// WithDB returns a runner on the same dialect using db.
func (r *DB) WithDB(db Querier) *DB {
	return &DB{dialect: r.dialect, db: db}
}

// Close releases the connection pool when the runner opened it.
func (r *DB) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer()
}

// Execute runs a write and returns the affected-row count.
func (r *DB) Execute(ctx context.Context, sql string, args []any) (int64, error) {
	res, err := r.db.ExecContext(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// FetchRows runs a read and returns every row, one value per column.
func (r *DB) FetchRows(ctx context.Context, sql string, args []any) ([]query.Row, error) {
	rows, err := r.db.QueryContext(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRows(rows)
}

func scanRows(rows *sql.Rows) ([]query.Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []query.Row
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		out = append(out, query.Row(vals))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// InTx runs fn inside a transaction on r, committing when fn returns nil
// and rolling back otherwise. r must wrap a *sql.DB.
func (r *DB) InTx(ctx context.Context, fn func(tx *DB) error) (err error) {
	db, ok := r.db.(*sql.DB)
	if !ok {
		return errors.New("runner: InTx needs a *sql.DB")
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if err = fn(r.WithTx(tx)); err != nil {
		return err
	}
	return tx.Commit()
}
