package runner

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/weldsql/weld/compile"
	"github.com/weldsql/weld/query"
)

// PgxQuerier is the native pgx surface shared by *pgxpool.Pool, *pgx.Conn
// and pgx.Tx.
type PgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

var (
	_ PgxQuerier = (*pgxpool.Pool)(nil)
	_ PgxQuerier = (*pgx.Conn)(nil)
	_ PgxQuerier = (pgx.Tx)(nil)

	_ query.Client = (*Pgx)(nil)
)

// Pgx runs statements over pgx without database/sql. It always speaks the
// Postgres dialect.
type Pgx struct {
	q     PgxQuerier
	close func()
}

// NewPgx wraps an existing pool, connection or transaction.
func NewPgx(q PgxQuerier) *Pgx {
	return &Pgx{q: q}
}

// ConnectPgx opens a pgxpool for dbURL and pings it.
func ConnectPgx(ctx context.Context, dbURL string) (*Pgx, error) {
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Pgx{q: pool, close: pool.Close}, nil
}

// Dialect returns compile.Postgres.
func (p *Pgx) Dialect() compile.Dialect {
	return compile.Postgres
}

// Close releases the pool opened by ConnectPgx.
func (p *Pgx) Close() {
	if p.close != nil {
		p.close()
	}
}

// Execute runs a write and returns the affected-row count from the command tag.
func (p *Pgx) Execute(ctx context.Context, sql string, args []any) (int64, error) {
	tag, err := p.q.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// FetchRows runs a read and decodes each row with pgx's type map.
func (p *Pgx) FetchRows(ctx context.Context, sql string, args []any) ([]query.Row, error) {
	rows, err := p.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []query.Row
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, err
		}
		out = append(out, query.Row(vals))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
