package runner

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weldsql/weld/compile"
	"github.com/weldsql/weld/query"
)

// fakeRows replays fixed values. Methods the runner does not call are left
// to the embedded nil interface.
type fakeRows struct {
	pgx.Rows
	data   [][]any
	pos    int
	err    error
	closed bool
}

func (r *fakeRows) Next() bool {
	if r.err != nil || r.pos >= len(r.data) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Values() ([]any, error) { return r.data[r.pos-1], nil }
func (r *fakeRows) Err() error             { return r.err }
func (r *fakeRows) Close()                 { r.closed = true }

type fakePgx struct {
	sql  string
	args []any
	tag  string
	rows *fakeRows
	err  error
}

func (f *fakePgx) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.sql, f.args = sql, args
	if f.err != nil {
		return pgconn.CommandTag{}, f.err
	}
	return pgconn.NewCommandTag(f.tag), nil
}

func (f *fakePgx) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	f.sql, f.args = sql, args
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

func TestPgx_Dialect(t *testing.T) {
	assert.Equal(t, compile.Postgres, NewPgx(&fakePgx{}).Dialect())
}

func TestPgx_Execute(t *testing.T) {
	f := &fakePgx{tag: "UPDATE 3"}
	p := NewPgx(f)

	n, err := query.From(widgets).Where(Widget.Name.Equal("bolt")).Update().
		Set(Widget.Name.Set("nut")).
		Run(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Equal(t, `UPDATE "widgets" SET "name"=$1 WHERE ( "widgets"."name" = $2 )`, f.sql)
	assert.Equal(t, []any{"nut", "bolt"}, f.args)
}

func TestPgx_FetchRows(t *testing.T) {
	rows := &fakeRows{data: [][]any{{int64(1), "bolt", nil}}}
	f := &fakePgx{rows: rows}

	got, err := query.From(widgets).Run(context.Background(), NewPgx(f))
	require.NoError(t, err)
	assert.Equal(t, []query.Row{{int64(1), "bolt", nil}}, got)
	assert.True(t, rows.closed)
}

func TestPgx_Errors(t *testing.T) {
	boom := errors.New("conn closed")

	_, err := NewPgx(&fakePgx{err: boom}).Execute(context.Background(), "SELECT 1", nil)
	assert.ErrorIs(t, err, boom)

	_, err = NewPgx(&fakePgx{err: boom}).FetchRows(context.Background(), "SELECT 1", nil)
	assert.ErrorIs(t, err, boom)

	rows := &fakeRows{err: boom}
	_, err = NewPgx(&fakePgx{rows: rows}).FetchRows(context.Background(), "SELECT 1", nil)
	assert.ErrorIs(t, err, boom)
	assert.True(t, rows.closed)
}

func TestPgx_CloseWithoutPool(t *testing.T) {
	assert.NotPanics(t, func() { NewPgx(&fakePgx{}).Close() })
}
