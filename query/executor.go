package query

import (
	"context"

	"github.com/weldsql/weld/compile"
)

// Row is one result row, indexable by column position.
type Row []any

// Executor runs compiled SQL. Implementations own cancellation, retry and
// timeout policy; their errors are returned to callers unchanged.
type Executor interface {
	// Execute runs a write and returns the affected-row count.
	Execute(ctx context.Context, sql string, args []any) (int64, error)

	// FetchRows runs a read and returns every row.
	FetchRows(ctx context.Context, sql string, args []any) ([]Row, error)
}

// Client is an Executor bound to one dialect.
type Client interface {
	Executor
	Dialect() compile.Dialect
}
