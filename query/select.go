// Package query builds typed predicates and compiles select, count, update,
// delete and insert statements for any compile.Dialect.
package query

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/weldsql/weld/compile"
	"github.com/weldsql/weld/schema"
)

// OrderBy is one ORDER BY term.
type OrderBy struct {
	Column     string
	Descending bool
}

// Asc orders by column ascending.
func Asc(column string) OrderBy { return OrderBy{Column: column} }

// Desc orders by column descending.
func Desc(column string) OrderBy { return OrderBy{Column: column, Descending: true} }

type existsClause struct {
	inner    *SelectBuilder
	innerCol string
	outerCol string
	not      bool
}

// SelectBuilder accumulates predicates for one table. Each method mutates
// and returns the builder. Errors are recorded and reported when the
// statement is compiled, so a failed builder never reaches an executor.
type SelectBuilder struct {
	desc   *schema.Descriptor
	wheres []Clause
	exists []existsClause
	orders []OrderBy
	limit  *int64
	offset *int64
	err    error
}

// From starts a query against p's table.
func From(p schema.Provider) *SelectBuilder {
	q := &SelectBuilder{desc: p.Schema()}
	if q.desc == nil {
		q.err = errors.New("query: provider returned no schema")
	}
	return q
}

// Schema returns the table descriptor.
func (q *SelectBuilder) Schema() *schema.Descriptor { return q.desc }

// Err returns the first error recorded while building.
func (q *SelectBuilder) Err() error { return q.err }

func (q *SelectBuilder) fail(err error) {
	if q.err == nil {
		q.err = err
	}
}

// checkColumn reports a *weld.MissingColumnError naming the attempted column.
func (q *SelectBuilder) checkColumn(name string) error {
	if q.desc == nil {
		return nil
	}
	_, err := q.desc.Column(name)
	return err
}

// Where adds predicates joined with AND.
func (q *SelectBuilder) Where(cs ...Clause) *SelectBuilder {
	for _, c := range cs {
		if !c.IsPredicate() {
			q.fail(fmt.Errorf("query: %s clause on %q is not a predicate", c.Kind, c.Column))
			continue
		}
		if c.Column != "" {
			if err := q.checkColumn(c.Column); err != nil {
				q.fail(err)
				continue
			}
		}
		q.wheres = append(q.wheres, c)
	}
	return q
}

// WhereExists keeps rows for which inner has a row whose innerCol equals this
// table's outerCol:
//
//	products.WhereExists(query.From(Orders).Where(...), "product_id", "id")
func (q *SelectBuilder) WhereExists(inner *SelectBuilder, innerCol, outerCol string) *SelectBuilder {
	return q.addExists(inner, innerCol, outerCol, false)
}

// WhereNotExists is the negation of WhereExists.
func (q *SelectBuilder) WhereNotExists(inner *SelectBuilder, innerCol, outerCol string) *SelectBuilder {
	return q.addExists(inner, innerCol, outerCol, true)
}

// ErrCyclicExists is returned when a builder is reachable from its own
// EXISTS sub-queries.
var ErrCyclicExists = errors.New("query: EXISTS sub-query refers back to its outer query")

// existsErr reports why q cannot be rendered as an EXISTS sub-query. Only
// predicates are carried into the sub-select, so ordering and paging are
// rejected rather than dropped.
func (q *SelectBuilder) existsErr() error {
	if q.err != nil {
		return q.err
	}
	if len(q.orders) > 0 || q.limit != nil || q.offset != nil {
		return fmt.Errorf("query: EXISTS sub-query on %s cannot carry ORDER BY, LIMIT or OFFSET", q.desc.Name())
	}
	return nil
}

func (q *SelectBuilder) addExists(inner *SelectBuilder, innerCol, outerCol string, not bool) *SelectBuilder {
	if inner == nil {
		q.fail(errors.New("query: nil EXISTS sub-query"))
		return q
	}
	if inner == q {
		q.fail(ErrCyclicExists)
		return q
	}
	if err := inner.existsErr(); err != nil {
		q.fail(err)
		return q
	}
	if err := inner.checkColumn(innerCol); err != nil {
		q.fail(err)
		return q
	}
	if err := q.checkColumn(outerCol); err != nil {
		q.fail(err)
		return q
	}
	q.exists = append(q.exists, existsClause{inner: inner, innerCol: innerCol, outerCol: outerCol, not: not})
	return q
}

// OrderBy appends ORDER BY terms.
func (q *SelectBuilder) OrderBy(terms ...OrderBy) *SelectBuilder {
	for _, o := range terms {
		if err := q.checkColumn(o.Column); err != nil {
			q.fail(err)
			continue
		}
		q.orders = append(q.orders, o)
	}
	return q
}

// OrderByAsc orders by column ascending.
func (q *SelectBuilder) OrderByAsc(column string) *SelectBuilder { return q.OrderBy(Asc(column)) }

// OrderByDesc orders by column descending.
func (q *SelectBuilder) OrderByDesc(column string) *SelectBuilder { return q.OrderBy(Desc(column)) }

// Limit caps the number of rows.
func (q *SelectBuilder) Limit(n int64) *SelectBuilder {
	if n < 0 {
		q.fail(fmt.Errorf("query: negative limit %d", n))
		return q
	}
	q.limit = &n
	return q
}

// Offset skips rows.
func (q *SelectBuilder) Offset(n int64) *SelectBuilder {
	if n < 0 {
		q.fail(fmt.Errorf("query: negative offset %d", n))
		return q
	}
	q.offset = &n
	return q
}

// Statement compiles:
//
//	SELECT t1."a", t1."b" FROM <table> t1 WHERE ( ... ) ORDER BY ... LIMIT n
func (q *SelectBuilder) Statement(d compile.Dialect) (compile.Statement, error) {
	if q.err != nil {
		return compile.Statement{}, q.err
	}
	s := newStmt(d)
	alias := s.aliases.Next()

	var b strings.Builder
	b.WriteString("SELECT ")
	for i, name := range q.desc.ColumnNames() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(s.column(alias, name))
	}
	b.WriteString(" FROM ")
	b.WriteString(s.table(q))
	b.WriteString(" ")
	b.WriteString(alias)
	if err := s.writeWhere(&b, q, alias); err != nil {
		return compile.Statement{}, err
	}
	s.writeTail(&b, q, alias, true)
	return s.finish(b.String())
}

// CountStatement compiles SELECT COUNT(*) with the same filtering as
// Statement:
//
//	SELECT COUNT(*) FROM <table> t1 WHERE ( ... )
//
// A LIMIT or OFFSET bounds the counted rows, so the limited select is
// counted as a derived table instead.
func (q *SelectBuilder) CountStatement(d compile.Dialect) (compile.Statement, error) {
	if q.err != nil {
		return compile.Statement{}, q.err
	}
	s := newStmt(d)
	alias := s.aliases.Next()
	limited := q.limit != nil || q.offset != nil

	var b strings.Builder
	if limited {
		b.WriteString("SELECT COUNT(*) FROM (SELECT 1 AS one FROM ")
	} else {
		b.WriteString("SELECT COUNT(*) FROM ")
	}
	b.WriteString(s.table(q))
	b.WriteString(" ")
	b.WriteString(alias)
	if err := s.writeWhere(&b, q, alias); err != nil {
		return compile.Statement{}, err
	}
	if limited {
		s.writeTail(&b, q, alias, true)
		b.WriteString(") AS ")
		b.WriteString(s.aliases.Next())
	}
	return s.finish(b.String())
}

// Run compiles for the client's dialect and fetches the rows.
func (q *SelectBuilder) Run(ctx context.Context, c Client) ([]Row, error) {
	st, err := q.Statement(c.Dialect())
	if err != nil {
		return nil, err
	}
	return c.FetchRows(ctx, st.SQL, st.Args)
}

// Count runs the count statement and returns the first column of the first row.
func (q *SelectBuilder) Count(ctx context.Context, c Client) (int64, error) {
	st, err := q.CountStatement(c.Dialect())
	if err != nil {
		return 0, err
	}
	rows, err := c.FetchRows(ctx, st.SQL, st.Args)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return 0, errors.New("query: count returned no rows")
	}
	return toInt64(rows[0][0])
}

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int32:
		return int64(n), nil
	case int:
		return int64(n), nil
	case uint64:
		return int64(n), nil
	case float64:
		return int64(n), nil
	case []byte:
		return strconv.ParseInt(string(n), 10, 64)
	case string:
		return strconv.ParseInt(n, 10, 64)
	default:
		return 0, fmt.Errorf("query: cannot read count from %T", v)
	}
}
