package query

import (
	"strings"

	"github.com/weldsql/weld"
	"github.com/weldsql/weld/compile"
)

// stmt is the per-compilation state: one sequencer, one alias allocator and
// the args bound so far. Placeholders are only issued through bind, so SQL
// order and arg order cannot drift apart.
type stmt struct {
	d       compile.Dialect
	params  *compile.NextParam
	aliases *compile.TableAlias
	args    []any
	// open holds the EXISTS sub-queries currently being rendered.
	open    map[*SelectBuilder]bool
}

func newStmt(d compile.Dialect) *stmt {
	return &stmt{
		d:       d,
		params:  compile.NewNextParam(d),
		aliases: compile.NewTableAlias(),
	}
}

func (s *stmt) bind(v any) string {
	s.args = append(s.args, v)
	return s.params.Next()
}

// column writes name qualified by alias, or bare when alias is empty.
func (s *stmt) column(alias, name string) string {
	if alias == "" {
		return s.d.QuoteIdentifier(name)
	}
	return alias + "." + s.d.QuoteIdentifier(name)
}

func (s *stmt) table(q *SelectBuilder) string {
	return s.d.QuoteTable(q.desc.Identifier())
}

func (s *stmt) finish(sql string) (compile.Statement, error) {
	if err := s.params.Check(); err != nil {
		return compile.Statement{}, err
	}
	return compile.Statement{SQL: sql, Args: s.args}, nil
}

// whereParts renders predicates then EXISTS sub-clauses, in that order.
func (s *stmt) whereParts(q *SelectBuilder, alias string) ([]string, error) {
	parts := make([]string, 0, len(q.wheres)+len(q.exists))
	for _, c := range q.wheres {
		p, err := c.render(s, alias)
		if err != nil {
			return nil, err
		}
		parts = append(parts, p)
	}
	for _, e := range q.exists {
		p, err := s.exists(e, alias)
		if err != nil {
			return nil, err
		}
		parts = append(parts, p)
	}
	return parts, nil
}

func (s *stmt) writeWhere(b *strings.Builder, q *SelectBuilder, alias string) error {
	parts, err := s.whereParts(q, alias)
	if err != nil {
		return err
	}
	if len(parts) == 0 {
		return nil
	}
	b.WriteString(" WHERE ( ")
	b.WriteString(strings.Join(parts, " AND "))
	b.WriteString(" )")
	return nil
}

// exists renders a correlated EXISTS against the outer alias. The inner
// table always takes a fresh alias. The inner builder is checked again here
// since it may have changed after it was attached.
func (s *stmt) exists(e existsClause, outer string) (string, error) {
	if err := e.inner.existsErr(); err != nil {
		return "", err
	}
	if s.open[e.inner] {
		return "", ErrCyclicExists
	}
	if s.open == nil {
		s.open = make(map[*SelectBuilder]bool)
	}
	s.open[e.inner] = true
	defer delete(s.open, e.inner)

	inner := s.aliases.Next()

	var b strings.Builder
	if e.not {
		b.WriteString("NOT ")
	}
	b.WriteString("EXISTS ( SELECT 1 FROM ")
	b.WriteString(s.table(e.inner))
	b.WriteString(" ")
	b.WriteString(inner)
	b.WriteString(" WHERE ")
	b.WriteString(s.column(inner, e.innerCol))
	b.WriteString(" = ")
	b.WriteString(s.column(outer, e.outerCol))

	parts, err := s.whereParts(e.inner, inner)
	if err != nil {
		return "", err
	}
	for _, p := range parts {
		b.WriteString(" AND ")
		b.WriteString(p)
	}
	b.WriteString(" )")
	return b.String(), nil
}

func (s *stmt) writeTail(b *strings.Builder, q *SelectBuilder, alias string, withOrder bool) {
	hasOrder := withOrder && len(q.orders) > 0
	if hasOrder {
		b.WriteString(" ORDER BY ")
		for i, o := range q.orders {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(s.column(alias, o.Column))
			if o.Descending {
				b.WriteString(" DESC")
			} else {
				b.WriteString(" ASC")
			}
		}
	}
	s.d.WriteLimitOffset(b, q.limit, q.offset, hasOrder)
}

// writeFilter writes the WHERE of a bulk UPDATE or DELETE against table.
// Without a LIMIT/OFFSET the predicates apply directly. With one, UPDATE and
// DELETE cannot limit rows themselves, so the limited row set is selected by
// primary key in a sub-select:
//
//	WHERE ( "t"."id" IN (SELECT t1."id" FROM "t" t1 WHERE ... LIMIT n) )
//
// The sub-select binds its own copy of the predicate args after anything
// already bound (the SET list).
func (s *stmt) writeFilter(b *strings.Builder, q *SelectBuilder, table string) error {
	if q.limit == nil && q.offset == nil {
		return s.writeWhere(b, q, table)
	}

	pks := q.desc.PrimaryKeyNames()
	if len(pks) == 0 {
		return weld.ErrNoPrimaryKey
	}
	if len(pks) > 1 && !s.d.SupportsRowValueIn() {
		return &weld.UnsupportedOperationError{
			Dialect:   s.d.Name(),
			Operation: "limited bulk write on a composite primary key",
		}
	}

	alias := s.aliases.Next()
	var inner strings.Builder
	inner.WriteString("SELECT ")
	for i, pk := range pks {
		if i > 0 {
			inner.WriteString(", ")
		}
		inner.WriteString(s.column(alias, pk))
	}
	inner.WriteString(" FROM ")
	inner.WriteString(table)
	inner.WriteString(" ")
	inner.WriteString(alias)
	if err := s.writeWhere(&inner, q, alias); err != nil {
		return err
	}
	s.writeTail(&inner, q, alias, true)
	sub := s.d.WrapLimitedSubquery(inner.String(), s.aliases, pks)

	b.WriteString(" WHERE ( ")
	if len(pks) == 1 {
		b.WriteString(s.column(table, pks[0]))
	} else {
		b.WriteString("(")
		for i, pk := range pks {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(s.column(table, pk))
		}
		b.WriteString(")")
	}
	b.WriteString(" IN (")
	b.WriteString(sub)
	b.WriteString(") )")
	return nil
}
