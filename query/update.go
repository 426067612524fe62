package query

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/weldsql/weld/compile"
)

// ErrEmptySet is returned when a bulk update has nothing to assign.
var ErrEmptySet = errors.New("query: update has no SET clauses")

// UpdateBuilder is a bulk UPDATE filtered by a SelectBuilder's predicates.
type UpdateBuilder struct {
	query *SelectBuilder
	sets  []Clause
	err   error
}

// Update turns the query into a bulk update of every matching row.
func (q *SelectBuilder) Update() *UpdateBuilder {
	return &UpdateBuilder{query: q}
}

func (u *UpdateBuilder) fail(err error) {
	if u.err == nil {
		u.err = err
	}
}

// Set appends assignments built with a field's Set or SetNull.
func (u *UpdateBuilder) Set(cs ...Clause) *UpdateBuilder {
	if u.query.desc == nil {
		return u
	}
	for _, c := range cs {
		if !c.IsAssignment() {
			u.fail(fmt.Errorf("query: %s clause on %q is not an assignment", c.Kind, c.Column))
			continue
		}
		col, err := u.query.desc.Column(c.Column)
		if err != nil {
			u.fail(err)
			continue
		}
		if c.Kind == KindSetNull && !col.Nullable {
			u.fail(fmt.Errorf("query: column %q is not nullable", c.Column))
			continue
		}
		u.sets = append(u.sets, c)
	}
	return u
}

// SetCol assigns from an equality clause, so a field's Equal can double as
// an assignment. An absent value assigns NULL.
func (u *UpdateBuilder) SetCol(c Clause) *UpdateBuilder {
	if c.Kind != KindCompare || c.Op != OpEqual {
		u.fail(fmt.Errorf("query: SetCol needs an equality clause, got %s %q", c.Kind, c.Op))
		return u
	}
	if c.Null {
		return u.Set(setNull(c.Column))
	}
	return u.Set(setValue(c.Column, c.Values[0]))
}

// SetNull assigns NULL to a nullable column.
func (u *UpdateBuilder) SetNull(column string) *UpdateBuilder {
	return u.Set(setNull(column))
}

// Statement compiles:
//
//	UPDATE <table> SET a=<p1>, b=NULL WHERE ( ... )
//
// SET arguments are bound before WHERE arguments. With a LIMIT the WHERE
// becomes a primary-key IN sub-select.
func (u *UpdateBuilder) Statement(d compile.Dialect) (compile.Statement, error) {
	if u.query.err != nil {
		return compile.Statement{}, u.query.err
	}
	if u.err != nil {
		return compile.Statement{}, u.err
	}
	if len(u.sets) == 0 {
		return compile.Statement{}, ErrEmptySet
	}

	s := newStmt(d)
	table := s.table(u.query)

	var b strings.Builder
	b.WriteString("UPDATE ")
	b.WriteString(table)
	b.WriteString(" SET ")
	for i, c := range u.sets {
		if i > 0 {
			b.WriteString(", ")
		}
		p, err := c.render(s, "")
		if err != nil {
			return compile.Statement{}, err
		}
		b.WriteString(p)
	}
	if err := s.writeFilter(&b, u.query, table); err != nil {
		return compile.Statement{}, err
	}
	return s.finish(b.String())
}

// Run executes the update and returns the affected-row count.
func (u *UpdateBuilder) Run(ctx context.Context, c Client) (int64, error) {
	st, err := u.Statement(c.Dialect())
	if err != nil {
		return 0, err
	}
	return c.Execute(ctx, st.SQL, st.Args)
}

// DeleteBuilder is a bulk DELETE filtered by a SelectBuilder's predicates.
type DeleteBuilder struct {
	query *SelectBuilder
}

// Delete turns the query into a bulk delete of every matching row.
func (q *SelectBuilder) Delete() *DeleteBuilder {
	return &DeleteBuilder{query: q}
}

// Statement compiles DELETE FROM <table> WHERE ( ... ), using the same
// primary-key sub-select as UpdateBuilder when a LIMIT is present.
func (db *DeleteBuilder) Statement(d compile.Dialect) (compile.Statement, error) {
	if db.query.err != nil {
		return compile.Statement{}, db.query.err
	}
	s := newStmt(d)
	table := s.table(db.query)

	var b strings.Builder
	b.WriteString("DELETE FROM ")
	b.WriteString(table)
	if err := s.writeFilter(&b, db.query, table); err != nil {
		return compile.Statement{}, err
	}
	return s.finish(b.String())
}

// Run executes the delete and returns the affected-row count.
func (db *DeleteBuilder) Run(ctx context.Context, c Client) (int64, error) {
	st, err := db.Statement(c.Dialect())
	if err != nil {
		return 0, err
	}
	return c.Execute(ctx, st.SQL, st.Args)
}
