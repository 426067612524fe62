package query

import (
	"context"
	"slices"
	"strings"

	"github.com/weldsql/weld"
	"github.com/weldsql/weld/compile"
	"github.com/weldsql/weld/schema"
)

// Model is an in-memory row that can bind its own column values.
type Model interface {
	schema.Provider

	// Bind returns the current value of column. Unknown columns yield a
	// *weld.MissingColumnError.
	Bind(column string) (any, error)
}

// pkWhere renders "a=<p> AND b=<p>" over the primary key.
func pkWhere(s *stmt, m Model, pks []schema.Column) (string, error) {
	parts := make([]string, 0, len(pks))
	for _, pk := range pks {
		v, err := m.Bind(pk.Name)
		if err != nil {
			return "", err
		}
		parts = append(parts, s.d.QuoteIdentifier(pk.Name)+"="+s.bind(v))
	}
	return strings.Join(parts, " AND "), nil
}

// UpdateOneStatement compiles an update of the row identified by m's primary
// key, setting every non-key column:
//
//	UPDATE <table> SET a=<p1>, b=<p2> where id=<p3>
//
// ok is false when the table has no non-key columns; there is nothing to
// issue in that case.
func UpdateOneStatement(d compile.Dialect, m Model) (st compile.Statement, ok bool, err error) {
	desc := m.Schema()
	pks := desc.PrimaryKeys()
	if len(pks) == 0 {
		return compile.Statement{}, false, weld.ErrNoPrimaryKey
	}

	s := newStmt(d)
	var sets []string
	for _, col := range desc.Columns() {
		if desc.IsPrimaryKey(col.Name) {
			continue
		}
		v, err := m.Bind(col.Name)
		if err != nil {
			return compile.Statement{}, false, err
		}
		sets = append(sets, d.QuoteIdentifier(col.Name)+"="+s.bind(v))
	}
	if len(sets) == 0 {
		return compile.Statement{}, false, nil
	}

	where, err := pkWhere(s, m, pks)
	if err != nil {
		return compile.Statement{}, false, err
	}

	sql := "UPDATE " + d.QuoteTable(desc.Identifier()) + " SET " + strings.Join(sets, ", ") + " where " + where
	st, err = s.finish(sql)
	if err != nil {
		return compile.Statement{}, false, err
	}
	return st, true, nil
}

// UpdateOne writes m back to its row. A table without non-key columns is a
// no-op and the executor is not called.
func UpdateOne(ctx context.Context, c Client, m Model) error {
	st, ok, err := UpdateOneStatement(c.Dialect(), m)
	if err != nil || !ok {
		return err
	}
	_, err = c.Execute(ctx, st.SQL, st.Args)
	return err
}

// DeleteOneStatement compiles DELETE FROM <table> where id=<p1>.
func DeleteOneStatement(d compile.Dialect, m Model) (compile.Statement, error) {
	desc := m.Schema()
	pks := desc.PrimaryKeys()
	if len(pks) == 0 {
		return compile.Statement{}, weld.ErrNoPrimaryKey
	}

	s := newStmt(d)
	where, err := pkWhere(s, m, pks)
	if err != nil {
		return compile.Statement{}, err
	}
	return s.finish("DELETE FROM " + d.QuoteTable(desc.Identifier()) + " where " + where)
}

// DeleteOne deletes m's row.
func DeleteOne(ctx context.Context, c Client, m Model) error {
	st, err := DeleteOneStatement(c.Dialect(), m)
	if err != nil {
		return err
	}
	_, err = c.Execute(ctx, st.SQL, st.Args)
	return err
}

// InsertOptions tunes InsertStatement.
type InsertOptions struct {
	// Omit lists columns the database fills in, such as serial keys.
	Omit []string

	// Returning asks for the inserted row back. MySQL cannot do this.
	Returning bool
}

// InsertStatement compiles an INSERT of m's columns.
func InsertStatement(d compile.Dialect, m Model, opts InsertOptions) (compile.Statement, error) {
	desc := m.Schema()
	for _, name := range opts.Omit {
		if _, err := desc.Column(name); err != nil {
			return compile.Statement{}, err
		}
	}

	s := newStmt(d)
	var cols, phs []string
	for _, col := range desc.Columns() {
		if slices.Contains(opts.Omit, col.Name) {
			continue
		}
		v, err := m.Bind(col.Name)
		if err != nil {
			return compile.Statement{}, err
		}
		cols = append(cols, col.Name)
		phs = append(phs, s.bind(v))
	}

	var returning []string
	if opts.Returning {
		returning = desc.ColumnNames()
	}

	var b strings.Builder
	if err := d.WriteInsert(&b, d.QuoteTable(desc.Identifier()), cols, phs, returning); err != nil {
		return compile.Statement{}, err
	}
	return s.finish(b.String())
}

// InsertOne inserts m. With opts.Returning the inserted row is returned.
func InsertOne(ctx context.Context, c Client, m Model, opts InsertOptions) ([]Row, error) {
	st, err := InsertStatement(c.Dialect(), m, opts)
	if err != nil {
		return nil, err
	}
	if opts.Returning {
		return c.FetchRows(ctx, st.SQL, st.Args)
	}
	_, err = c.Execute(ctx, st.SQL, st.Args)
	return nil, err
}
