package runner

import (
	"context"

	"github.com/weldsql/weld"
	"github.com/weldsql/weld/compile"
	"github.com/weldsql/weld/query"
	"github.com/weldsql/weld/schema"
)

var widgets = schema.MustNew([]string{"widgets"}, []schema.Column{
	{Name: "id", Type: schema.TypeBigInt},
	{Name: "name", Type: schema.TypeText},
	{Name: "note", Type: schema.TypeText, Nullable: true},
}, "id")

var tags = schema.MustNew([]string{"tags"}, []schema.Column{
	{Name: "id", Type: schema.TypeBigInt},
}, "id")

var Widget = struct {
	ID   query.Numeric[int64]
	Name query.Text[string]
	Note query.TextOpt[string]
}{
	ID:   query.NewNumeric[int64]("id"),
	Name: query.NewText[string]("name"),
	Note: query.NewTextOpt[string]("note"),
}

type widget struct {
	ID   int64
	Name string
	Note *string
}

func (w *widget) Schema() *schema.Descriptor { return widgets }

func (w *widget) Bind(column string) (any, error) {
	switch column {
	case "id":
		return w.ID, nil
	case "name":
		return w.Name, nil
	case "note":
		return query.FromPtr(w.Note), nil
	}
	return nil, &weld.MissingColumnError{Table: "widgets", Column: column}
}

type tag struct{ ID int64 }

func (t tag) Schema() *schema.Descriptor { return tags }

func (t tag) Bind(string) (any, error) { return t.ID, nil }

// stubClient answers every call with the same result.
type stubClient struct {
	rows     []query.Row
	affected int64
	err      error
	calls    int
}

func (s *stubClient) Dialect() compile.Dialect { return compile.SQLite }

func (s *stubClient) Execute(context.Context, string, []any) (int64, error) {
	s.calls++
	return s.affected, s.err
}

func (s *stubClient) FetchRows(context.Context, string, []any) ([]query.Row, error) {
	s.calls++
	return s.rows, s.err
}
