package query

import (
	"context"

	"github.com/weldsql/weld"
	"github.com/weldsql/weld/compile"
	"github.com/weldsql/weld/schema"
)

var products = schema.MustNew([]string{"products"}, []schema.Column{
	{Name: "id", Type: schema.TypeBigInt},
	{Name: "name", Type: schema.TypeText},
	{Name: "description", Type: schema.TypeText, Nullable: true},
	{Name: "price", Type: schema.TypeDouble},
	{Name: "stock", Type: schema.TypeInt, Nullable: true},
}, "id")

var Product = struct {
	ID          Numeric[int64]
	Name        Text[string]
	Description TextOpt[string]
	Price       Numeric[float64]
	Stock       NumericOpt[int32]
}{
	ID:          NewNumeric[int64]("id"),
	Name:        NewText[string]("name"),
	Description: NewTextOpt[string]("description"),
	Price:       NewNumeric[float64]("price"),
	Stock:       NewNumericOpt[int32]("stock"),
}

var orders = schema.MustNew([]string{"orders"}, []schema.Column{
	{Name: "id", Type: schema.TypeBigInt},
	{Name: "product_id", Type: schema.TypeBigInt},
	{Name: "qty", Type: schema.TypeInt},
}, "id")

var Order = struct {
	ID        Numeric[int64]
	ProductID Numeric[int64]
	Qty       Numeric[int]
}{
	ID:        NewNumeric[int64]("id"),
	ProductID: NewNumeric[int64]("product_id"),
	Qty:       NewNumeric[int]("qty"),
}

var lineItems = schema.MustNew([]string{"line_items"}, []schema.Column{
	{Name: "order_id", Type: schema.TypeBigInt},
	{Name: "product_id", Type: schema.TypeBigInt},
	{Name: "qty", Type: schema.TypeInt},
}, "order_id", "product_id")

var events = schema.MustNew([]string{"events"}, []schema.Column{
	{Name: "kind", Type: schema.TypeText},
	{Name: "payload", Type: schema.TypeJSON, Nullable: true},
})

var things = schema.MustNew([]string{"things"}, []schema.Column{
	{Name: "id", Type: schema.TypeBigInt},
}, "id")

var qualified = schema.MustNew([]string{"sales", "items"}, []schema.Column{
	{Name: "id", Type: schema.TypeBigInt},
}, "id")

// product is a hand-written model over the products table.
type product struct {
	ID          int64
	Name        string
	Description *string
	Price       float64
	Stock       *int32
}

func (p *product) Schema() *schema.Descriptor { return products }

func (p *product) Bind(column string) (any, error) {
	switch column {
	case "id":
		return p.ID, nil
	case "name":
		return p.Name, nil
	case "description":
		return FromPtr(p.Description), nil
	case "price":
		return p.Price, nil
	case "stock":
		return FromPtr(p.Stock), nil
	}
	return nil, &weld.MissingColumnError{Table: products.Name(), Column: column}
}

// mapModel binds from a map; absent keys report a missing column.
type mapModel struct {
	desc *schema.Descriptor
	vals map[string]any
}

func (m mapModel) Schema() *schema.Descriptor { return m.desc }

func (m mapModel) Bind(column string) (any, error) {
	v, ok := m.vals[column]
	if !ok {
		return nil, &weld.MissingColumnError{Table: m.desc.Name(), Column: column}
	}
	return v, nil
}

type call struct {
	SQL  string
	Args []any
}

// fakeClient records every call and replays canned results.
type fakeClient struct {
	dialect  compile.Dialect
	executes []call
	fetches  []call
	rows     []Row
	affected int64
	err      error
}

func newFake(d compile.Dialect) *fakeClient { return &fakeClient{dialect: d} }

func (f *fakeClient) Dialect() compile.Dialect { return f.dialect }

func (f *fakeClient) Execute(_ context.Context, sql string, args []any) (int64, error) {
	f.executes = append(f.executes, call{SQL: sql, Args: args})
	return f.affected, f.err
}

func (f *fakeClient) FetchRows(_ context.Context, sql string, args []any) ([]Row, error) {
	f.fetches = append(f.fetches, call{SQL: sql, Args: args})
	return f.rows, f.err
}

func (f *fakeClient) calls() int { return len(f.executes) + len(f.fetches) }

func strPtr(s string) *string { return &s }
func i32Ptr(n int32) *int32   { return &n }
