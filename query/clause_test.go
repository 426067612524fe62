package query

import (
	"database/sql/driver"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weldsql/weld/compile"
)

func render(t *testing.T, d compile.Dialect, c Clause) (string, []any) {
	t.Helper()
	frag, args, err := c.Render(d, "t1", compile.NewNextParam(d))
	require.NoError(t, err)
	return frag, args
}

func TestClause_AbsentValueRendersNullTest(t *testing.T) {
	var nilStr *string
	tests := []struct {
		name   string
		clause Clause
		want   string
	}{
		{"equal", Product.Description.Equal(None[string]()), `t1."description" IS NULL`},
		{"not equal", Product.Description.NotEqual(None[string]()), `t1."description" IS NOT NULL`},
		{"like", Product.Description.Like(None[string]()), `t1."description" IS NULL`},
		{"not like", Product.Description.NotLike(None[string]()), `t1."description" IS NOT NULL`},
		{"ilike", Product.Description.ILike(None[string]()), `t1."description" IS NULL`},
		{"not ilike", Product.Description.NotILike(None[string]()), `t1."description" IS NOT NULL`},
		{"numeric equal", Product.Stock.Equal(None[int32]()), `t1."stock" IS NULL`},
		{"numeric not equal", Product.Stock.NotEqual(None[int32]()), `t1."stock" IS NOT NULL`},
		{"basic opt", NewBasicOpt[bool]("flag").NotEqual(None[bool]()), `t1."flag" IS NOT NULL`},
		{"basic nil pointer", NewBasic[*string]("note").Equal(nilStr), `t1."note" IS NULL`},
		{"from nil ptr", Product.Description.Equal(FromPtr(nilStr)), `t1."description" IS NULL`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, d := range compile.All() {
				frag, args, err := tt.clause.Render(d, "t1", compile.NewNextParam(d))
				require.NoError(t, err)
				assert.Empty(t, args, d.Name())
				if d == compile.Postgres || d == compile.SQLite {
					assert.Equal(t, tt.want, frag)
				}
				assert.Contains(t, frag, "NULL")
			}
		})
	}
}

func TestClause_AbsentValueIsPerCall(t *testing.T) {
	f := Product.Description
	frag, args := render(t, compile.Postgres, f.Equal(Some("blue")))
	assert.Equal(t, `t1."description" = $1`, frag)
	assert.Equal(t, []any{"blue"}, args)

	frag, args = render(t, compile.Postgres, f.Equal(None[string]()))
	assert.Equal(t, `t1."description" IS NULL`, frag)
	assert.Empty(t, args)
}

func TestClause_Operators(t *testing.T) {
	tests := []struct {
		name   string
		clause Clause
		want   string
		args   []any
	}{
		{"equal", Product.Name.Equal("widget"), `t1."name" = $1`, []any{"widget"}},
		{"not equal", Product.Name.NotEqual("widget"), `t1."name" != $1`, []any{"widget"}},
		{"like", Product.Name.Like("w%"), `t1."name" like $1`, []any{"w%"}},
		{"not like", Product.Name.NotLike("w%"), `t1."name" not like $1`, []any{"w%"}},
		{"ilike", Product.Name.ILike("W%"), `t1."name" ilike $1`, []any{"W%"}},
		{"not ilike", Product.Name.NotILike("W%"), `t1."name" not ilike $1`, []any{"W%"}},
		{"gt", Product.Price.Gt(10), `t1."price" > $1`, []any{float64(10)}},
		{"gte", Product.Price.Gte(10), `t1."price" >= $1`, []any{float64(10)}},
		{"lt", Product.ID.Lt(3), `t1."id" < $1`, []any{int64(3)}},
		{"lte", Product.Stock.Lte(4), `t1."stock" <= $1`, []any{int32(4)}},
		{"opt present", Product.Stock.Equal(Some[int32](2)), `t1."stock" = $1`, []any{int32(2)}},
		{"in", Product.ID.In(1, 2, 3), `t1."id" IN ($1, $2, $3)`, []any{int64(1), int64(2), int64(3)}},
		{"not in", Product.Name.NotIn("a", "b"), `t1."name" NOT IN ($1, $2)`, []any{"a", "b"}},
		{"empty in", Product.ID.In(), `1=0`, nil},
		{"empty not in", Product.ID.NotIn(), `1=1`, nil},
		{"custom", Custom("price", "BETWEEN ? AND ?", 1, 2), `t1."price" BETWEEN $1 AND $2`, []any{1, 2}},
		{"custom raw", Custom("", "1 = 1"), `1 = 1`, nil},
		{"custom escaped marker", Custom("description", "?? ?", "sku"), `t1."description" ? $1`, []any{"sku"}},
		{"custom escaped in literal", Custom("name", "<> 'why??' AND ? = ?", 1, 2), `t1."name" <> 'why?' AND $1 = $2`, []any{1, 2}},
		{"custom triple marker", Custom("", "???", 7), `?$1`, []any{7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frag, args := render(t, compile.Postgres, tt.clause)
			assert.Equal(t, tt.want, frag)
			assert.Equal(t, tt.args, args)
		})
	}
}

func TestClause_NegationIsAFlag(t *testing.T) {
	eq := Product.Name.Equal("x")
	ne := Product.Name.NotEqual("x")
	assert.Equal(t, KindCompare, eq.Kind)
	assert.Equal(t, eq.Kind, ne.Kind)
	assert.False(t, eq.Not)
	assert.True(t, ne.Not)
	assert.True(t, Product.Name.NotLike("x").Not)
	assert.True(t, Product.Name.NotILike("x").Not)
}

func TestClause_Assignments(t *testing.T) {
	frag, args := render(t, compile.Postgres, Product.Name.Set("gadget"))
	assert.Equal(t, `"name"=$1`, frag)
	assert.Equal(t, []any{"gadget"}, args)

	frag, args = render(t, compile.Postgres, Product.Description.SetNull())
	assert.Equal(t, `"description"=NULL`, frag)
	assert.Empty(t, args)

	c := Product.Description.Set(None[string]())
	assert.Equal(t, KindSetNull, c.Kind)
	c = Product.Stock.Set(Some[int32](1))
	assert.Equal(t, KindSetValue, c.Kind)
	assert.True(t, c.IsAssignment())
	assert.False(t, c.IsPredicate())

	assert.Equal(t, KindSetNull, SetValue("stock", nil).Kind)
	assert.Equal(t, KindSetValue, SetValue("stock", 3).Kind)
	assert.Equal(t, KindSetNull, SetNull("stock").Kind)
}

func TestClause_DialectPlaceholders(t *testing.T) {
	c := Product.ID.In(1, 2)
	frag, _ := render(t, compile.MSSQL, c)
	assert.Equal(t, "t1.[id] IN (@p1, @p2)", frag)

	frag, _ = render(t, compile.MySQL, c)
	assert.Equal(t, "t1.`id` IN (?, ?)", frag)

	frag, _ = render(t, compile.SQLite, Product.Name.Equal("x"))
	assert.Equal(t, `t1."name" = ?`, frag)
}

func TestClause_SharedSequencerContinues(t *testing.T) {
	p := compile.NewNextParam(compile.Postgres)
	_, _, err := Product.Name.Equal("a").Render(compile.Postgres, "t1", p)
	require.NoError(t, err)
	frag, _, err := Product.Price.Gt(1).Render(compile.Postgres, "t1", p)
	require.NoError(t, err)
	assert.Equal(t, `t1."price" > $2`, frag)
	assert.Equal(t, 2, p.Count())
}

func TestClause_CustomMarkerMismatch(t *testing.T) {
	_, _, err := Custom("price", "> ? AND < ?", 1).Render(compile.Postgres, "t1", compile.NewNextParam(compile.Postgres))
	assert.ErrorContains(t, err, "2 markers but 1 args")

	_, _, err = Custom("name", "= 'a??'", 1).Render(compile.Postgres, "t1", compile.NewNextParam(compile.Postgres))
	assert.ErrorContains(t, err, "0 markers but 1 args")
}

func TestDynamic(t *testing.T) {
	c, err := Dynamic("name", "=", "widget")
	require.NoError(t, err)
	assert.Equal(t, Product.Name.Equal("widget"), c)

	c, err = Dynamic("name", "<>", "widget")
	require.NoError(t, err)
	assert.Equal(t, OpNotEqual, c.Op)
	assert.True(t, c.Not)

	c, err = Dynamic("description", "NOT LIKE", nil)
	require.NoError(t, err)
	frag, args := render(t, compile.Postgres, c)
	assert.Equal(t, `t1."description" IS NOT NULL`, frag)
	assert.Empty(t, args)

	c, err = Dynamic("stock", "=", None[int32]())
	require.NoError(t, err)
	assert.True(t, c.Null)

	c, err = Dynamic("stock", ">=", Some[int32](5))
	require.NoError(t, err)
	assert.Equal(t, []any{int32(5)}, c.Values)

	_, err = Dynamic("price", ">", nil)
	assert.ErrorContains(t, err, "cannot compare")

	_, err = Dynamic("price", "~~", 1)
	assert.ErrorContains(t, err, "unknown operator")
}

func TestOptional(t *testing.T) {
	v, ok := Some(3).Get()
	assert.True(t, ok)
	assert.Equal(t, 3, v)
	assert.True(t, None[int]().IsNone())
	assert.False(t, FromPtr(i32Ptr(1)).IsNone())
	assert.True(t, FromPtr[int32](nil).IsNone())

	var valuer driver.Valuer = Some(7)
	dv, err := valuer.Value()
	require.NoError(t, err)
	assert.Equal(t, int64(7), dv)

	dv, err = None[string]().Value()
	require.NoError(t, err)
	assert.Nil(t, dv)

	dv, err = Some("x").Value()
	require.NoError(t, err)
	assert.Equal(t, "x", dv)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "compare", KindCompare.String())
	assert.Equal(t, "set null", KindSetNull.String())
	assert.Equal(t, "unknown", Kind(99).String())
}
