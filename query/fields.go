package query

// Typed column handles. Each field binds its column to a Go value type, so a
// predicate built from a Text[string] only ever accepts a string. The *Opt
// variants belong to nullable columns and take Optional values.

// Number is the constraint for numeric columns.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// =============================================================================
// Text
// =============================================================================

// Text is a non-nullable string column.
type Text[T ~string] struct{ col string }

// NewText returns a handle for column col.
func NewText[T ~string](col string) Text[T] { return Text[T]{col: col} }

func (f Text[T]) Column() string       { return f.col }
func (f Text[T]) Equal(v T) Clause     { return compare(f.col, OpEqual, false, v) }
func (f Text[T]) NotEqual(v T) Clause  { return compare(f.col, OpNotEqual, true, v) }
func (f Text[T]) Like(v T) Clause      { return compare(f.col, OpLike, false, v) }
func (f Text[T]) NotLike(v T) Clause   { return compare(f.col, OpNotLike, true, v) }
func (f Text[T]) ILike(v T) Clause     { return compare(f.col, OpILike, false, v) }
func (f Text[T]) NotILike(v T) Clause  { return compare(f.col, OpNotILike, true, v) }
func (f Text[T]) In(vs ...T) Clause    { return in(f.col, false, vs) }
func (f Text[T]) NotIn(vs ...T) Clause { return in(f.col, true, vs) }
func (f Text[T]) Set(v T) Clause       { return setValue(f.col, v) }
func (f Text[T]) Asc() OrderBy         { return Asc(f.col) }
func (f Text[T]) Desc() OrderBy        { return Desc(f.col) }

// TextOpt is a nullable string column.
type TextOpt[T ~string] struct{ col string }

// NewTextOpt returns a handle for nullable column col.
func NewTextOpt[T ~string](col string) TextOpt[T] { return TextOpt[T]{col: col} }

func (f TextOpt[T]) Column() string { return f.col }

func (f TextOpt[T]) Equal(v Optional[T]) Clause    { return compareOpt(f.col, OpEqual, false, v) }
func (f TextOpt[T]) NotEqual(v Optional[T]) Clause { return compareOpt(f.col, OpNotEqual, true, v) }
func (f TextOpt[T]) Like(v Optional[T]) Clause     { return compareOpt(f.col, OpLike, false, v) }
func (f TextOpt[T]) NotLike(v Optional[T]) Clause  { return compareOpt(f.col, OpNotLike, true, v) }
func (f TextOpt[T]) ILike(v Optional[T]) Clause    { return compareOpt(f.col, OpILike, false, v) }
func (f TextOpt[T]) NotILike(v Optional[T]) Clause { return compareOpt(f.col, OpNotILike, true, v) }
func (f TextOpt[T]) In(vs ...T) Clause             { return in(f.col, false, vs) }
func (f TextOpt[T]) NotIn(vs ...T) Clause          { return in(f.col, true, vs) }
func (f TextOpt[T]) Set(v Optional[T]) Clause      { return SetValue(f.col, v) }
func (f TextOpt[T]) SetNull() Clause               { return setNull(f.col) }
func (f TextOpt[T]) Asc() OrderBy                  { return Asc(f.col) }
func (f TextOpt[T]) Desc() OrderBy                 { return Desc(f.col) }

// =============================================================================
// Numeric
// =============================================================================

// Numeric is a non-nullable numeric column.
type Numeric[T Number] struct{ col string }

// NewNumeric returns a handle for column col.
func NewNumeric[T Number](col string) Numeric[T] { return Numeric[T]{col: col} }

func (f Numeric[T]) Column() string       { return f.col }
func (f Numeric[T]) Equal(v T) Clause     { return compare(f.col, OpEqual, false, v) }
func (f Numeric[T]) NotEqual(v T) Clause  { return compare(f.col, OpNotEqual, true, v) }
func (f Numeric[T]) Gt(v T) Clause        { return compare(f.col, OpGt, false, v) }
func (f Numeric[T]) Gte(v T) Clause       { return compare(f.col, OpGte, false, v) }
func (f Numeric[T]) Lt(v T) Clause        { return compare(f.col, OpLt, false, v) }
func (f Numeric[T]) Lte(v T) Clause       { return compare(f.col, OpLte, false, v) }
func (f Numeric[T]) In(vs ...T) Clause    { return in(f.col, false, vs) }
func (f Numeric[T]) NotIn(vs ...T) Clause { return in(f.col, true, vs) }
func (f Numeric[T]) Set(v T) Clause       { return setValue(f.col, v) }
func (f Numeric[T]) Asc() OrderBy         { return Asc(f.col) }
func (f Numeric[T]) Desc() OrderBy        { return Desc(f.col) }

// NumericOpt is a nullable numeric column. Ordering comparisons take a plain
// value because NULL never orders.
type NumericOpt[T Number] struct{ col string }

// NewNumericOpt returns a handle for nullable column col.
func NewNumericOpt[T Number](col string) NumericOpt[T] { return NumericOpt[T]{col: col} }

func (f NumericOpt[T]) Column() string { return f.col }

func (f NumericOpt[T]) Equal(v Optional[T]) Clause    { return compareOpt(f.col, OpEqual, false, v) }
func (f NumericOpt[T]) NotEqual(v Optional[T]) Clause { return compareOpt(f.col, OpNotEqual, true, v) }
func (f NumericOpt[T]) Gt(v T) Clause                 { return compare(f.col, OpGt, false, v) }
func (f NumericOpt[T]) Gte(v T) Clause                { return compare(f.col, OpGte, false, v) }
func (f NumericOpt[T]) Lt(v T) Clause                 { return compare(f.col, OpLt, false, v) }
func (f NumericOpt[T]) Lte(v T) Clause                { return compare(f.col, OpLte, false, v) }
func (f NumericOpt[T]) In(vs ...T) Clause             { return in(f.col, false, vs) }
func (f NumericOpt[T]) NotIn(vs ...T) Clause          { return in(f.col, true, vs) }
func (f NumericOpt[T]) Set(v Optional[T]) Clause      { return SetValue(f.col, v) }
func (f NumericOpt[T]) SetNull() Clause               { return setNull(f.col) }
func (f NumericOpt[T]) Asc() OrderBy                  { return Asc(f.col) }
func (f NumericOpt[T]) Desc() OrderBy                 { return Desc(f.col) }

// =============================================================================
// Basic
// =============================================================================

// Basic is a non-nullable column of any other type (bool, uuid, time, bytes).
// Equality against a nil pointer still renders IS NULL.
type Basic[T any] struct{ col string }

// NewBasic returns a handle for column col.
func NewBasic[T any](col string) Basic[T] { return Basic[T]{col: col} }

func (f Basic[T]) Column() string       { return f.col }
func (f Basic[T]) Equal(v T) Clause     { return compareAny(f.col, OpEqual, false, v) }
func (f Basic[T]) NotEqual(v T) Clause  { return compareAny(f.col, OpNotEqual, true, v) }
func (f Basic[T]) In(vs ...T) Clause    { return in(f.col, false, vs) }
func (f Basic[T]) NotIn(vs ...T) Clause { return in(f.col, true, vs) }
func (f Basic[T]) Set(v T) Clause       { return setValue(f.col, v) }
func (f Basic[T]) Asc() OrderBy         { return Asc(f.col) }
func (f Basic[T]) Desc() OrderBy        { return Desc(f.col) }

// BasicOpt is a nullable column of any other type.
type BasicOpt[T any] struct{ col string }

// NewBasicOpt returns a handle for nullable column col.
func NewBasicOpt[T any](col string) BasicOpt[T] { return BasicOpt[T]{col: col} }

func (f BasicOpt[T]) Column() string { return f.col }

func (f BasicOpt[T]) Equal(v Optional[T]) Clause    { return compareOpt(f.col, OpEqual, false, v) }
func (f BasicOpt[T]) NotEqual(v Optional[T]) Clause { return compareOpt(f.col, OpNotEqual, true, v) }
func (f BasicOpt[T]) In(vs ...T) Clause             { return in(f.col, false, vs) }
func (f BasicOpt[T]) NotIn(vs ...T) Clause          { return in(f.col, true, vs) }
func (f BasicOpt[T]) Set(v Optional[T]) Clause      { return SetValue(f.col, v) }
func (f BasicOpt[T]) SetNull() Clause               { return setNull(f.col) }
func (f BasicOpt[T]) Asc() OrderBy                  { return Asc(f.col) }
func (f BasicOpt[T]) Desc() OrderBy                 { return Desc(f.col) }

func compareAny(col, op string, not bool, v any) Clause {
	if val, ok := present(v); ok {
		return compare(col, op, not, val)
	}
	return compareNull(col, op, not)
}
