package query

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/weldsql/weld/compile"
)

// Kind tags the variant held by a Clause.
type Kind int

const (
	// KindCompare is a column predicate: =, !=, like family, ordering.
	KindCompare Kind = iota
	// KindIn is col IN (...) or, negated, col NOT IN (...).
	KindIn
	// KindSetValue assigns a bound value in an UPDATE.
	KindSetValue
	// KindSetNull assigns NULL in an UPDATE.
	KindSetNull
	// KindCustom is a hand-written fragment with ? markers.
	KindCustom
)

func (k Kind) String() string {
	switch k {
	case KindCompare:
		return "compare"
	case KindIn:
		return "in"
	case KindSetValue:
		return "set"
	case KindSetNull:
		return "set null"
	case KindCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// Comparison operators.
const (
	OpEqual    = "="
	OpNotEqual = "!="
	OpLike     = "like"
	OpNotLike  = "not like"
	OpILike    = "ilike"
	OpNotILike = "not ilike"
	OpGt       = ">"
	OpGte      = ">="
	OpLt       = "<"
	OpLte      = "<="
)

// Clause is a single predicate or assignment bound to one column.
//
// Null is set when the compared value is absent; the clause then renders
// IS NULL (or IS NOT NULL when Not is set) and binds nothing.
type Clause struct {
	Kind     Kind
	Column   string
	Op       string
	Not      bool
	Null     bool
	Values   []any
	Fragment string
}

// IsPredicate reports whether the clause belongs in a WHERE.
func (c Clause) IsPredicate() bool {
	return c.Kind == KindCompare || c.Kind == KindIn || c.Kind == KindCustom
}

// IsAssignment reports whether the clause belongs in a SET list.
func (c Clause) IsAssignment() bool {
	return c.Kind == KindSetValue || c.Kind == KindSetNull
}

// Render writes the clause for d against alias, drawing placeholders from
// params. The returned args are in placeholder order.
func (c Clause) Render(d compile.Dialect, alias string, params *compile.NextParam) (string, []any, error) {
	s := &stmt{d: d, params: params, aliases: compile.NewTableAlias()}
	frag, err := c.render(s, alias)
	if err != nil {
		return "", nil, err
	}
	return frag, s.args, nil
}

func (c Clause) render(s *stmt, alias string) (string, error) {
	switch c.Kind {
	case KindCompare:
		col := s.column(alias, c.Column)
		if c.Null {
			if c.Not {
				return col + " IS NOT NULL", nil
			}
			return col + " IS NULL", nil
		}
		if len(c.Values) != 1 {
			return "", fmt.Errorf("query: %s %s expects one value, got %d", c.Column, c.Op, len(c.Values))
		}
		return col + " " + c.Op + " " + s.bind(c.Values[0]), nil

	case KindIn:
		if len(c.Values) == 0 {
			if c.Not {
				return "1=1", nil
			}
			return "1=0", nil
		}
		var b strings.Builder
		b.WriteString(s.column(alias, c.Column))
		if c.Not {
			b.WriteString(" NOT IN (")
		} else {
			b.WriteString(" IN (")
		}
		for i, v := range c.Values {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(s.bind(v))
		}
		b.WriteString(")")
		return b.String(), nil

	case KindSetValue:
		if len(c.Values) != 1 {
			return "", fmt.Errorf("query: set %s expects one value, got %d", c.Column, len(c.Values))
		}
		return s.d.QuoteIdentifier(c.Column) + "=" + s.bind(c.Values[0]), nil

	case KindSetNull:
		return s.d.QuoteIdentifier(c.Column) + "=NULL", nil

	case KindCustom:
		markers := countMarkers(c.Fragment)
		if markers != len(c.Values) {
			return "", fmt.Errorf("query: custom clause has %d markers but %d args", markers, len(c.Values))
		}
		var b strings.Builder
		if c.Column != "" {
			b.WriteString(s.column(alias, c.Column))
			b.WriteString(" ")
		}
		next := 0
		for i := 0; i < len(c.Fragment); i++ {
			if c.Fragment[i] != '?' {
				b.WriteByte(c.Fragment[i])
				continue
			}
			if i+1 < len(c.Fragment) && c.Fragment[i+1] == '?' {
				b.WriteByte('?')
				i++
				continue
			}
			b.WriteString(s.bind(c.Values[next]))
			next++
		}
		return b.String(), nil
	}
	return "", fmt.Errorf("query: unknown clause kind %d", c.Kind)
}

// countMarkers counts the ? markers in fragment, skipping ?? escapes.
func countMarkers(fragment string) int {
	n := 0
	for i := 0; i < len(fragment); i++ {
		if fragment[i] != '?' {
			continue
		}
		if i+1 < len(fragment) && fragment[i+1] == '?' {
			i++
			continue
		}
		n++
	}
	return n
}

func compare(col, op string, not bool, v any) Clause {
	return Clause{Kind: KindCompare, Column: col, Op: op, Not: not, Values: []any{v}}
}

func compareNull(col, op string, not bool) Clause {
	return Clause{Kind: KindCompare, Column: col, Op: op, Not: not, Null: true}
}

func compareOpt[T any](col, op string, not bool, v Optional[T]) Clause {
	if val, ok := v.Get(); ok {
		return compare(col, op, not, val)
	}
	return compareNull(col, op, not)
}

func in[T any](col string, not bool, vs []T) Clause {
	vals := make([]any, len(vs))
	for i, v := range vs {
		vals[i] = v
	}
	return Clause{Kind: KindIn, Column: col, Not: not, Values: vals}
}

func setValue(col string, v any) Clause {
	return Clause{Kind: KindSetValue, Column: col, Values: []any{v}}
}

func setNull(col string) Clause {
	return Clause{Kind: KindSetNull, Column: col}
}

// SetValue assigns v to column. A nil or absent v assigns NULL.
func SetValue(column string, v any) Clause {
	if val, ok := present(v); ok {
		return setValue(column, val)
	}
	return setNull(column)
}

// SetNull assigns NULL to column.
func SetNull(column string) Clause {
	return setNull(column)
}

// Custom is a hand-written predicate. Each ? in fragment becomes the next
// dialect placeholder and binds the matching arg. ?? writes a literal ?,
// including inside string literals. When column is set the fragment is
// prefixed with the alias-qualified column:
//
//	query.Custom("price", "BETWEEN ? AND ?", 10, 20)
//	// t1."price" BETWEEN $1 AND $2
//	query.Custom("payload", "?? ?", "sku")
//	// t1."payload" ? $1
func Custom(column, fragment string, args ...any) Clause {
	return Clause{Kind: KindCustom, Column: column, Fragment: fragment, Values: args}
}

var negated = map[string]bool{
	OpNotEqual: true,
	OpNotLike:  true,
	OpNotILike: true,
}

var nullable = map[string]bool{
	OpEqual:    true,
	OpNotEqual: true,
	OpLike:     true,
	OpNotLike:  true,
	OpILike:    true,
	OpNotILike: true,
}

// Dynamic builds a comparison from runtime values, for callers that do not
// know the column type at compile time. A nil, nil-pointer or absent value
// switches equality and pattern operators to IS NULL / IS NOT NULL.
func Dynamic(column, op string, value any) (Clause, error) {
	op = strings.ToLower(strings.TrimSpace(op))
	switch op {
	case OpEqual, OpNotEqual, OpLike, OpNotLike, OpILike, OpNotILike, OpGt, OpGte, OpLt, OpLte:
	case "<>":
		op = OpNotEqual
	default:
		return Clause{}, fmt.Errorf("query: unknown operator %q", op)
	}
	val, ok := present(value)
	if !ok {
		if !nullable[op] {
			return Clause{}, fmt.Errorf("query: cannot compare %s %s NULL", column, op)
		}
		return compareNull(column, op, negated[op]), nil
	}
	return compare(column, op, negated[op], val), nil
}

// present unwraps Optional values and reports false for nil, nil pointers
// and absent Optionals.
func present(v any) (any, bool) {
	if v == nil {
		return nil, false
	}
	if o, ok := v.(optional); ok {
		return o.unwrap()
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return nil, false
	}
	return v, true
}
