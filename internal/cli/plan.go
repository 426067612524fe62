package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/weldsql/weld/compile"
	"github.com/weldsql/weld/query"
	"github.com/weldsql/weld/schema"
)

// queryFlags holds the flags shared by compile and exec.
type queryFlags struct {
	table   string
	where   []string
	order   []string
	limit   int64
	offset  int64
	count   bool
	update  []string
	setNull []string
	delete  bool

	limitSet  bool
	offsetSet bool
}

func (f *queryFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.table, "table", "t", "", "Table to query (schema.table for qualified names)")
	fs.StringArrayVarP(&f.where, "where", "w", nil, "Filter col<op>value; op is one of = != ~ !~ ~* !~* > >= < <= (repeatable)")
	fs.StringArrayVar(&f.order, "order", nil, "Order by col, or -col for descending (repeatable)")
	fs.Int64Var(&f.limit, "limit", 0, "Maximum number of rows")
	fs.Int64Var(&f.offset, "offset", 0, "Number of rows to skip")
	fs.BoolVar(&f.count, "count", false, "Count matching rows")
	fs.StringArrayVar(&f.update, "update", nil, "Assign col=value on every matching row (repeatable)")
	fs.StringArrayVar(&f.setNull, "set-null", nil, "Assign NULL to a nullable column (repeatable)")
	fs.BoolVar(&f.delete, "delete", false, "Delete every matching row")
}

// capture records which optional flags were given.
func (f *queryFlags) capture(fs *pflag.FlagSet) {
	f.limitSet = fs.Changed("limit")
	f.offsetSet = fs.Changed("offset")
}

// plan is a parsed query ready to compile or run.
type plan struct {
	sel   *query.SelectBuilder
	upd   *query.UpdateBuilder
	del   *query.DeleteBuilder
	count bool
}

// Statement compiles the plan for d.
func (p *plan) Statement(d compile.Dialect) (compile.Statement, error) {
	switch {
	case p.upd != nil:
		return p.upd.Statement(d)
	case p.del != nil:
		return p.del.Statement(d)
	case p.count:
		return p.sel.CountStatement(d)
	default:
		return p.sel.Statement(d)
	}
}

// build resolves the flags against the schema registry.
func (f *queryFlags) build(reg *schema.Registry) (*plan, error) {
	if f.table == "" {
		return nil, errors.New("--table is required")
	}
	desc, ok := reg.Lookup(f.table)
	if !ok {
		return nil, fmt.Errorf("unknown table %q", f.table)
	}
	updating := len(f.update) > 0 || len(f.setNull) > 0
	switch {
	case f.count && (updating || f.delete):
		return nil, errors.New("--count cannot be combined with --update, --set-null or --delete")
	case updating && f.delete:
		return nil, errors.New("--delete cannot be combined with --update or --set-null")
	}

	q := query.From(desc)
	for _, expr := range f.where {
		c, err := parseWhere(desc, expr)
		if err != nil {
			return nil, err
		}
		q.Where(c)
	}
	for _, term := range f.order {
		o, err := parseOrder(term)
		if err != nil {
			return nil, err
		}
		q.OrderBy(o)
	}
	if f.limitSet {
		q.Limit(f.limit)
	}
	if f.offsetSet {
		q.Offset(f.offset)
	}

	p := &plan{sel: q, count: f.count}
	switch {
	case updating:
		u := q.Update()
		for _, expr := range f.update {
			name, raw, ok := strings.Cut(expr, "=")
			name = strings.TrimSpace(name)
			if !ok || name == "" {
				return nil, fmt.Errorf("invalid --update %q: want col=value", expr)
			}
			col, err := desc.Column(name)
			if err != nil {
				return nil, err
			}
			v, err := parseValue(col, strings.TrimSpace(raw))
			if err != nil {
				return nil, err
			}
			u.Set(query.SetValue(name, v))
		}
		for _, name := range f.setNull {
			u.SetNull(strings.TrimSpace(name))
		}
		p.upd = u
	case f.delete:
		p.del = q.Delete()
	}
	return p, nil
}

// whereOps is ordered so longer tokens match first.
var whereOps = []struct {
	token string
	op    string
}{
	{"!~*", query.OpNotILike},
	{"!~", query.OpNotLike},
	{"~*", query.OpILike},
	{"!=", query.OpNotEqual},
	{">=", query.OpGte},
	{"<=", query.OpLte},
	{"=", query.OpEqual},
	{"~", query.OpLike},
	{">", query.OpGt},
	{"<", query.OpLt},
}

// parseWhere turns "col<op>value" into a clause. A value of null compares
// against NULL.
func parseWhere(desc *schema.Descriptor, expr string) (query.Clause, error) {
	i := strings.IndexAny(expr, "=!~<>")
	if i <= 0 {
		return query.Clause{}, fmt.Errorf("invalid --where %q: want col<op>value", expr)
	}
	name := strings.TrimSpace(expr[:i])
	rest := expr[i:]
	for _, o := range whereOps {
		if !strings.HasPrefix(rest, o.token) {
			continue
		}
		col, err := desc.Column(name)
		if err != nil {
			return query.Clause{}, err
		}
		v, err := parseValue(col, strings.TrimSpace(rest[len(o.token):]))
		if err != nil {
			return query.Clause{}, err
		}
		return query.Dynamic(name, o.op, v)
	}
	return query.Clause{}, fmt.Errorf("invalid --where %q: unknown operator", expr)
}

func parseValue(col schema.Column, raw string) (any, error) {
	if strings.EqualFold(raw, "null") {
		return nil, nil
	}
	return col.ParseValue(raw)
}

func parseOrder(term string) (query.OrderBy, error) {
	term = strings.TrimSpace(term)
	if name, ok := strings.CutPrefix(term, "-"); ok {
		if name == "" {
			return query.OrderBy{}, fmt.Errorf("invalid --order %q", term)
		}
		return query.Desc(name), nil
	}
	if term == "" {
		return query.OrderBy{}, errors.New("invalid --order: empty column")
	}
	return query.Asc(strings.TrimPrefix(term, "+")), nil
}
