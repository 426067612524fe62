// Package schema describes tables: their identifier path, ordered columns and
// primary key. Descriptors are built once and shared read-only.
package schema

import (
	"fmt"
	"slices"
	"strings"

	"github.com/weldsql/weld"
)

// Provider supplies the descriptor of a model's table. It needs no database
// connection.
type Provider interface {
	Schema() *Descriptor
}

// Descriptor is the static metadata of one table.
type Descriptor struct {
	path    []string
	columns []Column
	pks     []Column
}

// New validates and builds a descriptor. path is the table identifier split
// into segments, e.g. ["public", "products"]. primaryKeys may be empty.
func New(path []string, columns []Column, primaryKeys ...string) (*Descriptor, error) {
	if len(path) == 0 {
		return nil, fmt.Errorf("table identifier cannot be empty")
	}
	for _, seg := range path {
		if err := ValidateIdentifier(seg); err != nil {
			return nil, fmt.Errorf("table %s: %w", strings.Join(path, "."), err)
		}
	}
	name := strings.Join(path, ".")
	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s: no columns", name)
	}

	seen := make(map[string]bool, len(columns))
	for _, c := range columns {
		if err := ValidateIdentifier(c.Name); err != nil {
			return nil, fmt.Errorf("table %s: %w", name, err)
		}
		if seen[c.Name] {
			return nil, fmt.Errorf("table %s: duplicate column %q", name, c.Name)
		}
		seen[c.Name] = true
	}

	d := &Descriptor{
		path:    slices.Clone(path),
		columns: slices.Clone(columns),
	}
	for _, pk := range primaryKeys {
		col, err := d.Column(pk)
		if err != nil {
			return nil, err
		}
		d.pks = append(d.pks, col)
	}
	return d, nil
}

// MustNew is like New but panics on error. Intended for package-level
// table definitions.
func MustNew(path []string, columns []Column, primaryKeys ...string) *Descriptor {
	d, err := New(path, columns, primaryKeys...)
	if err != nil {
		panic(err)
	}
	return d
}

// Schema returns d so a Descriptor is its own Provider.
func (d *Descriptor) Schema() *Descriptor { return d }

// Identifier returns the table path segments.
func (d *Descriptor) Identifier() []string { return slices.Clone(d.path) }

// Name returns the path joined with ".".
func (d *Descriptor) Name() string { return strings.Join(d.path, ".") }

// Columns returns every column in declaration order.
func (d *Descriptor) Columns() []Column { return slices.Clone(d.columns) }

// PrimaryKeys returns the primary-key columns, possibly none.
func (d *Descriptor) PrimaryKeys() []Column { return slices.Clone(d.pks) }

// PrimaryKeyNames returns the primary-key column names.
func (d *Descriptor) PrimaryKeyNames() []string {
	names := make([]string, len(d.pks))
	for i, c := range d.pks {
		names[i] = c.Name
	}
	return names
}

// ColumnNames returns every column name in declaration order.
func (d *Descriptor) ColumnNames() []string {
	names := make([]string, len(d.columns))
	for i, c := range d.columns {
		names[i] = c.Name
	}
	return names
}

// Column looks a column up by name. An unknown name yields a
// *weld.MissingColumnError.
func (d *Descriptor) Column(name string) (Column, error) {
	for _, c := range d.columns {
		if c.Name == name {
			return c, nil
		}
	}
	return Column{}, &weld.MissingColumnError{Table: d.Name(), Column: name}
}

// HasColumn reports whether the table has a column with this name.
func (d *Descriptor) HasColumn(name string) bool {
	_, err := d.Column(name)
	return err == nil
}

// IsPrimaryKey reports whether name is part of the primary key.
func (d *Descriptor) IsPrimaryKey(name string) bool {
	return slices.ContainsFunc(d.pks, func(c Column) bool {
		return c.Equal(Column{Name: name})
	})
}
