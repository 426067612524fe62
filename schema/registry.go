package schema

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrDuplicateTable is returned when a table name is registered twice.
var ErrDuplicateTable = errors.New("duplicate table")

// Registry maps table names to descriptors. Uses a sync.Map so tables can be
// registered from init() across packages.
type Registry struct {
	tables sync.Map
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add registers d under its full name.
func (r *Registry) Add(d *Descriptor) error {
	if d == nil {
		return fmt.Errorf("descriptor cannot be nil")
	}
	if _, loaded := r.tables.LoadOrStore(d.Name(), d); loaded {
		return fmt.Errorf("%w: %s", ErrDuplicateTable, d.Name())
	}
	return nil
}

// Lookup finds a table by its full name, falling back to the last path
// segment when exactly one table matches it.
func (r *Registry) Lookup(name string) (*Descriptor, bool) {
	if v, ok := r.tables.Load(name); ok {
		return v.(*Descriptor), true
	}
	var found *Descriptor
	matches := 0
	r.tables.Range(func(_, v any) bool {
		d := v.(*Descriptor)
		if d.path[len(d.path)-1] == name {
			found = d
			matches++
		}
		return true
	})
	if matches == 1 {
		return found, true
	}
	return nil, false
}

// Tables returns every registered descriptor sorted by name.
func (r *Registry) Tables() []*Descriptor {
	var out []*Descriptor
	r.tables.Range(func(_, v any) bool {
		out = append(out, v.(*Descriptor))
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// defaultRegistry stores tables registered via Register.
var defaultRegistry = NewRegistry()

// Register adds d to the default registry and returns it. It panics on a
// duplicate name, so it belongs in package-level vars or init().
//
//	var Products = schema.Register(schema.MustNew(
//	    []string{"products"},
//	    []schema.Column{{Name: "id", Type: schema.TypeBigInt}, {Name: "name", Type: schema.TypeText}},
//	    "id",
//	))
func Register(d *Descriptor) *Descriptor {
	if err := defaultRegistry.Add(d); err != nil {
		panic(err)
	}
	return d
}

// Lookup finds a table in the default registry.
func Lookup(name string) (*Descriptor, bool) {
	return defaultRegistry.Lookup(name)
}

// RegisteredTables returns the default registry's tables.
func RegisteredTables() []*Descriptor {
	return defaultRegistry.Tables()
}

// ClearRegistry empties the default registry. Used for testing.
func ClearRegistry() {
	defaultRegistry = NewRegistry()
}
