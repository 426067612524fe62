package schema

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// File is the YAML layout read by LoadFile:
//
//	tables:
//	  - name: products
//	    schema: public
//	    primary_key: [id]
//	    columns:
//	      - {name: id, type: bigint}
//	      - {name: description, type: text, nullable: true}
type File struct {
	Tables []TableSpec `yaml:"tables"`
}

// TableSpec is one table entry of a schema file.
type TableSpec struct {
	Name       string       `yaml:"name"`
	Schema     string       `yaml:"schema,omitempty"`
	PrimaryKey []string     `yaml:"primary_key,omitempty"`
	Columns    []ColumnSpec `yaml:"columns"`
}

// ColumnSpec is one column entry of a schema file.
type ColumnSpec struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Nullable bool   `yaml:"nullable,omitempty"`
}

// Descriptor converts the entry into a validated descriptor.
func (t TableSpec) Descriptor() (*Descriptor, error) {
	path := []string{t.Name}
	if t.Schema != "" {
		path = []string{t.Schema, t.Name}
	}
	cols := make([]Column, 0, len(t.Columns))
	for _, c := range t.Columns {
		typ, err := ParseType(c.Type)
		if err != nil {
			return nil, fmt.Errorf("table %s column %s: %w", strings.Join(path, "."), c.Name, err)
		}
		cols = append(cols, Column{Name: c.Name, Type: typ, Nullable: c.Nullable})
	}
	return New(path, cols, t.PrimaryKey...)
}

// Load decodes a schema file into a new registry.
func Load(r io.Reader) (*Registry, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return NewRegistry(), nil
		}
		return nil, fmt.Errorf("decode schema: %w", err)
	}

	reg := NewRegistry()
	for _, t := range f.Tables {
		d, err := t.Descriptor()
		if err != nil {
			return nil, err
		}
		if err := reg.Add(d); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// LoadFile reads a YAML schema file.
func LoadFile(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open schema file: %w", err)
	}
	defer f.Close()
	return Load(f)
}
