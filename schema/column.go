package schema

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Type is a column's declared value type tag.
type Type string

const (
	TypeInt       Type = "int"
	TypeBigInt    Type = "bigint"
	TypeSmallInt  Type = "smallint"
	TypeFloat     Type = "float"
	TypeDouble    Type = "double"
	TypeDecimal   Type = "decimal"
	TypeText      Type = "text"
	TypeBool      Type = "bool"
	TypeUUID      Type = "uuid"
	TypeBytes     Type = "bytes"
	TypeTimestamp Type = "timestamp"
	TypeJSON      Type = "json"
)

var knownTypes = map[Type]bool{
	TypeInt: true, TypeBigInt: true, TypeSmallInt: true,
	TypeFloat: true, TypeDouble: true, TypeDecimal: true,
	TypeText: true, TypeBool: true, TypeUUID: true,
	TypeBytes: true, TypeTimestamp: true, TypeJSON: true,
}

// ParseType resolves a type tag. Common SQL spellings are folded onto the
// canonical tags.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case "integer", "int4":
		t = TypeInt
	case "int8":
		t = TypeBigInt
	case "int2":
		t = TypeSmallInt
	case "real", "float4":
		t = TypeFloat
	case "float8", "double precision":
		t = TypeDouble
	case "numeric":
		t = TypeDecimal
	case "string", "varchar", "char":
		t = TypeText
	case "boolean":
		t = TypeBool
	case "blob", "bytea", "binary":
		t = TypeBytes
	case "datetime", "timestamptz":
		t = TypeTimestamp
	case "jsonb":
		t = TypeJSON
	}
	if !knownTypes[t] {
		return "", fmt.Errorf("unknown column type %q", s)
	}
	return t, nil
}

// Column identifies a table column. Columns are compared by name.
type Column struct {
	Name     string
	Type     Type
	Nullable bool
}

// Equal reports whether two columns name the same column.
func (c Column) Equal(o Column) bool {
	return c.Name == o.Name
}

// ParseValue converts text into a value suited to the column's type.
// Text that spells "null" yields nil for nullable columns.
func (c Column) ParseValue(s string) (any, error) {
	if c.Nullable && strings.EqualFold(s, "null") {
		return nil, nil
	}
	switch c.Type {
	case TypeInt, TypeBigInt, TypeSmallInt:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", c.Name, err)
		}
		return n, nil
	case TypeFloat, TypeDouble:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", c.Name, err)
		}
		return f, nil
	case TypeBool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", c.Name, err)
		}
		return b, nil
	case TypeUUID:
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", c.Name, err)
		}
		return id.String(), nil
	case TypeTimestamp:
		ts, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", c.Name, err)
		}
		return ts, nil
	case TypeBytes:
		return []byte(s), nil
	case TypeJSON:
		if !json.Valid([]byte(s)) {
			return nil, fmt.Errorf("column %s: invalid json", c.Name)
		}
		return s, nil
	default:
		// text and decimal travel as strings
		return s, nil
	}
}
