package compile

import (
	"errors"
	"fmt"
	"strings"
)

// Syntax tags a SQL backend. It is the explicit value threaded through every
// compile call to pick a Dialect.
type Syntax int

const (
	SyntaxPostgres Syntax = iota + 1
	SyntaxMySQL
	SyntaxMSSQL
	SyntaxSQLite
)

// ErrUnknownDialect is returned when a dialect name cannot be resolved.
var ErrUnknownDialect = errors.New("unknown database dialect")

// String returns the dialect name.
func (s Syntax) String() string {
	switch s {
	case SyntaxPostgres:
		return "postgres"
	case SyntaxMySQL:
		return "mysql"
	case SyntaxMSSQL:
		return "mssql"
	case SyntaxSQLite:
		return "sqlite"
	default:
		return "unknown"
	}
}

// Dialect returns the singleton Dialect for this syntax, or nil.
func (s Syntax) Dialect() Dialect {
	switch s {
	case SyntaxPostgres:
		return Postgres
	case SyntaxMySQL:
		return MySQL
	case SyntaxMSSQL:
		return MSSQL
	case SyntaxSQLite:
		return SQLite
	default:
		return nil
	}
}

// ParseSyntax resolves a dialect name. Common aliases are accepted.
func ParseSyntax(name string) (Syntax, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "postgres", "postgresql", "pg", "pgx":
		return SyntaxPostgres, nil
	case "mysql", "mariadb":
		return SyntaxMySQL, nil
	case "mssql", "sqlserver":
		return SyntaxMSSQL, nil
	case "sqlite", "sqlite3":
		return SyntaxSQLite, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownDialect, name)
	}
}

// Lookup returns the Dialect for a name.
func Lookup(name string) (Dialect, error) {
	s, err := ParseSyntax(name)
	if err != nil {
		return nil, err
	}
	return s.Dialect(), nil
}

// All returns every supported dialect in a stable order.
func All() []Dialect {
	return []Dialect{Postgres, MySQL, MSSQL, SQLite}
}
