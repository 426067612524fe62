package compile

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/weldsql/weld"
)

// Dialect defines the backend-specific formatting rules used while a
// statement is assembled. Each dialect (Postgres, MySQL, SQL Server, SQLite)
// implements this interface; implementations are stateless singletons.
type Dialect interface {
	// Name returns the dialect name for debugging/logging.
	Name() string

	// Syntax returns the backend tag.
	Syntax() Syntax

	// QuoteIdentifier quotes a single identifier (column or table segment).
	QuoteIdentifier(name string) string

	// QuoteTable quotes a possibly schema-qualified table path.
	QuoteTable(path []string) string

	// Placeholder returns the parameter placeholder for the given index (1-based).
	// Postgres uses $1, SQL Server uses @p1, MySQL and SQLite use ?.
	Placeholder(index int) string

	// MaxParams returns the most bind parameters one statement may carry.
	MaxParams() int

	// WriteInsert writes a complete INSERT statement. columns are unquoted
	// names, placeholders are already issued. A non-empty returning list asks
	// for the inserted row back.
	WriteInsert(b *strings.Builder, table string, columns, placeholders, returning []string) error

	// WriteLimitOffset writes the LIMIT/OFFSET tail. hasOrder reports whether
	// an ORDER BY has already been written.
	WriteLimitOffset(b *strings.Builder, limit, offset *int64, hasOrder bool)

	// WrapLimitedSubquery adapts a limited primary-key sub-select so it can
	// appear on the right of IN. columns are the unquoted key names.
	WrapLimitedSubquery(inner string, aliases *TableAlias, columns []string) string

	// SupportsRowValueIn reports whether (a, b) IN (SELECT ...) is available.
	SupportsRowValueIn() bool
}

// Dialect singletons.
var (
	Postgres Dialect = &PostgresDialect{}
	MySQL    Dialect = &MySQLDialect{}
	MSSQL    Dialect = &MSSQLDialect{}
	SQLite   Dialect = &SQLiteDialect{}
)

// =============================================================================
// Shared Helpers
// =============================================================================

func quoteWith(name, open, close string) string {
	return open + strings.ReplaceAll(name, close, close+close) + close
}

func quotePath(d Dialect, path []string) string {
	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = d.QuoteIdentifier(p)
	}
	return strings.Join(parts, ".")
}

func writeColumnList(b *strings.Builder, d Dialect, columns []string) {
	for i, col := range columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(d.QuoteIdentifier(col))
	}
}

func writeValues(b *strings.Builder, placeholders []string) {
	b.WriteString("VALUES (")
	b.WriteString(strings.Join(placeholders, ", "))
	b.WriteString(")")
}

// writeInsertHead writes "INSERT INTO t (a, b)", omitting the column list
// when there are no columns.
func writeInsertHead(b *strings.Builder, d Dialect, table string, columns []string) {
	b.WriteString("INSERT INTO ")
	b.WriteString(table)
	if len(columns) > 0 {
		b.WriteString(" (")
		writeColumnList(b, d, columns)
		b.WriteString(")")
	}
}

func writeLimitOffsetStd(b *strings.Builder, limit, offset *int64, noLimit string) {
	switch {
	case limit != nil:
		b.WriteString(" LIMIT ")
		b.WriteString(strconv.FormatInt(*limit, 10))
	case offset != nil:
		b.WriteString(" LIMIT ")
		b.WriteString(noLimit)
	}
	if offset != nil {
		b.WriteString(" OFFSET ")
		b.WriteString(strconv.FormatInt(*offset, 10))
	}
}

// =============================================================================
// Postgres Dialect
// =============================================================================

// PostgresDialect implements Dialect for PostgreSQL.
type PostgresDialect struct{}

func (d *PostgresDialect) Name() string   { return "postgres" }
func (d *PostgresDialect) Syntax() Syntax { return SyntaxPostgres }

func (d *PostgresDialect) QuoteIdentifier(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func (d *PostgresDialect) QuoteTable(path []string) string {
	return pgx.Identifier(path).Sanitize()
}

func (d *PostgresDialect) Placeholder(index int) string {
	return "$" + strconv.Itoa(index)
}

func (d *PostgresDialect) MaxParams() int { return 65535 }

func (d *PostgresDialect) WriteInsert(b *strings.Builder, table string, columns, placeholders, returning []string) error {
	writeInsertHead(b, d, table, columns)
	if len(columns) == 0 {
		b.WriteString(" DEFAULT VALUES")
	} else {
		b.WriteString(" ")
		writeValues(b, placeholders)
	}
	if len(returning) > 0 {
		b.WriteString(" RETURNING *")
	}
	return nil
}

func (d *PostgresDialect) WriteLimitOffset(b *strings.Builder, limit, offset *int64, _ bool) {
	writeLimitOffsetStd(b, limit, offset, "ALL")
}

func (d *PostgresDialect) WrapLimitedSubquery(inner string, _ *TableAlias, _ []string) string {
	return inner
}

func (d *PostgresDialect) SupportsRowValueIn() bool { return true }

// =============================================================================
// MySQL Dialect
// =============================================================================

// MySQLDialect implements Dialect for MySQL.
type MySQLDialect struct{}

func (d *MySQLDialect) Name() string   { return "mysql" }
func (d *MySQLDialect) Syntax() Syntax { return SyntaxMySQL }

func (d *MySQLDialect) QuoteIdentifier(name string) string {
	return quoteWith(name, "`", "`")
}

func (d *MySQLDialect) QuoteTable(path []string) string { return quotePath(d, path) }

func (d *MySQLDialect) Placeholder(int) string { return "?" }

func (d *MySQLDialect) MaxParams() int { return 64000 }

func (d *MySQLDialect) WriteInsert(b *strings.Builder, table string, columns, placeholders, returning []string) error {
	if len(returning) > 0 {
		return &weld.UnsupportedOperationError{Dialect: d.Name(), Operation: "INSERT ... RETURNING"}
	}
	writeInsertHead(b, d, table, columns)
	if len(columns) == 0 {
		b.WriteString(" () VALUES ()")
		return nil
	}
	b.WriteString(" ")
	writeValues(b, placeholders)
	return nil
}

func (d *MySQLDialect) WriteLimitOffset(b *strings.Builder, limit, offset *int64, _ bool) {
	writeLimitOffsetStd(b, limit, offset, "18446744073709551615")
}

// WrapLimitedSubquery wraps the sub-select in a derived table. MySQL rejects
// LIMIT inside IN (...) and rejects reading the update target in a direct
// sub-select; a derived table is materialized first and avoids both.
func (d *MySQLDialect) WrapLimitedSubquery(inner string, aliases *TableAlias, columns []string) string {
	var b strings.Builder
	b.WriteString("SELECT ")
	writeColumnList(&b, d, columns)
	b.WriteString(" FROM (")
	b.WriteString(inner)
	b.WriteString(") AS ")
	b.WriteString(aliases.Next())
	return b.String()
}

func (d *MySQLDialect) SupportsRowValueIn() bool { return true }

// =============================================================================
// SQL Server Dialect
// =============================================================================

// MSSQLDialect implements Dialect for Microsoft SQL Server.
type MSSQLDialect struct{}

func (d *MSSQLDialect) Name() string   { return "mssql" }
func (d *MSSQLDialect) Syntax() Syntax { return SyntaxMSSQL }

func (d *MSSQLDialect) QuoteIdentifier(name string) string {
	return quoteWith(name, "[", "]")
}

func (d *MSSQLDialect) QuoteTable(path []string) string { return quotePath(d, path) }

func (d *MSSQLDialect) Placeholder(index int) string {
	return "@p" + strconv.Itoa(index)
}

func (d *MSSQLDialect) MaxParams() int { return 2100 }

func (d *MSSQLDialect) WriteInsert(b *strings.Builder, table string, columns, placeholders, returning []string) error {
	writeInsertHead(b, d, table, columns)
	if len(returning) > 0 {
		b.WriteString(" OUTPUT ")
		for i, col := range returning {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString("Inserted.")
			b.WriteString(d.QuoteIdentifier(col))
		}
	}
	if len(columns) == 0 {
		b.WriteString(" DEFAULT VALUES")
		return nil
	}
	b.WriteString(" ")
	writeValues(b, placeholders)
	return nil
}

// WriteLimitOffset uses OFFSET/FETCH, which SQL Server only accepts after an
// ORDER BY.
func (d *MSSQLDialect) WriteLimitOffset(b *strings.Builder, limit, offset *int64, hasOrder bool) {
	if limit == nil && offset == nil {
		return
	}
	if !hasOrder {
		b.WriteString(" ORDER BY (SELECT NULL)")
	}
	var skip int64
	if offset != nil {
		skip = *offset
	}
	fmt.Fprintf(b, " OFFSET %d ROWS", skip)
	if limit != nil {
		fmt.Fprintf(b, " FETCH NEXT %d ROWS ONLY", *limit)
	}
}

func (d *MSSQLDialect) WrapLimitedSubquery(inner string, _ *TableAlias, _ []string) string {
	return inner
}

func (d *MSSQLDialect) SupportsRowValueIn() bool { return false }

// =============================================================================
// SQLite Dialect
// =============================================================================

// SQLiteDialect implements Dialect for SQLite.
type SQLiteDialect struct{}

func (d *SQLiteDialect) Name() string   { return "sqlite" }
func (d *SQLiteDialect) Syntax() Syntax { return SyntaxSQLite }

func (d *SQLiteDialect) QuoteIdentifier(name string) string {
	return quoteWith(name, `"`, `"`)
}

func (d *SQLiteDialect) QuoteTable(path []string) string { return quotePath(d, path) }

func (d *SQLiteDialect) Placeholder(int) string { return "?" }

func (d *SQLiteDialect) MaxParams() int { return 999 }

func (d *SQLiteDialect) WriteInsert(b *strings.Builder, table string, columns, placeholders, returning []string) error {
	writeInsertHead(b, d, table, columns)
	if len(columns) == 0 {
		b.WriteString(" DEFAULT VALUES")
	} else {
		b.WriteString(" ")
		writeValues(b, placeholders)
	}
	if len(returning) > 0 {
		b.WriteString(" RETURNING *")
	}
	return nil
}

func (d *SQLiteDialect) WriteLimitOffset(b *strings.Builder, limit, offset *int64, _ bool) {
	writeLimitOffsetStd(b, limit, offset, "-1")
}

func (d *SQLiteDialect) WrapLimitedSubquery(inner string, _ *TableAlias, _ []string) string {
	return inner
}

func (d *SQLiteDialect) SupportsRowValueIn() bool { return true }
