// Package dburl resolves database URLs to a dialect and a database/sql
// driver name and DSN.
package dburl

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/microsoft/go-mssqldb/msdsn"
)

// Supported database dialects
const (
	DialectPostgres = "postgres"
	DialectMySQL    = "mysql"
	DialectMSSQL    = "mssql"
	DialectSQLite   = "sqlite"
)

var (
	ErrUnknownDialect = errors.New("unknown database dialect")
	ErrInvalidURL     = errors.New("invalid database URL")
)

// InferDialectFromDBUrl returns the dialect ("postgres", "mysql", "mssql" or
// "sqlite") based on the URL scheme.
func InferDialectFromDBUrl(dbURL string) (string, error) {
	u, err := url.Parse(dbURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	scheme := strings.ToLower(u.Scheme)
	switch scheme {
	case "postgres", "postgresql":
		return DialectPostgres, nil
	case "mysql":
		return DialectMySQL, nil
	case "sqlserver", "mssql":
		return DialectMSSQL, nil
	case "sqlite", "sqlite3":
		return DialectSQLite, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownDialect, scheme)
	}
}

// IsLocalhost returns true if the URL points to localhost (127.0.0.1, localhost, or ::1).
// For SQLite URLs, this always returns true since SQLite is file-based.
func IsLocalhost(dbURL string) bool {
	u, err := url.Parse(dbURL)
	if err != nil {
		return false
	}

	scheme := strings.ToLower(u.Scheme)

	// SQLite is always local
	if scheme == "sqlite" || scheme == "sqlite3" {
		return true
	}

	host := strings.ToLower(u.Hostname())
	return host == "localhost" || host == "127.0.0.1" || host == "::1"
}

// ParseDatabaseName extracts the database name from a URL.
// Returns an empty string if no database name is present.
func ParseDatabaseName(dbURL string) string {
	u, err := url.Parse(dbURL)
	if err != nil {
		return ""
	}
	if name := strings.TrimPrefix(u.Path, "/"); name != "" {
		return name
	}
	// SQL Server carries the database as a query parameter.
	return u.Query().Get("database")
}

// Target is a database URL resolved for database/sql.
type Target struct {
	// Dialect is one of the Dialect* constants.
	Dialect string

	// Driver is the registered database/sql driver name.
	Driver string

	// DSN is the driver-specific data source name.
	DSN string
}

// Resolve maps a URL to the driver and DSN that open it:
//
//	postgres://u@host/db      -> pgx, URL unchanged
//	mysql://u:p@host:3306/db  -> mysql, u:p@tcp(host:3306)/db
//	sqlserver://u:p@host?database=db -> sqlserver, URL unchanged
//	sqlite:///path/app.db     -> sqlite, /path/app.db
func Resolve(dbURL string) (Target, error) {
	dialect, err := InferDialectFromDBUrl(dbURL)
	if err != nil {
		return Target{}, err
	}

	switch dialect {
	case DialectPostgres:
		return Target{Dialect: dialect, Driver: "pgx", DSN: dbURL}, nil

	case DialectMySQL:
		dsn, err := MySQLURLToDSN(dbURL)
		if err != nil {
			return Target{}, err
		}
		return Target{Dialect: dialect, Driver: "mysql", DSN: dsn}, nil

	case DialectMSSQL:
		dsn := dbURL
		if i := strings.Index(dsn, "://"); i >= 0 {
			dsn = "sqlserver" + dsn[i:]
		}
		if _, err := msdsn.Parse(dsn); err != nil {
			return Target{}, fmt.Errorf("%w: %v", ErrInvalidURL, err)
		}
		return Target{Dialect: dialect, Driver: "sqlserver", DSN: dsn}, nil

	default:
		path := SQLiteURLToPath(dbURL)
		if path == "" {
			return Target{}, fmt.Errorf("%w: sqlite URL has no path", ErrInvalidURL)
		}
		return Target{Dialect: dialect, Driver: "sqlite", DSN: path}, nil
	}
}

// MySQLURLToDSN converts a mysql:// URL to a MySQL driver DSN.
// Format: user:password@tcp(host:port)/dbname?params
func MySQLURLToDSN(mysqlURL string) (string, error) {
	u, err := url.Parse(mysqlURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: MySQL URL has no host", ErrInvalidURL)
	}

	cfg := mysql.NewConfig()
	cfg.Net = "tcp"
	cfg.Addr = u.Host
	cfg.DBName = strings.TrimPrefix(u.Path, "/")
	if u.User != nil {
		cfg.User = u.User.Username()
		cfg.Passwd, _ = u.User.Password()
	}

	dsn := cfg.FormatDSN()
	if u.RawQuery == "" {
		return dsn, nil
	}
	// ParseDSN validates the query params.
	parsed, err := mysql.ParseDSN(dsn + "?" + u.RawQuery)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	return parsed.FormatDSN(), nil
}

// SQLiteURLToPath extracts the file path from a SQLite URL.
func SQLiteURLToPath(sqliteURL string) string {
	for _, prefix := range []string{"sqlite3://", "sqlite://", "sqlite3:", "sqlite:"} {
		if strings.HasPrefix(sqliteURL, prefix) {
			return sqliteURL[len(prefix):]
		}
	}
	return sqliteURL
}
