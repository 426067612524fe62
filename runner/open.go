package runner

import (
	"context"
	"database/sql"
	"fmt"

	// database/sql drivers for every supported dialect
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/microsoft/go-mssqldb"
	_ "modernc.org/sqlite"

	"github.com/weldsql/weld/compile"
	"github.com/weldsql/weld/dburl"
	"github.com/weldsql/weld/logging"
)

// Open resolves dbURL to a driver, opens and pings it, and returns a runner
// for the matching dialect. Close the runner to release the pool.
func Open(ctx context.Context, dbURL string) (*DB, error) {
	target, err := dburl.Resolve(dbURL)
	if err != nil {
		return nil, err
	}
	d, err := compile.Lookup(target.Dialect)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(target.Driver, target.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", target.Dialect, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s: %w", target.Dialect, err)
	}
	if target.Dialect == dburl.DialectSQLite {
		// Each sqlite connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	logging.FromContext(ctx).Debug("database opened",
		"dialect", target.Dialect,
		"driver", target.Driver,
		"database", dburl.ParseDatabaseName(dbURL),
		"local", dburl.IsLocalhost(dbURL),
	)

	r := New(db, d)
	r.closer = db.Close
	return r, nil
}
