package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weldsql/weld"
	"github.com/weldsql/weld/compile"
	"github.com/weldsql/weld/internal/config"
	"github.com/weldsql/weld/query"
	"github.com/weldsql/weld/runner"
	"github.com/weldsql/weld/schema"
)

const testSchema = `tables:
  - name: products
    primary_key: [id]
    columns:
      - {name: id, type: bigint}
      - {name: name, type: text}
      - {name: description, type: text, nullable: true}
      - {name: price, type: double}
  - name: order_lines
    primary_key: [order_id, line_no]
    columns:
      - {name: order_id, type: bigint}
      - {name: line_no, type: int}
      - {name: qty, type: int}
`

// setupProject writes a schema file and a weld.yaml with extra config lines,
// returning the config path.
func setupProject(t *testing.T, extra string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "schema.yaml"), []byte(testSchema), 0644))
	cfg := filepath.Join(dir, "weld.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("schema_file: schema.yaml\nlog_level: error\n"+extra), 0644))
	return cfg
}

// syncBuffer is a bytes.Buffer safe for a writer and a polling reader.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func run(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func TestCompile_Select(t *testing.T) {
	cfg := setupProject(t, "dialect: postgres\n")

	out, err := run(t, context.Background(), "--config", cfg, "compile",
		"-t", "products", "-w", "name~w%", "-w", "description=null", "--order", "-price", "--limit", "10")
	require.NoError(t, err)
	assert.Equal(t,
		`SELECT t1."id", t1."name", t1."description", t1."price" FROM "products" t1 WHERE ( t1."name" like $1 AND t1."description" IS NULL ) ORDER BY t1."price" DESC LIMIT 10`+"\n"+
			`-- args: ["w%"]`+"\n",
		out)
}

func TestCompile_DialectFlagOverridesConfig(t *testing.T) {
	cfg := setupProject(t, "dialect: postgres\n")

	out, err := run(t, context.Background(), "--config", cfg, "--dialect", "mysql", "compile",
		"-t", "products", "-w", "price>100", "--count")
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(*) FROM `products` t1 WHERE ( t1.`price` > ? )\n-- args: [100]\n", out)
}

func TestCompile_DialectFromDatabaseURL(t *testing.T) {
	cfg := setupProject(t, "database_url: sqlserver://sa@localhost?database=shop\n")

	out, err := run(t, context.Background(), "--config", cfg, "compile", "-t", "products", "-w", "id=3", "--delete")
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM [products] WHERE ( [products].[id] = @p1 )\n-- args: [3]\n", out)
}

func TestCompile_LimitedUpdate(t *testing.T) {
	cfg := setupProject(t, "dialect: postgres\n")

	out, err := run(t, context.Background(), "--config", cfg, "compile",
		"-t", "products", "-w", "price<5", "--order", "id", "--limit", "100",
		"--update", "price=0", "--set-null", "description")
	require.NoError(t, err)
	assert.Equal(t,
		`UPDATE "products" SET "price"=$1, "description"=NULL WHERE ( "products"."id" IN (SELECT t1."id" FROM "products" t1 WHERE ( t1."price" < $2 ) ORDER BY t1."id" ASC LIMIT 100) )`+"\n"+
			"-- args: [0, 5]\n",
		out)
}

func TestCompile_AllDialectsReportsUnsupported(t *testing.T) {
	cfg := setupProject(t, "")

	out, err := run(t, context.Background(), "--config", cfg, "compile", "--all-dialects",
		"-t", "order_lines", "--order", "line_no", "--limit", "1", "--update", "qty=0")
	require.NoError(t, err)

	for _, name := range []string{"postgres", "mysql", "sqlite"} {
		assert.Contains(t, out, "-- "+name+"\nUPDATE ")
	}
	assert.Contains(t, out, "-- mssql\n-- error: ")
	assert.Equal(t, 3, strings.Count(out, "-- args: [0]\n"))
}

func TestCompile_Errors(t *testing.T) {
	cfg := setupProject(t, "dialect: sqlite\n")

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"missing table", []string{}, "--table is required"},
		{"unknown table", []string{"-t", "nope"}, `unknown table "nope"`},
		{"no operator", []string{"-t", "products", "-w", "name"}, "want col<op>value"},
		{"bad operator", []string{"-t", "products", "-w", "name!x"}, "unknown operator"},
		{"bad value", []string{"-t", "products", "-w", "id=abc"}, "column id"},
		{"null with ordering operator", []string{"-t", "products", "-w", "price>null"}, "cannot compare"},
		{"count and update", []string{"-t", "products", "--count", "--update", "name=x"}, "--count cannot be combined"},
		{"delete and update", []string{"-t", "products", "--delete", "--set-null", "description"}, "--delete cannot be combined"},
		{"bad update", []string{"-t", "products", "--update", "name"}, "want col=value"},
		{"null into non-null", []string{"-t", "products", "--set-null", "name"}, "not nullable"},
		{"negative limit", []string{"-t", "products", "--limit", "-1"}, "negative limit"},
		{"bad order", []string{"-t", "products", "--order", "-"}, "invalid --order"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--config", cfg, "compile"}, tt.args...)
			_, err := run(t, context.Background(), args...)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}

	t.Run("unknown column", func(t *testing.T) {
		_, err := run(t, context.Background(), "--config", cfg, "compile", "-t", "products", "-w", "colour=red")
		var missing *weld.MissingColumnError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, "colour", missing.Column)
	})

	t.Run("no dialect", func(t *testing.T) {
		bare := setupProject(t, "")
		_, err := run(t, context.Background(), "--config", bare, "compile", "-t", "products")
		assert.ErrorIs(t, err, config.ErrNoDialect)
	})
}

func TestParseWhere(t *testing.T) {
	reg, err := schema.Load(strings.NewReader(testSchema))
	require.NoError(t, err)
	products, ok := reg.Lookup("products")
	require.True(t, ok)

	tests := []struct {
		expr   string
		op     string
		not    bool
		null   bool
		values []any
	}{
		{"name=bolt", query.OpEqual, false, false, []any{"bolt"}},
		{"name != bolt", query.OpNotEqual, true, false, []any{"bolt"}},
		{"name~b%", query.OpLike, false, false, []any{"b%"}},
		{"name!~b%", query.OpNotLike, true, false, []any{"b%"}},
		{"name~*B%", query.OpILike, false, false, []any{"B%"}},
		{"name!~*B%", query.OpNotILike, true, false, []any{"B%"}},
		{"price>=2.5", query.OpGte, false, false, []any{2.5}},
		{"price<=2.5", query.OpLte, false, false, []any{2.5}},
		{"id>7", query.OpGt, false, false, []any{int64(7)}},
		{"id<7", query.OpLt, false, false, []any{int64(7)}},
		{"description=NULL", query.OpEqual, false, true, nil},
		{"description!=null", query.OpNotEqual, true, true, nil},
		{"name=null", query.OpEqual, false, true, nil},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			c, err := parseWhere(products, tt.expr)
			require.NoError(t, err)
			assert.Equal(t, query.KindCompare, c.Kind)
			assert.Equal(t, tt.op, c.Op)
			assert.Equal(t, tt.not, c.Not)
			assert.Equal(t, tt.null, c.Null)
			assert.Equal(t, tt.values, c.Values)
		})
	}
}

func TestParseOrder(t *testing.T) {
	o, err := parseOrder("-price")
	require.NoError(t, err)
	assert.Equal(t, query.Desc("price"), o)

	o, err = parseOrder(" +name ")
	require.NoError(t, err)
	assert.Equal(t, query.Asc("name"), o)

	_, err = parseOrder(" ")
	assert.Error(t, err)
}

func TestFormatArgs(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, `[NULL, "a\"b", "raw", "2024-03-01T12:00:00Z", 3, true]`,
		formatArgs([]any{nil, `a"b`, []byte("raw"), ts, int64(3), true}))
	assert.Equal(t, "[]", formatArgs(nil))
}

func TestDialects(t *testing.T) {
	out, err := run(t, context.Background(), "dialects")
	require.NoError(t, err)
	for _, d := range compile.All() {
		assert.Contains(t, out, d.Name())
	}
	assert.Contains(t, out, "$1, $2")
	assert.Contains(t, out, "@p1, @p2")
	assert.Contains(t, out, "[schema].[table]")
	assert.Contains(t, out, "2100")
}

func TestExec_SQLite(t *testing.T) {
	ctx := context.Background()
	dbURL := "sqlite://" + filepath.Join(t.TempDir(), "shop.db")
	db, err := runner.Open(ctx, dbURL)
	require.NoError(t, err)
	for _, stmt := range []string{
		`CREATE TABLE products (id INTEGER PRIMARY KEY, name TEXT NOT NULL, description TEXT, price REAL NOT NULL)`,
		`INSERT INTO products VALUES (1, 'bolt', NULL, 0.5), (2, 'nut', 'hex', 0.25), (3, 'gear', NULL, 4)`,
	} {
		_, err := db.Execute(ctx, stmt, nil)
		require.NoError(t, err)
	}
	require.NoError(t, db.Close())

	cfg := setupProject(t, "database_url: "+dbURL+"\n")

	out, err := run(t, ctx, "--config", cfg, "exec", "-t", "products", "-w", "description=null", "--order", "id")
	require.NoError(t, err)
	assert.Contains(t, out, "bolt")
	assert.Contains(t, out, "gear")
	assert.NotContains(t, out, "nut")
	assert.Contains(t, out, "(2 rows)")

	out, err = run(t, ctx, "--config", cfg, "exec", "-t", "products", "-w", "price<1", "--count")
	require.NoError(t, err)
	assert.Equal(t, "2\n", out)

	out, err = run(t, ctx, "--config", cfg, "exec", "-t", "products", "--order", "-price", "--limit", "1",
		"--update", "description=top")
	require.NoError(t, err)
	assert.Equal(t, "1 rows affected\n", out)

	out, err = run(t, ctx, "--config", cfg, "exec", "-t", "products", "-w", "description=top")
	require.NoError(t, err)
	assert.Contains(t, out, "gear")
	assert.Contains(t, out, "(1 rows)")

	out, err = run(t, ctx, "--config", cfg, "exec", "-t", "products", "-w", "name~%t", "--delete")
	require.NoError(t, err)
	assert.Equal(t, "2 rows affected\n", out)

	out, err = run(t, ctx, "--config", cfg, "exec", "-t", "products", "-w", "id>100")
	require.NoError(t, err)
	assert.Equal(t, "(0 rows)\n", out)
}

func TestExec_NeedsDatabaseURL(t *testing.T) {
	cfg := setupProject(t, "dialect: sqlite\n")
	_, err := run(t, context.Background(), "--config", cfg, "exec", "-t", "products")
	assert.ErrorContains(t, err, "needs a database URL")
}

func TestWatchFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testSchema), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- watchFile(ctx, path, func() { calls.Add(1) })
	}()

	// Writes are repeated until one lands after the watcher is registered.
	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte(testSchema+"\n"), 0644)
		return calls.Load() > 0
	}, 5*time.Second, 300*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watchFile did not stop after cancel")
	}
}

func TestCompile_Watch(t *testing.T) {
	cfg := setupProject(t, "dialect: sqlite\n")
	schemaPath := filepath.Join(filepath.Dir(cfg), "schema.yaml")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cmd := NewRootCmd()
	out := &syncBuffer{}
	cmd.SetOut(out)
	cmd.SetErr(&syncBuffer{})
	cmd.SetArgs([]string{"--config", cfg, "compile", "-t", "products", "--count", "--watch"})
	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	const want = `SELECT COUNT(*) FROM "products" t1`
	require.Eventually(t, func() bool {
		_ = os.WriteFile(schemaPath, []byte(testSchema), 0644)
		return strings.Count(out.String(), want) >= 2
	}, 5*time.Second, 300*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("compile --watch did not stop after cancel")
	}
}
