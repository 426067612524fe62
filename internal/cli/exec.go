package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weldsql/weld/logging"
	"github.com/weldsql/weld/runner"
	"github.com/weldsql/weld/schema"
)

// NewExecCommand creates the exec command.
func NewExecCommand() *cobra.Command {
	var f queryFlags

	cmd := &cobra.Command{
		Use:   "exec",
		Short: "Run a query against the configured database",
		Long: `Compile a query exactly as compile does and run it against database_url.

Selects print a table of rows, --count prints the count, and --update,
--set-null or --delete print the number of affected rows. The dialect is
taken from the database URL.`,
		Example: `  weld exec --db postgres://localhost/shop -t products -w 'price>100' --limit 5
  weld exec --db sqlite://shop.db -t products -w 'description=null' --set-null description`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f.capture(cmd.Flags())
			return runExec(cmd, &f)
		},
	}

	f.register(cmd.Flags())
	return cmd
}

func runExec(cmd *cobra.Command, f *queryFlags) error {
	ctx := cmd.Context()
	cfg := GetConfig(ctx)
	logger := logging.FromContext(ctx)

	if cfg.DatabaseURL == "" {
		return errors.New("exec needs a database URL: set --db, WELD_DATABASE_URL or database_url in weld.yaml")
	}

	reg, err := schema.LoadFile(cfg.SchemaPath())
	if err != nil {
		return err
	}
	p, err := f.build(reg)
	if err != nil {
		return err
	}

	db, err := runner.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	client := runner.Instrument(db,
		runner.WithSlowThreshold(cfg.SlowThreshold),
		runner.WithSlowQueryLog(),
	)
	defer func() {
		logger.Debug("exec finished", "stats", client.QueryStats().Stats().String())
	}()

	w := cmd.OutOrStdout()
	switch {
	case p.upd != nil:
		n, err := p.upd.Run(ctx, client)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%d rows affected\n", n)
	case p.del != nil:
		n, err := p.del.Run(ctx, client)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%d rows affected\n", n)
	case p.count:
		n, err := p.sel.Count(ctx, client)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, n)
	default:
		rows, err := p.sel.Run(ctx, client)
		if err != nil {
			return err
		}
		renderRows(w, p.sel.Schema().ColumnNames(), rows)
	}
	return nil
}
