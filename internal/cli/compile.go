package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/weldsql/weld/compile"
	"github.com/weldsql/weld/internal/config"
	"github.com/weldsql/weld/logging"
	"github.com/weldsql/weld/schema"
)

// NewCompileCommand creates the compile command.
func NewCompileCommand() *cobra.Command {
	var (
		f           queryFlags
		allDialects bool
		watch       bool
	)

	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Print the SQL and arguments for a query",
		Long: `Compile a query against the schema file and print the SQL with its bind
arguments. Nothing is sent to a database.

Without --update, --set-null, --delete or --count the query is a SELECT of
every column.`,
		Example: `  # Filtered, ordered select for PostgreSQL
  weld compile --dialect postgres -t products -w 'name~w%' -w 'description=null' --order -price --limit 10

  # Bulk update with a limit, in every dialect
  weld compile --all-dialects -t products -w 'stock<5' --order id --limit 100 --update stock=0

  # Recompile whenever the schema file changes
  weld compile --dialect sqlite -t products --count --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f.capture(cmd.Flags())
			return runCompile(cmd, &f, allDialects, watch)
		},
	}

	f.register(cmd.Flags())
	cmd.Flags().BoolVar(&allDialects, "all-dialects", false, "Compile for every supported dialect")
	cmd.Flags().BoolVar(&watch, "watch", false, "Recompile when the schema file changes")

	return cmd
}

func runCompile(cmd *cobra.Command, f *queryFlags, allDialects, watch bool) error {
	ctx := cmd.Context()
	cfg := GetConfig(ctx)
	logger := logging.FromContext(ctx)

	dialects, err := targetDialects(cfg, allDialects)
	if err != nil {
		return err
	}

	once := func() error {
		reg, err := schema.LoadFile(cfg.SchemaPath())
		if err != nil {
			return err
		}
		p, err := f.build(reg)
		if err != nil {
			return err
		}
		return printCompiled(cmd.OutOrStdout(), p, dialects)
	}

	if err := once(); err != nil {
		if !watch {
			return err
		}
		logger.Error("compile failed", "error", err)
	}
	if !watch {
		return nil
	}

	logger.Info("watching schema file", "path", cfg.SchemaPath())
	return watchFile(ctx, cfg.SchemaPath(), func() {
		logger.Info("schema changed, recompiling")
		if err := once(); err != nil {
			logger.Error("compile failed", "error", err)
		}
	})
}

// targetDialects returns every dialect, or the configured one.
func targetDialects(cfg *config.Config, all bool) ([]compile.Dialect, error) {
	if all {
		return compile.All(), nil
	}
	s, err := cfg.Syntax()
	if err != nil {
		return nil, err
	}
	return []compile.Dialect{s.Dialect()}, nil
}

// printCompiled writes one statement per dialect. With several dialects
// each is headed by its name and a dialect that cannot express the query
// is reported inline.
func printCompiled(w io.Writer, p *plan, dialects []compile.Dialect) error {
	multi := len(dialects) > 1
	for _, d := range dialects {
		st, err := p.Statement(d)
		if err != nil {
			if !multi {
				return err
			}
			fmt.Fprintf(w, "-- %s\n-- error: %v\n", d.Name(), err)
			continue
		}
		if multi {
			fmt.Fprintf(w, "-- %s\n", d.Name())
		}
		fmt.Fprintln(w, st.SQL)
		if len(st.Args) > 0 {
			fmt.Fprintf(w, "-- args: %s\n", formatArgs(st.Args))
		}
	}
	return nil
}
