// Package cli provides the command-line interface for weld.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/weldsql/weld/compile"
	"github.com/weldsql/weld/internal/config"
	"github.com/weldsql/weld/logging"
)

// Version is set at build time.
var Version = "0.1.0"

// configKey is used to store config in context.
type configKey struct{}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "weld",
		Short: "weld - multi-dialect SQL query compiler",
		Long: `weld compiles table queries into parameterized SQL for PostgreSQL,
MySQL, SQL Server and SQLite.

Tables are described in a YAML schema file. Queries are given as flags and
either printed as SQL with their arguments (compile) or run against a
database (exec).`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			dir, err := os.Getwd()
			if err != nil {
				return err
			}
			cfg, err := config.Load(dir, cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.LogFormat, cfg.LogLevel, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			ctx := context.WithValue(cmd.Context(), configKey{}, cfg)
			ctx = logging.WithLogger(ctx, logger)
			cmd.SetContext(ctx)

			logger.Debug("config loaded",
				"file", cfg.File,
				"dialect", cfg.Dialect,
				"schema", cfg.SchemaPath(),
			)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: ./weld.yaml)")
	pf.String("dialect", "", "Target dialect (postgres|mysql|mssql|sqlite)")
	pf.String("db", "", "Database URL, e.g. postgres://localhost/shop")
	pf.String("schema", "", "Path to the YAML schema file")
	pf.String("log-format", "", "Log format (json|pretty|text)")
	pf.String("log-level", "", "Log level (debug|info|warn|error)")
	pf.Duration("slow-threshold", 0, "Log statements slower than this")

	_ = rootCmd.RegisterFlagCompletionFunc("dialect", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		names := make([]string, 0, 4)
		for _, d := range compile.All() {
			names = append(names, d.Name())
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("log-format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{logging.FormatJSON, logging.FormatPretty, logging.FormatText}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(NewCompileCommand())
	rootCmd.AddCommand(NewExecCommand())
	rootCmd.AddCommand(NewDialectsCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// GetConfig retrieves the config from the command context.
func GetConfig(ctx context.Context) *config.Config {
	if c, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return c
	}
	// Return default config if none in context
	cfg, err := config.Load(".", "", nil)
	if err != nil {
		return &config.Config{Dir: "."}
	}
	return cfg
}
