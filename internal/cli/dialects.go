package cli

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/weldsql/weld/compile"
)

// NewDialectsCommand creates the dialects command.
func NewDialectsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dialects",
		Short: "List supported SQL dialects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"dialect", "placeholder", "quoting", "max params", "row-value in"})
			for _, d := range compile.All() {
				t.AppendRow(table.Row{
					d.Name(),
					d.Placeholder(1) + ", " + d.Placeholder(2),
					d.QuoteTable([]string{"schema", "table"}),
					d.MaxParams(),
					d.SupportsRowValueIn(),
				})
			}
			t.Render()
			return nil
		},
	}
}
