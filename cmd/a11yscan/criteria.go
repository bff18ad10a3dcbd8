package main

import (
	"github.com/nao1215/a11yscan/internal/criteria"
	"github.com/nao1215/a11yscan/internal/report"
	"github.com/spf13/cobra"
)

// NewCriteriaCmd creates the criteria command.
func NewCriteriaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "criteria",
		Short: "List the available criteria",
		Long: `List the criteria tags a scan accepts and the options every criteria
understands. Use "a11yscan scan <tag> --criteria-help" for the help of
one criteria.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			noColor, err := cmd.Flags().GetBool("no-color")
			if err != nil {
				return err
			}
			reporter := report.NewConsoleReporter(cmd.OutOrStdout(), report.WithNoColor(noColor))
			reporter.Usage(getVersion(), criteria.Default().Tags())
			return nil
		},
	}
	cmd.Flags().Bool("no-color", false, "Disable colours in the output")
	return cmd
}
