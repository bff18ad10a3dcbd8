package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/nao1215/a11yscan/internal/config"
	"github.com/nao1215/a11yscan/internal/database"
	"github.com/nao1215/a11yscan/internal/model"
	"github.com/nao1215/a11yscan/internal/report"
	"github.com/spf13/cobra"
)

// errNoHistory is returned when the database holds no matching report.
var errNoHistory = errors.New("no scan history")

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [file-or-url]",
		Short: "Show saved scan reports",
		Long: `Show the scan reports saved by previous scans.

Without argument, history lists the scanned targets. With a target it
lists the scans of that target. --id or --latest print a saved report.

Examples:
  a11yscan history
  a11yscan history https://example.com/
  a11yscan history https://example.com/ --latest --tag 10.5 --markdown
  a11yscan history --id 12 --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().Int64("id", 0, "Print the saved report with this identifier")
	cmd.Flags().Bool("latest", false, "Print the latest saved report of the target")
	cmd.Flags().String("tag", "", "Criteria tag used with --latest (default: any tag)")
	cmd.Flags().BoolP("json", "j", false, "Print the report as JSON")
	cmd.Flags().BoolP("markdown", "m", false, "Print the report as Markdown")
	cmd.Flags().String("db-dir", config.XDGDataDir(), "Directory of the history database")
	_ = cmd.Flags().MarkHidden("db-dir") //nolint:errcheck // flag is defined above
	cmd.MarkFlagsMutuallyExclusive("json", "markdown")
	cmd.MarkFlagsMutuallyExclusive("id", "latest")

	return cmd
}

// historyOptions are the flags of the history command.
type historyOptions struct {
	target   string
	id       int64
	latest   bool
	tag      string
	json     bool
	markdown bool
	dbDir    string
	verbose  bool
}

func runHistoryCmd(cmd *cobra.Command, args []string) error {
	opts := historyOptions{verbose: getVerboseFlag(cmd)}
	if len(args) == 1 {
		opts.target = args[0]
	}

	flags := cmd.Flags()
	var err error
	if opts.id, err = flags.GetInt64("id"); err != nil {
		return err
	}
	if opts.latest, err = flags.GetBool("latest"); err != nil {
		return err
	}
	if opts.tag, err = flags.GetString("tag"); err != nil {
		return err
	}
	if opts.json, err = flags.GetBool("json"); err != nil {
		return err
	}
	if opts.markdown, err = flags.GetBool("markdown"); err != nil {
		return err
	}
	if opts.dbDir, err = flags.GetString("db-dir"); err != nil {
		return err
	}
	if opts.latest && opts.target == "" {
		return errors.New("--latest needs a target")
	}

	db, err := database.Open(opts.dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	switch {
	case opts.id != 0:
		r, err := db.GetScanReportByID(ctx, opts.id)
		if err != nil {
			return err
		}
		if r == nil {
			return fmt.Errorf("%w: no report with id %d", errNoHistory, opts.id)
		}
		return printSavedReport(out, r, opts)
	case opts.latest:
		r, err := db.GetLatestScanReport(ctx, opts.target, opts.tag)
		if err != nil {
			return err
		}
		if r == nil {
			return fmt.Errorf("%w: %s was never scanned", errNoHistory, opts.target)
		}
		return printSavedReport(out, r, opts)
	case opts.target != "":
		history, err := db.GetScanHistoryWithMetadata(ctx, opts.target)
		if err != nil {
			return err
		}
		if len(history) == 0 {
			return fmt.Errorf("%w: %s was never scanned", errNoHistory, opts.target)
		}
		printScanHistory(out, history)
		return nil
	default:
		targets, err := db.ListScannedTargets(ctx)
		if err != nil {
			return err
		}
		if len(targets) == 0 {
			fmt.Fprintln(out, "No scan saved yet.")
			return nil
		}
		printTargets(out, targets)
		return nil
	}
}

// printSavedReport writes r in the requested format.
func printSavedReport(out io.Writer, r *model.ScanReport, opts historyOptions) error {
	var w report.Writer
	switch {
	case opts.json:
		w = report.NewJSONWriter(out, report.WithPrettyPrint(), report.WithVersion(getVersion()))
	case opts.markdown:
		w = report.NewMarkdownWriter(out)
	default:
		w = report.NewTextWriter(out, report.WithVerbose(opts.verbose))
	}
	if _, err := w.Write(r); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func printTargets(out io.Writer, targets []database.TargetSummary) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Target", "Scans", "Last scan"})
	for _, ts := range targets {
		t.AppendRow(table.Row{ts.Target, ts.Scans, humanize.Time(ts.LastScan)})
	}
	t.Render()
}

func printScanHistory(out io.Writer, history []database.ScanReportMetadata) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Tag", "Scanned", "OK", "Warning", "KO", "Error"})
	for _, m := range history {
		errText := m.Error
		if errText == "" {
			errText = "-"
		}
		t.AppendRow(table.Row{
			m.ID, m.Tag, humanize.Time(m.Timestamp),
			m.Summary.OK, m.Summary.Warning, m.Summary.KO, errText,
		})
	}
	t.Render()
}
