package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/nao1215/a11yscan/internal/config"
	"github.com/nao1215/a11yscan/internal/criteria"
	"github.com/nao1215/a11yscan/internal/database"
	"github.com/nao1215/a11yscan/internal/log"
	"github.com/nao1215/a11yscan/internal/model"
	"github.com/nao1215/a11yscan/internal/pipeline"
	"github.com/nao1215/a11yscan/internal/report"
	"github.com/spf13/cobra"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <tag> [file-or-url...]",
		Short: "Run an accessibility criteria on HTML documents",
		Long: `Scan runs a criteria of the RGAA reference on one or more HTML documents.

A target is a local file path or an http(s) URL. The document is parsed
with its embedded and linked stylesheets; a stylesheet served from another
origin is applied but its rules cannot be inspected, as in a browser.

Available criteria:
  10.*   every criteria of theme 10 (presentation of information)
  10.1   presentational tags and attributes
  10.5   text and background colours declared together

Examples:
  # Check colour declarations of a local page
  a11yscan scan 10.5 index.html

  # Run the whole theme on several pages, 8 at a time
  a11yscan scan 10.* -b 8 https://example.com/ https://example.com/about

  # Show the help of a criteria and its options
  a11yscan scan 10.5 --criteria-help

  # Write a Markdown report
  a11yscan scan 10.* --markdown -o report.md index.html

Configuration file (.a11yscan) example:
  sites:
    example.com:
      cookie: "session_id=abc123"
      headers:
        Authorization: "Bearer token"`,
		Args: cobra.MinimumNArgs(1),
		RunE: runScanCmd,
	}

	// Criteria options
	cmd.Flags().Bool("no-log", false,
		"Do not print the criteria output (aggregate criteria always print)")
	cmd.Flags().Bool("no-return", false,
		"Do not keep the criteria result in the report")
	cmd.Flags().Bool("criteria-help", false,
		"Print the help of the criteria and its options instead of running it")

	// Fetch flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout of each HTTP request")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent with HTTP requests")
	cmd.Flags().Int64("max-body-size", config.DefaultMaxBodySize,
		"Maximum size in bytes of a page or stylesheet")
	cmd.Flags().Int("fetch-concurrency", config.DefaultFetchConcurrency,
		"Number of stylesheets of a page fetched concurrently")

	// Batch scanning flags
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent scans")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .a11yscan in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().Bool("no-color", false,
		"Disable colours in the console output")

	// History flags
	cmd.Flags().Bool("no-save", false,
		"Do not save the scan reports in the history database")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory of the history database")
	_ = cmd.Flags().MarkHidden("db-dir") //nolint:errcheck // flag is defined above

	return cmd
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if cfg.CriteriaHelp {
		return runCriteriaHelp(cmd.OutOrStdout(), cfg)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if _, err := criteria.Default().Lookup(cfg.Tag); err != nil {
		return err
	}
	if err := cfg.Load(); err != nil {
		return err
	}

	logger := log.New(cmd.ErrOrStderr(), log.Options{Verbose: cfg.Verbose})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runScan(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg, logger)
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Tag = args[0]
	cfg.Targets = args[1:]
	cfg.Verbose = getVerboseFlag(cmd)

	flags := cmd.Flags()
	var err error

	if cfg.NoLog, err = flags.GetBool("no-log"); err != nil {
		return nil, err
	}
	cfg.NoLogSet = flags.Changed("no-log")
	if cfg.NoReturn, err = flags.GetBool("no-return"); err != nil {
		return nil, err
	}
	if cfg.CriteriaHelp, err = flags.GetBool("criteria-help"); err != nil {
		return nil, err
	}
	if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
		return nil, err
	}
	if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
		return nil, err
	}
	if cfg.MaxBodySize, err = flags.GetInt64("max-body-size"); err != nil {
		return nil, err
	}
	if cfg.FetchConcurrency, err = flags.GetInt("fetch-concurrency"); err != nil {
		return nil, err
	}
	if cfg.BatchSize, err = flags.GetInt("batch"); err != nil {
		return nil, err
	}
	if cfg.ConfigFilePath, err = flags.GetString("config"); err != nil {
		return nil, err
	}
	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return nil, err
	}
	if cfg.NoColor, err = flags.GetBool("no-color"); err != nil {
		return nil, err
	}
	noSave, err := flags.GetBool("no-save")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noSave
	if cfg.DBDir, err = flags.GetString("db-dir"); err != nil {
		return nil, err
	}

	return cfg, nil
}

// runCriteriaHelp prints the help of the requested criteria.
func runCriteriaHelp(out io.Writer, cfg *config.Config) error {
	reporter := report.NewConsoleReporter(out, report.WithNoColor(cfg.NoColor))
	_, err := criteria.Default().Scan(cfg.Tag, criteria.Env{Reporter: reporter}, pipeline.ExecuteOptionsFrom(cfg))
	return err
}

// runScan scans every target and writes the reports.
func runScan(ctx context.Context, stdout, stderr io.Writer, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting scan",
		"tag", cfg.Tag,
		"targets", len(cfg.Targets),
		"batchSize", cfg.BatchSize,
		"saveToDB", cfg.SaveToDB,
	)

	var db *database.ReportDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Debug("database opened", "path", db.Path())
	}

	writer, closeWriter, err := newReportWriter(cfg, stdout)
	if err != nil {
		return err
	}
	defer closeWriter()

	// Machine-readable reports on stdout keep the console output off it.
	console := stdout
	if cfg.ReportFile == "" && (cfg.JSONReport || cfg.MarkdownReport) {
		console = stderr
	}

	bp := pipeline.NewBatchProcessor(
		func(target string) *pipeline.Pipeline {
			return pipeline.NewScanPipeline(cfg, target, logger)
		},
		cfg.Tag,
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	var (
		mu     sync.Mutex
		failed int
		total  = len(cfg.Targets)
		start  = time.Now()
	)
	err = bp.ProcessBatchWithCallback(ctx, cfg.Targets, func(st *pipeline.State, index int) {
		mu.Lock()
		defer mu.Unlock()

		if total > 1 {
			fmt.Fprintf(console, "[%d/%d] %s\n", index+1, total, st.Report.Target)
		}
		_, _ = console.Write(st.Console.Bytes()) //nolint:errcheck // console output is best effort

		if st.Report.Error != "" {
			failed++
			fmt.Fprintf(stderr, "Scan error for %s: %s\n", st.Report.Target, st.Report.Error)
		}
		if writer != nil {
			if _, err := writer.Write(st.Report); err != nil {
				logger.Error("report failed", "target", st.Report.Target, "error", err)
			}
		}
		if err := saveScanReport(ctx, db, st.Report, logger); err != nil {
			logger.Error("failed to save scan report", "target", st.Report.Target, "error", err)
		}
	})
	if err != nil {
		return err
	}

	if total > 1 {
		fmt.Fprintf(console, "\nScanned %d targets in %s\n", total, time.Since(start).Round(time.Millisecond))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d targets could not be scanned", failed, total)
	}
	return nil
}

// newReportWriter returns the writer of the requested report format, or
// nil when the console output is the only output. The returned function
// closes the report file.
func newReportWriter(cfg *config.Config, stdout io.Writer) (report.Writer, func(), error) {
	output := stdout
	closeFn := func() {}

	if cfg.ReportFile != "" {
		if dir := filepath.Dir(cfg.ReportFile); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
			}
		}
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create output file: %w", err)
		}
		output = f
		closeFn = func() { _ = f.Close() }
	}

	switch {
	case cfg.JSONReport:
		opts := []report.JSONWriterOption{report.WithVersion(getVersion())}
		if len(cfg.Targets) == 1 {
			opts = append(opts, report.WithPrettyPrint())
		}
		return report.NewJSONWriter(output, opts...), closeFn, nil
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(output), closeFn, nil
	case cfg.ReportFile != "":
		return report.NewTextWriter(output, report.WithVerbose(cfg.Verbose)), closeFn, nil
	default:
		return nil, closeFn, nil
	}
}

// saveScanReport saves the scan report to the database. It is a no-op
// when db is nil.
func saveScanReport(ctx context.Context, db *database.ReportDB, r *model.ScanReport, logger *slog.Logger) error {
	if db == nil {
		return nil
	}
	// A cancelled scan is still recorded.
	if err := db.SaveScanReport(context.WithoutCancel(ctx), r); err != nil {
		return fmt.Errorf("failed to save scan report: %w", err)
	}
	logger.Debug("scan report saved", "target", r.Target, "scan_id", r.ID)
	return nil
}

