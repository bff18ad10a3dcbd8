package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nao1215/a11yscan/internal/config"
	"github.com/nao1215/a11yscan/internal/criteria"
	"github.com/nao1215/a11yscan/internal/dom"
	"github.com/nao1215/a11yscan/internal/fetch"
	"github.com/nao1215/a11yscan/internal/log"
	"github.com/nao1215/a11yscan/internal/report"
)

// DocumentLoader builds the snapshot of a target. *dom.Loader implements it.
type DocumentLoader interface {
	Load(ctx context.Context, location string) (*dom.Document, error)
}

// LoadStep loads the target document and its stylesheets.
type LoadStep struct {
	loader DocumentLoader
	logger *slog.Logger
}

// LoadStepOption configures a LoadStep.
type LoadStepOption func(*LoadStep)

// WithLoadLogger sets a custom logger for the load step.
func WithLoadLogger(logger *slog.Logger) LoadStepOption {
	return func(s *LoadStep) {
		s.logger = logger
	}
}

// NewLoadStep creates a load step reading documents with loader.
func NewLoadStep(loader DocumentLoader, opts ...LoadStepOption) *LoadStep {
	s := &LoadStep{loader: loader, logger: log.Discard()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *LoadStep) Name() string {
	return "load"
}

// Do loads the document and records its stylesheets in the report.
func (s *LoadStep) Do(ctx context.Context, st *State) error {
	doc, err := s.loader.Load(ctx, st.Report.Target)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", st.Report.Target, err)
	}
	st.Document = doc

	sheets := doc.StyleSheets()
	st.Report.StyleSheets = len(sheets)
	for _, sheet := range sheets {
		if !sheet.Accessible() {
			st.Report.InaccessibleStyleSheets = append(st.Report.InaccessibleStyleSheets, sheet.Name())
		}
	}
	s.logger.Debug("document loaded",
		"target", st.Report.Target,
		"elements", len(doc.Elements()),
		"stylesheets", len(sheets),
		"inaccessible", len(st.Report.InaccessibleStyleSheets),
	)
	return nil
}

// ScanStep runs a criteria over the loaded document.
type ScanStep struct {
	registry *criteria.Registry
	opts     criteria.ExecuteOptions
	noColor  bool
	logger   *slog.Logger
}

// ScanStepOption configures a ScanStep.
type ScanStepOption func(*ScanStep)

// WithExecuteOptions sets the options passed to the criteria.
func WithExecuteOptions(opts criteria.ExecuteOptions) ScanStepOption {
	return func(s *ScanStep) {
		s.opts = opts
	}
}

// WithNoColor disables colours in the console output of the criteria.
func WithNoColor(noColor bool) ScanStepOption {
	return func(s *ScanStep) {
		s.noColor = noColor
	}
}

// WithScanLogger sets a custom logger for the scan step.
func WithScanLogger(logger *slog.Logger) ScanStepOption {
	return func(s *ScanStep) {
		s.logger = logger
	}
}

// NewScanStep creates a scan step dispatching through registry.
func NewScanStep(registry *criteria.Registry, opts ...ScanStepOption) *ScanStep {
	s := &ScanStep{registry: registry, logger: log.Discard()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *ScanStep) Name() string {
	return "scan"
}

// Do runs the criteria of the report tag. The console output goes to the
// state buffer, and what aggregates report in groups is kept in the report.
func (s *ScanStep) Do(_ context.Context, st *State) error {
	c, err := s.registry.Lookup(st.Report.Tag)
	if err != nil {
		return err
	}
	st.Report.Title = c.Title()
	if st.Document == nil {
		return criteria.ErrNoDocument
	}

	rec := report.NewRecorder()
	env := criteria.Env{
		Document: st.Document,
		Reporter: report.NewMultiReporter(
			report.NewConsoleReporter(&st.Console, report.WithNoColor(s.noColor)),
			rec,
		),
		Logger: s.logger.With("target", st.Report.Target),
	}

	result, err := criteria.Invoke(c, env, s.opts)
	if err != nil {
		return err
	}
	st.Report.Result = result
	st.Report.Children = rec.Children()
	return nil
}

// NewScanPipeline creates the pipeline scanning target with cfg: a fetch
// client carrying the site settings of the target host, the loader, and
// the criteria run.
func NewScanPipeline(cfg *config.Config, target string, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = log.Discard()
	}
	site := cfg.SiteFor(target)
	client := fetch.NewClient(
		fetch.WithTimeout(cfg.Timeout),
		fetch.WithUserAgent(cfg.UserAgent),
		fetch.WithMaxBodySize(cfg.MaxBodySize),
		fetch.WithSite(config.HostOf(target), site.Cookie, site.Headers),
		fetch.WithLogger(logger),
	)
	loader := dom.NewLoader(client,
		dom.WithConcurrency(cfg.FetchConcurrency),
		dom.WithLoaderLogger(logger),
	)

	p := New(WithLogger(logger))
	p.AddSteps(
		NewLoadStep(loader, WithLoadLogger(logger)),
		NewScanStep(criteria.Default(),
			WithExecuteOptions(ExecuteOptionsFrom(cfg)),
			WithNoColor(cfg.NoColor),
			WithScanLogger(logger),
		),
	)
	return p
}

// ExecuteOptionsFrom converts the criteria flags of cfg. NoLog is only set
// when it was given explicitly.
func ExecuteOptionsFrom(cfg *config.Config) criteria.ExecuteOptions {
	opts := criteria.ExecuteOptions{
		NoReturn: cfg.NoReturn,
		Help:     cfg.CriteriaHelp,
	}
	if cfg.NoLogSet {
		opts.NoLog = criteria.Bool(cfg.NoLog)
	}
	return opts
}
