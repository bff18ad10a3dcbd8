package pipeline

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/a11yscan/internal/dom"
	"github.com/nao1215/a11yscan/internal/log"
	"github.com/nao1215/a11yscan/internal/model"
)

// State is what the steps of one target share. A State belongs to a single
// goroutine.
type State struct {
	// Report is the scan report being filled.
	Report *model.ScanReport

	// Document is the snapshot built by the load step.
	Document *dom.Document

	// Console holds the criteria output for this target, so that the
	// output of concurrent scans never interleaves.
	Console bytes.Buffer
}

// NewState creates the state of a scan of target with tag.
func NewState(target, tag string) *State {
	return &State{Report: model.NewScanReport(target, tag)}
}

// Step is one stage of a scan.
type Step interface {
	// Do executes the step. An error means the target cannot be scanned
	// any further.
	Do(ctx context.Context, st *State) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline executes steps in order.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger

	// continueOnError keeps executing steps after one fails.
	continueOnError bool
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError keeps executing steps after one fails. The error is
// still recorded in the report.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates a new Pipeline with the given options.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = log.Discard()
	}
	return p
}

// AddStep appends a step to the pipeline.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs the steps in sequence and records the duration of the scan
// in the report. Cancellation is checked between steps.
//
// The first error is recorded in the report. It is returned unless the
// pipeline continues on error.
func (p *Pipeline) Execute(ctx context.Context, st *State) error {
	start := time.Now()
	defer func() {
		st.Report.Duration = time.Since(start)
	}()

	logger := p.logger.With("scan_id", st.Report.ID, "target", st.Report.Target)
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			logger.Warn("pipeline cancelled", "step", step.Name(), "reason", err)
			st.Report.Error = err.Error()
			return err
		}

		logger.Debug("executing step", "step", step.Name())
		if err := step.Do(ctx, st); err != nil {
			logger.Error("step failed", "step", step.Name(), "error", err)
			if st.Report.Error == "" {
				st.Report.Error = err.Error()
			}
			if !p.continueOnError {
				return err
			}
			continue
		}
		logger.Debug("step completed", "step", step.Name())
	}
	return nil
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
