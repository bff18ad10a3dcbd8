package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/a11yscan/internal/log"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of targets scanned at once when no
// concurrency is configured.
const DefaultConcurrency = 4

// Factory creates the pipeline scanning one target.
type Factory func(target string) *Pipeline

// BatchProcessor scans several targets concurrently.
// Every target gets a fresh pipeline from the factory and its own State.
type BatchProcessor struct {
	// factory creates a new pipeline for each target.
	factory Factory

	// tag is the criteria tag run on every target.
	tag string

	// concurrency is the maximum number of concurrent scans.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent scans.
// Non-positive values keep the default.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a BatchProcessor running tag on every target.
func NewBatchProcessor(factory Factory, tag string, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		factory:     factory,
		tag:         tag,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.logger == nil {
		bp.logger = log.Discard()
	}
	return bp
}

// ProcessBatch scans every target and returns their states in target order.
// A target that fails does not stop the others: its error is recorded in
// its report. The error return is set only when ctx is cancelled, and the
// states of the targets not scanned then are nil.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, targets []string) ([]*State, error) {
	states := make([]*State, len(targets))
	err := bp.ProcessBatchWithCallback(ctx, targets, func(st *State, i int) {
		// Each goroutine writes its own index.
		states[i] = st
	})
	return states, err
}

// ProcessBatchWithCallback scans every target and calls callback for each
// completed scan, from the goroutine that ran it. The callback must be safe
// for concurrent use.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	targets []string,
	callback func(st *State, index int),
) error {
	bp.logger.Info("starting batch processing",
		"total_targets", len(targets),
		"concurrency", bp.concurrency,
	)
	startTime := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, target := range targets {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			st := NewState(target, bp.tag)
			if err := bp.factory(target).Execute(ctx, st); err != nil {
				bp.logger.Warn("scan failed", "target", target, "error", err)
			} else {
				bp.logger.Info("scan completed", "target", target)
			}
			callback(st, i)
			return nil
		})
	}

	err := g.Wait()
	bp.logger.Info("batch processing complete",
		"total_targets", len(targets),
		"elapsed", time.Since(startTime),
	)
	return err
}
