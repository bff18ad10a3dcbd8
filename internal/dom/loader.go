package dom

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nao1215/a11yscan/internal/fetch"
	"github.com/nao1215/a11yscan/internal/log"
	"golang.org/x/sync/errgroup"
)

// ErrNotHTML is returned when a target is not an HTML document.
var ErrNotHTML = errors.New("target is not an HTML document")

// DefaultFetchConcurrency is the number of stylesheets fetched at once.
const DefaultFetchConcurrency = 4

// Fetcher retrieves a resource by location. *fetch.Client implements it.
type Fetcher interface {
	Fetch(ctx context.Context, location string) (*fetch.Resource, error)
}

// Loader builds document snapshots: it fetches the page, parses it, and
// fetches the stylesheets it links to.
type Loader struct {
	fetcher     Fetcher
	concurrency int
	logger      *slog.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithConcurrency sets how many stylesheets are fetched at once.
func WithConcurrency(n int) LoaderOption {
	return func(l *Loader) {
		if n > 0 {
			l.concurrency = n
		}
	}
}

// WithLoaderLogger sets the logger.
func WithLoaderLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLoader creates a Loader reading resources through f.
func NewLoader(f Fetcher, opts ...LoaderOption) *Loader {
	l := &Loader{
		fetcher:     f,
		concurrency: DefaultFetchConcurrency,
		logger:      log.Discard(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load fetches the document at location and its linked stylesheets.
// A stylesheet that cannot be fetched or parsed stays attached to the
// document but inaccessible. Only a failure to load the document itself is
// returned as an error.
func (l *Loader) Load(ctx context.Context, location string) (*Document, error) {
	res, err := l.fetcher.Fetch(ctx, location)
	if err != nil {
		return nil, err
	}
	if !fetch.IsHTML(res.ContentType) {
		return nil, fmt.Errorf("%w: %s is %s", ErrNotHTML, location, res.ContentType)
	}

	doc, err := Parse(bytes.NewReader(res.Body), res.URL)
	if err != nil {
		return nil, err
	}
	if err := l.loadStyleSheets(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// loadStyleSheets fetches the linked sheets of doc concurrently. Each
// goroutine only writes its own sheet, so document order is kept.
func (l *Loader) loadStyleSheets(ctx context.Context, doc *Document) error {
	var g errgroup.Group
	g.SetLimit(l.concurrency)

	for _, sheet := range doc.sheets {
		if sheet.Href == "" {
			continue
		}
		g.Go(func() error {
			l.loadStyleSheet(ctx, doc, sheet)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func (l *Loader) loadStyleSheet(ctx context.Context, doc *Document, sheet *StyleSheet) {
	res, err := l.fetcher.Fetch(ctx, sheet.Href)
	if err != nil {
		sheet.loadErr = err
		l.logger.Debug("stylesheet not loaded", "url", sheet.Href, "error", err)
		return
	}
	sheet.load(string(res.Body))
	sheet.CrossOrigin = !fetch.SameOrigin(doc.url, res.URL)
	if sheet.CrossOrigin {
		l.logger.Debug("cross-origin stylesheet", "url", sheet.Href)
	}
}
