package criteria

import (
	"errors"
	"log/slog"

	"github.com/nao1215/a11yscan/internal/dom"
	"github.com/nao1215/a11yscan/internal/log"
	"github.com/nao1215/a11yscan/internal/model"
	"golang.org/x/net/html"
)

// ErrNoDocument is returned when a criteria is run without a document.
var ErrNoDocument = errors.New("no document to inspect")

// Criteria is an accessibility check identified by a tag.
// Implementations are immutable and safe to share between scans.
type Criteria interface {
	// Tag returns the unique identifier, e.g. "10.5".
	Tag() string

	// Title returns the human readable statement of the criteria.
	Title() string

	// Describe returns the static information shown by help.
	// It never reads a document.
	Describe() model.Information

	// Options documents the execute options the criteria accepts.
	Options() []model.OptionInfo

	// Run inspects env.Document. It reports a summary unless opts
	// disables logging, and returns nil when opts disables the return value.
	Run(env Env, opts ExecuteOptions) *model.Result
}

// Document is the read-only snapshot a criteria inspects.
// *dom.Document implements it.
type Document interface {
	// Elements returns every element in depth-first pre-order.
	Elements() []*html.Node

	// StyleSheets returns the attached stylesheets in document order.
	StyleSheets() []*dom.StyleSheet

	// InlineStyle returns the declarations of the style attribute of n.
	InlineStyle(n *html.Node) dom.Declarations

	// ComputedStyle returns the final colours of n.
	ComputedStyle(n *html.Node) model.ColorPair
}

// Reporter receives what criteria show to a person.
type Reporter interface {
	// Help shows the self-description of a criteria.
	Help(h model.Help)

	// Progress tells that a long operation started.
	Progress(tag, message string)

	// Notice shows an informational message about the run itself.
	Notice(tag, message string)

	// Result shows the outcome of a leaf criteria.
	Result(tag, title string, result *model.Result)

	// Group shows the outcomes of the children of an aggregate criteria.
	Group(tag, title string, children []model.ChildResult)
}

// Env is what a criteria run can use.
type Env struct {
	// Document is the snapshot to inspect.
	Document Document

	// Reporter receives the human-facing output. Nil discards it.
	Reporter Reporter

	// Logger receives diagnostics. Nil discards them.
	Logger *slog.Logger
}

// reporter returns the reporter of the env, or one discarding everything.
func (e Env) reporter() Reporter {
	if e.Reporter == nil {
		return discard{}
	}
	return e.Reporter
}

func (e Env) logger() *slog.Logger {
	if e.Logger == nil {
		return log.Discard()
	}
	return e.Logger
}

// ExecuteOptions control a criteria invocation.
type ExecuteOptions struct {
	// NoLog suppresses the report of the run. Nil means unset, which
	// behaves as false; aggregates tell an explicit false apart.
	NoLog *bool

	// NoReturn makes the run return nil instead of its result.
	NoReturn bool

	// Help shows the criteria help instead of running it.
	Help bool
}

// Bool returns a pointer to v, for ExecuteOptions.NoLog.
func Bool(v bool) *bool {
	return &v
}

// logEnabled reports whether the run should report.
func (o ExecuteOptions) logEnabled() bool {
	return o.NoLog == nil || !*o.NoLog
}

// commonOptions are accepted by every criteria.
var commonOptions = []model.OptionInfo{
	{Name: "help", Type: "boolean", Optional: true, Description: "Show criteria help"},
	{Name: "noLog", Type: "boolean", Optional: true, Description: "Avoid logging the criteria results (default value: false)"},
	{Name: "noReturn", Type: "boolean", Optional: true, Description: "Avoid returning the criteria results, returns null instead (default value: false)"},
}

// CommonOptions returns the option schema shared by every criteria.
func CommonOptions() []model.OptionInfo {
	return append([]model.OptionInfo(nil), commonOptions...)
}

// HelpFor builds the help of c.
func HelpFor(c Criteria) model.Help {
	return model.Help{
		Tag:         c.Tag(),
		Title:       c.Title(),
		Information: c.Describe(),
		Options:     c.Options(),
	}
}

// Invoke runs c with opts. When help is requested it reports the help of c
// and returns nil without reading the document.
func Invoke(c Criteria, env Env, opts ExecuteOptions) (*model.Result, error) {
	if opts.Help {
		env.reporter().Help(HelpFor(c))
		return nil, nil
	}
	if env.Document == nil {
		return nil, ErrNoDocument
	}
	return c.Run(env, opts), nil
}

// discard is a Reporter dropping everything.
type discard struct{}

func (discard) Help(model.Help)                           {}
func (discard) Progress(string, string)                   {}
func (discard) Notice(string, string)                     {}
func (discard) Result(string, string, *model.Result)      {}
func (discard) Group(string, string, []model.ChildResult) {}
