package report

import (
	"sync"

	"github.com/nao1215/a11yscan/internal/model"
)

// Recorder is a criteria.Reporter that keeps what it receives, so that the
// results an aggregate only reports can be stored with the scan.
type Recorder struct {
	mu       sync.Mutex
	helps    []model.Help
	notices  []string
	results  []model.ChildResult
	children []model.ChildResult
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Help implements criteria.Reporter.
func (r *Recorder) Help(h model.Help) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.helps = append(r.helps, h)
}

// Progress implements criteria.Reporter. Progress is not recorded.
func (r *Recorder) Progress(string, string) {}

// Notice implements criteria.Reporter.
func (r *Recorder) Notice(_, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, message)
}

// Result implements criteria.Reporter.
func (r *Recorder) Result(tag, title string, result *model.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, model.ChildResult{Tag: tag, Title: title, Result: result})
}

// Group implements criteria.Reporter.
func (r *Recorder) Group(_, _ string, children []model.ChildResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.children = append(r.children, children...)
}

// Helps returns the recorded helps.
func (r *Recorder) Helps() []model.Help {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Help(nil), r.helps...)
}

// Notices returns the recorded notices.
func (r *Recorder) Notices() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.notices...)
}

// Results returns the results reported by leaf criteria.
func (r *Recorder) Results() []model.ChildResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.ChildResult(nil), r.results...)
}

// Children returns the results reported in groups, in order.
func (r *Recorder) Children() []model.ChildResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.ChildResult(nil), r.children...)
}

// Reporter is the criteria.Reporter method set. It is declared here so that
// MultiReporter does not depend on the criteria package.
type Reporter interface {
	Help(h model.Help)
	Progress(tag, message string)
	Notice(tag, message string)
	Result(tag, title string, result *model.Result)
	Group(tag, title string, children []model.ChildResult)
}

// MultiReporter forwards every call to several reporters, in order.
type MultiReporter struct {
	reporters []Reporter
}

// NewMultiReporter creates a MultiReporter. Nil reporters are skipped.
func NewMultiReporter(reporters ...Reporter) *MultiReporter {
	m := &MultiReporter{}
	for _, r := range reporters {
		if r != nil {
			m.reporters = append(m.reporters, r)
		}
	}
	return m
}

// Help implements criteria.Reporter.
func (m *MultiReporter) Help(h model.Help) {
	for _, r := range m.reporters {
		r.Help(h)
	}
}

// Progress implements criteria.Reporter.
func (m *MultiReporter) Progress(tag, message string) {
	for _, r := range m.reporters {
		r.Progress(tag, message)
	}
}

// Notice implements criteria.Reporter.
func (m *MultiReporter) Notice(tag, message string) {
	for _, r := range m.reporters {
		r.Notice(tag, message)
	}
}

// Result implements criteria.Reporter.
func (m *MultiReporter) Result(tag, title string, result *model.Result) {
	for _, r := range m.reporters {
		r.Result(tag, title, result)
	}
}

// Group implements criteria.Reporter.
func (m *MultiReporter) Group(tag, title string, children []model.ChildResult) {
	for _, r := range m.reporters {
		r.Group(tag, title, children)
	}
}
