package criteria

import (
	"testing"

	"github.com/nao1215/a11yscan/internal/dom"
	"github.com/nao1215/a11yscan/internal/model"
	"golang.org/x/net/html"
)

// recorder is a Reporter remembering every call.
type recorder struct {
	helps    []model.Help
	progress []string
	notices  []string
	results  []model.ChildResult
	groups   [][]model.ChildResult
}

func (r *recorder) Help(h model.Help) {
	r.helps = append(r.helps, h)
}

func (r *recorder) Progress(_, msg string) {
	r.progress = append(r.progress, msg)
}

func (r *recorder) Notice(_, msg string) {
	r.notices = append(r.notices, msg)
}

func (r *recorder) Result(tag, title string, res *model.Result) {
	r.results = append(r.results, model.ChildResult{Tag: tag, Title: title, Result: res})
}

func (r *recorder) Group(_, _ string, children []model.ChildResult) {
	r.groups = append(r.groups, children)
}

// fixedComputed is a Document whose computed styles are given by the test.
type fixedComputed struct {
	*dom.Document
	style model.ColorPair
}

func (f fixedComputed) ComputedStyle(*html.Node) model.ColorPair {
	return f.style
}

// mustParse parses an HTML page.
func mustParse(t *testing.T, page string) *dom.Document {
	t.Helper()
	doc, err := dom.ParseString(page)
	if err != nil {
		t.Fatalf("failed to parse page: %v", err)
	}
	return doc
}
