package criteria

import (
	"strings"

	"github.com/nao1215/a11yscan/internal/model"
)

// Aggregate runs a fixed list of criteria sharing a theme and reports their
// results as one group. It is log-only: Run always returns nil.
type Aggregate struct {
	tag      string
	title    string
	link     string
	children []Criteria
}

// NewAggregate creates an aggregate. Its tag must end with ".*" and every
// child tag must share the prefix before it.
func NewAggregate(tag, title, link string, children ...Criteria) *Aggregate {
	return &Aggregate{
		tag:      tag,
		title:    title,
		link:     link,
		children: append([]Criteria(nil), children...),
	}
}

// NewTheme10 returns "10.*", the aggregate of the implemented criteria of
// RGAA theme 10.
func NewTheme10() *Aggregate {
	return NewAggregate(
		"10.*",
		"Présentation de l’information",
		"https://accessibilite.numerique.gouv.fr/methode/criteres-et-tests/#10",
		NewPresentationMarkup(),
		NewStyleConsistency(),
	)
}

// Tag implements Criteria.
func (a *Aggregate) Tag() string {
	return a.tag
}

// Title implements Criteria.
func (a *Aggregate) Title() string {
	return a.title
}

// Theme returns the tag prefix shared by the children, e.g. "10".
func (a *Aggregate) Theme() string {
	return strings.TrimSuffix(a.tag, ".*")
}

// Children returns the children in execution order.
func (a *Aggregate) Children() []Criteria {
	return append([]Criteria(nil), a.children...)
}

// Describe implements Criteria.
func (a *Aggregate) Describe() model.Information {
	return model.Information{
		Criteria: a.title,
		Links:    []string{a.link},
	}
}

// Options implements Criteria.
func (a *Aggregate) Options() []model.OptionInfo {
	return CommonOptions()
}

// Run implements Criteria. Logging cannot be disabled for an aggregate, and
// children always run with logging disabled and a return value, whatever
// opts says. An explicit NoLog=false is answered with a notice.
func (a *Aggregate) Run(env Env, opts ExecuteOptions) *model.Result {
	rep := env.reporter()
	if opts.NoLog != nil && !*opts.NoLog {
		rep.Notice(a.tag, "Log cannot be disabled for aggregate criterias")
	}
	rep.Progress(a.tag, "Running every criteria of "+a.title+"... this may take a while")

	rep.Group(a.Theme(), a.title, a.RunChildren(env))
	return nil
}

// RunChildren runs every child with {NoLog: true, NoReturn: false} and
// returns their results in order.
func (a *Aggregate) RunChildren(env Env) []model.ChildResult {
	childOpts := ExecuteOptions{NoLog: Bool(true), NoReturn: false}
	results := make([]model.ChildResult, 0, len(a.children))
	for _, child := range a.children {
		results = append(results, model.ChildResult{
			Tag:    child.Tag(),
			Title:  child.Title(),
			Result: child.Run(env, childOpts),
		})
	}
	return results
}
