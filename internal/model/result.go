package model

import (
	"sort"

	"golang.org/x/net/html"
)

// Result is the outcome of one criteria invocation.
// A nil *Result is the empty result returned when the caller asked for no
// return value, for help, or by aggregate criteria.
//
// Design decision: evidence fields are concrete and optional rather than an
// interface, so that reports survive a JSON round trip through the database
// without a type registry.
type Result struct {
	// Success is ok when no evidence was collected, warning otherwise.
	Success Status `json:"success"`

	// Anomalies is the evidence of the style consistency criteria (10.5).
	Anomalies []Anomaly `json:"anomalies,omitempty"`

	// Forbidden is the evidence of the presentation markup criteria (10.1).
	Forbidden *ForbiddenElements `json:"forbidden,omitempty"`
}

// NewAnomalyResult builds the result of a style consistency run.
func NewAnomalyResult(anomalies []Anomaly) *Result {
	r := &Result{Success: statusFromEvidence(len(anomalies))}
	if len(anomalies) > 0 {
		r.Anomalies = anomalies
	}
	return r
}

// NewForbiddenResult builds the result of a presentation markup run.
func NewForbiddenResult(forbidden ForbiddenElements) *Result {
	r := &Result{Success: statusFromEvidence(forbidden.Count())}
	if forbidden.Count() > 0 {
		r.Forbidden = &forbidden
	}
	return r
}

// EvidenceCount returns the number of evidence items carried by the result.
func (r *Result) EvidenceCount() int {
	if r == nil {
		return 0
	}
	n := len(r.Anomalies)
	if r.Forbidden != nil {
		n += r.Forbidden.Count()
	}
	return n
}

// OK reports whether the result is present and successful.
func (r *Result) OK() bool {
	return r != nil && r.Success == StatusOK
}

// ElementRef identifies an element of the scanned document.
// Node is a non-owning reference: the document owns the element, and the
// reference is only meaningful while that document snapshot is alive.
type ElementRef struct {
	// Node is the element in the parsed document. It is not serialized.
	Node *html.Node `json:"-"`

	// Tag is the lowercase element name.
	Tag string `json:"tag"`

	// Path is a CSS path locating the element, e.g. "html > body > p:nth-child(2)".
	Path string `json:"path"`
}

// ForbiddenElements groups elements using presentational markup.
type ForbiddenElements struct {
	// Tags maps a presentational tag name to the elements using it.
	Tags map[string][]ElementRef `json:"tags,omitempty"`

	// Attributes maps a presentational attribute to the elements carrying it.
	Attributes map[string][]ElementRef `json:"attributes,omitempty"`
}

// Count returns the total number of offending elements, counting an element
// once per tag or attribute it was reported for.
func (f ForbiddenElements) Count() int {
	n := 0
	for _, refs := range f.Tags {
		n += len(refs)
	}
	for _, refs := range f.Attributes {
		n += len(refs)
	}
	return n
}

// TagNames returns the reported tag names in lexical order.
func (f ForbiddenElements) TagNames() []string {
	return sortedKeys(f.Tags)
}

// AttributeNames returns the reported attribute names in lexical order.
func (f ForbiddenElements) AttributeNames() []string {
	return sortedKeys(f.Attributes)
}

func sortedKeys(m map[string][]ElementRef) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
