package model

import (
	"time"

	"github.com/google/uuid"
)

// ScanReport is the record of scanning one target with one criteria tag.
// It is what the report writers render and what the database stores.
type ScanReport struct {
	// ID uniquely identifies the scan. It is used to correlate log lines.
	ID string `json:"id"`

	// Target is the scanned document location (file path or URL).
	Target string `json:"target"`

	// Tag is the criteria tag that was requested.
	Tag string `json:"tag"`

	// Title is the title of the requested criteria.
	Title string `json:"title,omitempty"`

	// DateScanned is when the scan started.
	DateScanned time.Time `json:"date_scanned"`

	// Duration is how long loading and scanning took.
	Duration time.Duration `json:"duration"`

	// Result is what the criteria returned. It is nil for aggregate
	// criteria and when no return value was requested.
	Result *Result `json:"result,omitempty"`

	// Children are the results an aggregate criteria reported.
	Children []ChildResult `json:"children,omitempty"`

	// StyleSheets is the number of stylesheets found in the document.
	StyleSheets int `json:"stylesheets"`

	// InaccessibleStyleSheets lists stylesheets whose rules could not be read.
	InaccessibleStyleSheets []string `json:"inaccessible_stylesheets,omitempty"`

	// Error is set when the target could not be scanned.
	Error string `json:"error,omitempty"`
}

// NewScanReport creates a report for target and tag, stamped with the current time.
func NewScanReport(target, tag string) *ScanReport {
	return &ScanReport{
		ID:          uuid.NewString(),
		Target:      target,
		Tag:         tag,
		DateScanned: time.Now(),
	}
}

// Summary counts results by status.
type Summary struct {
	OK       int `json:"ok"`
	Warning  int `json:"warning"`
	KO       int `json:"ko"`
	Evidence int `json:"evidence"`
}

// Total returns the number of counted results.
func (s Summary) Total() int {
	return s.OK + s.Warning + s.KO
}

// Entries returns the results carried by the report, the direct result
// first and then the aggregate children.
func (r *ScanReport) Entries() []ChildResult {
	entries := make([]ChildResult, 0, len(r.Children)+1)
	if r.Result != nil {
		entries = append(entries, ChildResult{Tag: r.Tag, Title: r.Title, Result: r.Result})
	}
	return append(entries, r.Children...)
}

// Summarize counts the statuses of every result in the report.
func (r *ScanReport) Summarize() Summary {
	var s Summary
	for _, e := range r.Entries() {
		if e.Result == nil {
			continue
		}
		switch e.Result.Success {
		case StatusOK:
			s.OK++
		case StatusKO:
			s.KO++
		default:
			s.Warning++
		}
		s.Evidence += e.Result.EvidenceCount()
	}
	return s
}
