package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/a11yscan/internal/model"
)

// TextWriter outputs plain text reports, readable in a terminal or a file
// without any colour support.
type TextWriter struct {
	baseWriter

	// verbose lists every element instead of a count per criteria.
	verbose bool
}

// TextWriterOption configures a TextWriter.
type TextWriterOption func(*TextWriter)

// WithVerbose lists every offending element.
func WithVerbose(verbose bool) TextWriterOption {
	return func(w *TextWriter) {
		w.verbose = verbose
	}
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer, opts ...TextWriterOption) *TextWriter {
	w := &TextWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write implements Writer.
func (w *TextWriter) Write(report *model.ScanReport) (int, error) {
	var sb strings.Builder

	sb.WriteString(strings.Repeat("=", 60) + "\n")
	fmt.Fprintf(&sb, "Target:   %s\n", report.Target)
	fmt.Fprintf(&sb, "Criteria: %s %s\n", report.Tag, report.Title)
	fmt.Fprintf(&sb, "Date:     %s (%s)\n",
		report.DateScanned.Format("2006-01-02 15:04:05"), report.Duration.Round(time.Millisecond))
	sb.WriteString(strings.Repeat("=", 60) + "\n")

	if report.Error != "" {
		fmt.Fprintf(&sb, "%s ERROR: %s\n\n", model.StatusKO.Icon(), report.Error)
		return io.WriteString(w.output, sb.String())
	}

	for _, e := range report.Entries() {
		w.writeEntry(&sb, e)
	}

	s := report.Summarize()
	fmt.Fprintf(&sb, "\nSummary: %d ok, %d warning, %d ko (%d element%s to review)\n",
		s.OK, s.Warning, s.KO, s.Evidence, model.Plural(s.Evidence))
	if n := len(report.InaccessibleStyleSheets); n > 0 {
		fmt.Fprintf(&sb, "Unreadable stylesheets: %d\n", n)
		for _, name := range report.InaccessibleStyleSheets {
			fmt.Fprintf(&sb, "  - %s\n", name)
		}
	}
	sb.WriteString("\n")

	return io.WriteString(w.output, sb.String())
}

func (w *TextWriter) writeEntry(sb *strings.Builder, e model.ChildResult) {
	if e.Result == nil {
		return
	}
	fmt.Fprintf(sb, "\n%s %s %s\n", e.Result.Success.Icon(), e.Tag, e.Title)
	fmt.Fprintf(sb, "   %d element%s\n", e.Result.EvidenceCount(), model.Plural(e.Result.EvidenceCount()))
	if !w.verbose {
		return
	}

	for _, a := range e.Result.Anomalies {
		fmt.Fprintf(sb, "   - %s %q\n", a.Element.Path, a.Excerpt())
		fmt.Fprintf(sb, "     css: color=%s background-color=%s\n", orDash(a.Declared.Color), orDash(a.Declared.BackgroundColor))
		fmt.Fprintf(sb, "     computed: color=%s background-color=%s\n", a.Computed.Color, a.Computed.BackgroundColor)
	}
	if f := e.Result.Forbidden; f != nil {
		for _, tag := range f.TagNames() {
			for _, ref := range f.Tags[tag] {
				fmt.Fprintf(sb, "   - <%s> %s\n", tag, ref.Path)
			}
		}
		for _, attr := range f.AttributeNames() {
			for _, ref := range f.Attributes[attr] {
				fmt.Fprintf(sb, "   - [%s] %s\n", attr, ref.Path)
			}
		}
	}
}
