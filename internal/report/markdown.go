package report

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/a11yscan/internal/model"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MarkdownWriter outputs reports in GitHub flavoured Markdown, for sharing
// audits in issues and documentation.
type MarkdownWriter struct {
	baseWriter
	title cases.Caser
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
		title:      cases.Title(language.English),
	}
}

// Write implements Writer.
func (w *MarkdownWriter) Write(report *model.ScanReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	if report.Error != "" {
		md.Cautionf("The target could not be scanned: %s", report.Error)
		md.PlainText("")
	} else {
		summary := report.Summarize()
		w.writeSummary(md, summary)
		w.writeEntries(md, report.Entries())
		w.writeStyleSheets(md, report)
	}
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.ScanReport) {
	md.H1("a11yscan Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Target", "`" + report.Target + "`"},
			{"Criteria", "`" + report.Tag + "` " + report.Title},
			{"Scan Date", report.DateScanned.Format("2006-01-02 15:04:05 MST")},
			{"Duration", report.Duration.Round(time.Millisecond).String()},
			{"Stylesheets", strconv.Itoa(report.StyleSheets)},
		},
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, summary model.Summary) {
	md.H2("Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Status", "Criteria"},
		Rows: [][]string{
			{w.statusLabel(model.StatusOK), strconv.Itoa(summary.OK)},
			{w.statusLabel(model.StatusWarning), strconv.Itoa(summary.Warning)},
			{w.statusLabel(model.StatusKO), strconv.Itoa(summary.KO)},
			{"**Evidence**", "**" + strconv.Itoa(summary.Evidence) + "**"},
		},
	})
	md.PlainText("")

	if summary.Total() > 1 {
		w.writePieChart(md, summary)
	}

	switch {
	case summary.Total() == 0:
		md.Note("No result was returned for this scan.")
	case summary.KO > 0:
		md.Cautionf("%d criteria not met.", summary.KO)
	case summary.Warning > 0:
		md.Warningf("%d criteria need a manual review (%d element%s).",
			summary.Warning, summary.Evidence, model.Plural(summary.Evidence))
	default:
		md.Tip("No issue detected.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, summary model.Summary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Criteria by status"),
		piechart.WithShowData(true),
	)
	for _, s := range []struct {
		status model.Status
		count  int
	}{
		{model.StatusOK, summary.OK},
		{model.StatusWarning, summary.Warning},
		{model.StatusKO, summary.KO},
	} {
		if s.count > 0 {
			chart.LabelAndIntValue(w.title.String(s.status.String()), uint64(s.count))
		}
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeEntries(md *markdown.Markdown, entries []model.ChildResult) {
	for _, e := range entries {
		if e.Result == nil {
			continue
		}
		md.H2(e.Result.Success.Icon() + " " + e.Tag + " " + e.Title)
		md.PlainText("")

		if e.Result.EvidenceCount() == 0 {
			md.PlainText("OK")
			md.PlainText("")
			continue
		}
		if len(e.Result.Anomalies) > 0 {
			w.writeAnomalies(md, e.Result.Anomalies)
		}
		if e.Result.Forbidden != nil {
			w.writeForbidden(md, e.Result.Forbidden)
		}
	}
}

func (w *MarkdownWriter) writeAnomalies(md *markdown.Markdown, anomalies []model.Anomaly) {
	md.PlainTextf("%d anomal%s detected", len(anomalies), pluralY(len(anomalies)))
	md.PlainText("")

	rows := make([][]string, len(anomalies))
	for i, a := range anomalies {
		rows[i] = []string{
			"`" + truncate(a.Element.Path, 60) + "`",
			escapeCell(a.Excerpt()),
			orDash(a.Declared.Color),
			orDash(a.Declared.BackgroundColor),
			a.Computed.Color,
			a.Computed.BackgroundColor,
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Element", "Text", "CSS color", "CSS background", "Computed color", "Computed background"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeForbidden(md *markdown.Markdown, f *model.ForbiddenElements) {
	rows := make([][]string, 0, len(f.Tags)+len(f.Attributes))
	for _, tag := range f.TagNames() {
		rows = append(rows, []string{"`<" + tag + ">`", "tag", strconv.Itoa(len(f.Tags[tag])), examplePaths(f.Tags[tag])})
	}
	for _, attr := range f.AttributeNames() {
		rows = append(rows, []string{"`" + attr + "`", "attribute", strconv.Itoa(len(f.Attributes[attr])), examplePaths(f.Attributes[attr])})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Markup", "Kind", "Elements", "First elements"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeStyleSheets(md *markdown.Markdown, report *model.ScanReport) {
	if len(report.InaccessibleStyleSheets) == 0 {
		return
	}
	md.Details(
		strconv.Itoa(len(report.InaccessibleStyleSheets))+" stylesheet(s) could not be read",
		"Their rules were not inspected:\n\n- "+strings.Join(report.InaccessibleStyleSheets, "\n- "),
	)
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [a11yscan](https://github.com/nao1215/a11yscan)*")
}

func (w *MarkdownWriter) statusLabel(s model.Status) string {
	return s.Icon() + " " + w.title.String(s.String())
}

// examplePaths lists the paths of the first three elements.
func examplePaths(refs []model.ElementRef) string {
	const limit = 3
	paths := make([]string, 0, limit)
	for i, ref := range refs {
		if i == limit {
			paths = append(paths, "...")
			break
		}
		paths = append(paths, "`"+truncate(ref.Path, 40)+"`")
	}
	return strings.Join(paths, "<br>")
}

// escapeCell keeps a value from breaking a Markdown table row.
func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func pluralY(n int) string {
	if n > 1 {
		return "ies"
	}
	return "y"
}
