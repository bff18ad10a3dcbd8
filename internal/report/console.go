package report

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/muesli/termenv"
	"github.com/nao1215/a11yscan/internal/model"
)

// Styles are the lipgloss styles of the console output.
type Styles struct {
	Title   lipgloss.Style
	Header  lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style
	Code    lipgloss.Style
	Swatch  func(model.ColorPair) lipgloss.Style
}

// NewStyles builds the styles for a renderer.
func NewStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Title:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Header:  r.NewStyle().Bold(true),
		Success: r.NewStyle().Foreground(lipgloss.Color("10")),
		Warning: r.NewStyle().Foreground(lipgloss.Color("11")),
		Error:   r.NewStyle().Foreground(lipgloss.Color("9")),
		Muted:   r.NewStyle().Foreground(lipgloss.Color("8")),
		Code:    r.NewStyle().Foreground(lipgloss.Color("14")),
		Swatch: func(c model.ColorPair) lipgloss.Style {
			s := r.NewStyle()
			if hex, ok := hexColor(c.Color); ok {
				s = s.Foreground(lipgloss.Color(hex))
			}
			if hex, ok := hexColor(c.BackgroundColor); ok {
				s = s.Background(lipgloss.Color(hex))
			}
			return s
		},
	}
}

// ConsoleOption configures a ConsoleReporter.
type ConsoleOption func(*consoleConfig)

type consoleConfig struct {
	noColor bool
}

// WithNoColor disables colours and styles.
func WithNoColor(noColor bool) ConsoleOption {
	return func(c *consoleConfig) {
		c.noColor = noColor
	}
}

// ConsoleReporter renders criteria output for a person reading a terminal.
// It implements criteria.Reporter and is safe for concurrent use.
type ConsoleReporter struct {
	mu     sync.Mutex
	out    io.Writer
	styles Styles
	indent int
}

// NewConsoleReporter creates a ConsoleReporter writing to out. Colours are
// used only when out is a terminal, NO_COLOR is unset and WithNoColor is
// not given.
func NewConsoleReporter(out io.Writer, opts ...ConsoleOption) *ConsoleReporter {
	cfg := consoleConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	r := lipgloss.NewRenderer(out)
	if cfg.noColor || termenv.EnvNoColor() {
		r.SetColorProfile(termenv.Ascii)
	}
	return &ConsoleReporter{out: out, styles: NewStyles(r)}
}

// Help implements criteria.Reporter.
func (c *ConsoleReporter) Help(h model.Help) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.println(c.styles.Title.Render("[HELP]") + " Criteria " + h.Tag)
	c.indent++
	defer func() { c.indent-- }()

	c.println(c.styles.Header.Render(h.Title))
	for _, link := range h.Information.Links {
		c.println("links: " + link)
	}
	if len(h.Information.Advices) > 0 {
		c.println(c.styles.Title.Render("Advices"))
		c.indent++
		for _, advice := range h.Information.Advices {
			c.println(advice)
		}
		c.indent--
	}

	c.println(c.styles.Title.Render("Execute options"))
	t := newTable()
	t.AppendHeader(table.Row{"Option", "Type", "Optional", "Description"})
	for _, o := range h.Options {
		t.AppendRow(table.Row{o.Name, o.Type, o.Optional, o.Description})
	}
	c.printBlock(t.Render())
}

// Progress implements criteria.Reporter.
func (c *ConsoleReporter) Progress(tag, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.println(c.styles.Muted.Render("[" + tag + "] " + message))
}

// Notice implements criteria.Reporter.
func (c *ConsoleReporter) Notice(tag, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.println(c.styles.Warning.Render("[" + tag + "] " + message))
}

// Result implements criteria.Reporter.
func (c *ConsoleReporter) Result(tag, title string, result *model.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writeResult(result)
}

// Group implements criteria.Reporter.
func (c *ConsoleReporter) Group(tag, title string, children []model.ChildResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.println(c.styles.Header.Render(tag + ". " + title))
	c.indent++
	defer func() { c.indent-- }()

	for _, child := range children {
		icon := model.StatusWarning.Icon()
		if child.Result != nil {
			icon = child.Result.Success.Icon()
		}
		c.println(icon + " " + c.styles.Header.Render(child.Tag) + " " + child.Title)
		c.indent++
		c.writeResult(child.Result)
		c.indent--
	}
}

// writeResult prints the outcome of a leaf criteria.
func (c *ConsoleReporter) writeResult(result *model.Result) {
	switch {
	case result == nil:
		c.println(c.styles.Muted.Render("no result"))
	case result.EvidenceCount() == 0:
		c.println(result.Success.Icon() + " " + c.styles.Success.Render("OK"))
	default:
		if len(result.Anomalies) > 0 {
			c.writeAnomalies(result.Anomalies)
		}
		if result.Forbidden != nil {
			c.writeForbidden(result.Forbidden)
		}
	}
}

func (c *ConsoleReporter) writeAnomalies(anomalies []model.Anomaly) {
	n := len(anomalies)
	c.println(fmt.Sprintf("%s %s anomal%s detected",
		model.StatusKO.Icon(), c.styles.Header.Render(fmt.Sprint(n)), pluralY(n)))

	c.indent++
	defer func() { c.indent-- }()
	for _, a := range anomalies {
		c.println(fmt.Sprintf("Element text: %q", a.Excerpt()))
		c.println(c.styles.Muted.Render(a.Element.Path))
		c.println(fmt.Sprintf("%s\t\tColor: %s\t\tBackground-color: %s",
			c.styles.Header.Render("[CSS]"), orTab(a.Declared.Color), a.Declared.BackgroundColor))
		c.println(fmt.Sprintf("%s\tColor: %s\t\tBackground-color: %s %s",
			c.styles.Header.Render("[Computed]"), a.Computed.Color, a.Computed.BackgroundColor,
			c.styles.Swatch(a.Computed).Render(" ⬤ ")))
	}
}

func (c *ConsoleReporter) writeForbidden(f *model.ForbiddenElements) {
	n := f.Count()
	c.println(fmt.Sprintf("%s %s presentational element%s detected",
		model.StatusKO.Icon(), c.styles.Header.Render(fmt.Sprint(n)), model.Plural(n)))

	c.indent++
	defer func() { c.indent-- }()
	for _, tag := range f.TagNames() {
		c.println(fmt.Sprintf("<%s> x%d", tag, len(f.Tags[tag])))
	}
	for _, attr := range f.AttributeNames() {
		c.println(fmt.Sprintf("[%s] x%d", attr, len(f.Attributes[attr])))
	}
}

// Usage prints the global help: version, available tags and commands.
func (c *ConsoleReporter) Usage(version string, tags []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.println(c.styles.Title.Render("a11yscan"))
	c.indent++
	defer func() { c.indent-- }()

	c.println("Version: " + version)
	c.println("Available criteria: " + strings.Join(tags, ", "))
	c.println("Available commands:")

	t := newTable()
	t.AppendHeader(table.Row{"Command", "Description"})
	t.AppendRow(table.Row{"a11yscan scan <tag> <target>...", "Run a criteria and show its results"})
	t.AppendRow(table.Row{"a11yscan scan <tag> --criteria-help", "Show the help of a criteria and its options"})
	t.AppendRow(table.Row{"a11yscan criteria", "Show this help"})
	t.AppendRow(table.Row{"a11yscan history [target]", "List stored scans"})
	c.printBlock(t.Render())
}

// println writes one indented line.
func (c *ConsoleReporter) println(s string) {
	fmt.Fprintln(c.out, strings.Repeat("  ", c.indent)+s)
}

// printBlock writes a multi-line block, indenting every line.
func (c *ConsoleReporter) printBlock(s string) {
	for _, line := range strings.Split(s, "\n") {
		c.println(line)
	}
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	return t
}

func orTab(s string) string {
	if s == "" {
		return "\t"
	}
	return s
}
