package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/a11yscan/internal/model"
)

func sampleAnomalyResult() *model.Result {
	return model.NewAnomalyResult([]model.Anomaly{{
		Element:  model.ElementRef{Tag: "span", Path: "html > body:nth-child(2) > span:nth-child(1)"},
		Text:     "some text",
		Declared: model.ColorPair{Color: "red"},
		Computed: model.ColorPair{Color: "rgb(255, 0, 0)", BackgroundColor: "rgba(0, 0, 0, 0)"},
	}})
}

func sampleForbiddenResult() *model.Result {
	return model.NewForbiddenResult(model.ForbiddenElements{
		Tags:       map[string][]model.ElementRef{"center": {{Tag: "center", Path: "html > body > center"}}},
		Attributes: map[string][]model.ElementRef{"bgcolor": {{Tag: "td", Path: "td#cell"}}},
	})
}

func sampleReport() *model.ScanReport {
	r := model.NewScanReport("https://example.com/", "10.*")
	r.Title = "Présentation de l’information"
	r.DateScanned = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	r.Duration = 1500 * time.Millisecond
	r.StyleSheets = 2
	r.InaccessibleStyleSheets = []string{"https://cdn.example.net/lib.css"}
	r.Children = []model.ChildResult{
		{Tag: "10.1", Title: "presentation", Result: sampleForbiddenResult()},
		{Tag: "10.5", Title: "colours", Result: sampleAnomalyResult()},
	}
	return r
}

func TestConsoleReporter(t *testing.T) {
	t.Parallel()

	t.Run("help", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		NewConsoleReporter(&buf, WithNoColor(true)).Help(model.Help{
			Tag:   "10.5",
			Title: "colours",
			Information: model.Information{
				Links:   []string{"https://example.com/10.5"},
				Advices: []string{"check the declarations"},
			},
			Options: []model.OptionInfo{{Name: "noLog", Type: "boolean", Optional: true, Description: "Avoid logging"}},
		})

		out := buf.String()
		for _, want := range []string{"[HELP] Criteria 10.5", "colours", "links: https://example.com/10.5", "check the declarations", "noLog", "Avoid logging"} {
			if !strings.Contains(out, want) {
				t.Errorf("help output lacks %q:\n%s", want, out)
			}
		}
	})

	t.Run("ok result", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		NewConsoleReporter(&buf, WithNoColor(true)).Result("10.5", "colours", model.NewAnomalyResult(nil))
		if got := buf.String(); got != "✅ OK\n" {
			t.Errorf("output = %q", got)
		}
	})

	t.Run("anomalies", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		NewConsoleReporter(&buf, WithNoColor(true)).Result("10.5", "colours", sampleAnomalyResult())

		out := buf.String()
		for _, want := range []string{"❌ 1 anomaly detected", `Element text: "some text"`, "Color: red", "rgb(255, 0, 0)"} {
			if !strings.Contains(out, want) {
				t.Errorf("output lacks %q:\n%s", want, out)
			}
		}
	})

	t.Run("group", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		NewConsoleReporter(&buf, WithNoColor(true)).Group("10", "Présentation", sampleReport().Children)

		out := buf.String()
		for _, want := range []string{"10. Présentation", "⚠️ 10.1 presentation", "⚠️ 10.5 colours", "<center> x1", "[bgcolor] x1"} {
			if !strings.Contains(out, want) {
				t.Errorf("output lacks %q:\n%s", want, out)
			}
		}
	})

	t.Run("usage", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		NewConsoleReporter(&buf, WithNoColor(true)).Usage("v1.2.3", []string{"10.*", "10.1", "10.5"})

		out := buf.String()
		for _, want := range []string{"Version: v1.2.3", "Available criteria: 10.*, 10.1, 10.5", "a11yscan scan <tag> --criteria-help"} {
			if !strings.Contains(out, want) {
				t.Errorf("usage lacks %q:\n%s", want, out)
			}
		}
	})
}

func TestRecorderAndMultiReporter(t *testing.T) {
	t.Parallel()

	rec := NewRecorder()
	var buf bytes.Buffer
	m := NewMultiReporter(rec, nil, NewConsoleReporter(&buf, WithNoColor(true)))

	m.Notice("10.*", "notice")
	m.Progress("10.*", "running")
	m.Result("10.5", "colours", sampleAnomalyResult())
	m.Group("10", "theme", sampleReport().Children)
	m.Help(model.Help{Tag: "10.5"})

	if len(rec.Notices()) != 1 || len(rec.Results()) != 1 || len(rec.Children()) != 2 || len(rec.Helps()) != 1 {
		t.Errorf("recorded notices=%d results=%d children=%d helps=%d",
			len(rec.Notices()), len(rec.Results()), len(rec.Children()), len(rec.Helps()))
	}
	if !strings.Contains(buf.String(), "[10.*] running") {
		t.Errorf("console did not receive progress:\n%s", buf.String())
	}
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("compact", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(sampleReport()); err != nil {
			t.Fatal(err)
		}
		if strings.Count(buf.String(), "\n") != 1 {
			t.Errorf("compact output spans several lines:\n%s", buf.String())
		}

		var got model.ScanReport
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if got.Tag != "10.*" || len(got.Children) != 2 {
			t.Errorf("decoded report = %+v", got)
		}
		if got.Children[1].Result.Anomalies[0].Declared.Color != "red" {
			t.Errorf("anomaly lost in JSON: %+v", got.Children[1].Result)
		}
	})

	t.Run("versioned", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint(), WithVersion("v1.0.0")).Write(sampleReport()); err != nil {
			t.Fatal(err)
		}

		var got JSONReport
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if got.Version != "v1.0.0" {
			t.Errorf("Version = %q", got.Version)
		}
		if got.Summary.Warning != 2 || got.Summary.Evidence != 3 {
			t.Errorf("Summary = %+v", got.Summary)
		}
	})
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	n, err := NewMarkdownWriter(&buf).Write(sampleReport())
	if err != nil {
		t.Fatal(err)
	}
	if n == 0 {
		t.Error("Write() reported 0 bytes")
	}

	out := buf.String()
	for _, want := range []string{
		"# a11yscan Report",
		"https://example.com/",
		"## Summary",
		"⚠️ Warning",
		"```mermaid",
		"## ⚠️ 10.5 colours",
		"1 anomaly detected",
		"some text",
		"`<center>`",
		"`bgcolor`",
		"cdn.example.net/lib.css",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown lacks %q:\n%s", want, out)
		}
	}
}

func TestMarkdownWriter_Error(t *testing.T) {
	t.Parallel()

	r := model.NewScanReport("missing.html", "10.5")
	r.Error = "no such file"

	var buf bytes.Buffer
	if _, err := NewMarkdownWriter(&buf).Write(r); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "no such file") {
		t.Errorf("markdown lacks the error:\n%s", buf.String())
	}
	if strings.Contains(buf.String(), "## Summary") {
		t.Error("failed scan has a summary")
	}
}

func TestTextWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewTextWriter(&buf, WithVerbose(true)).Write(sampleReport()); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	for _, want := range []string{
		"Target:   https://example.com/",
		"⚠️ 10.5 colours",
		`"some text"`,
		"css: color=red background-color=-",
		"- <center> html > body > center",
		"Summary: 0 ok, 2 warning, 0 ko (3 elements to review)",
		"Unreadable stylesheets: 1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text lacks %q:\n%s", want, out)
		}
	}
}

type failingWriter struct{}

func (failingWriter) Write(*model.ScanReport) (int, error) {
	return 0, errors.New("disk full")
}

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	var a, b bytes.Buffer
	m := NewMultiWriter(NewJSONWriter(&a), NewTextWriter(&b))
	n, err := m.Write(sampleReport())
	if err != nil {
		t.Fatal(err)
	}
	if n != a.Len()+b.Len() {
		t.Errorf("Write() = %d, want %d", n, a.Len()+b.Len())
	}

	if _, err := NewMultiWriter(failingWriter{}, NewJSONWriter(&a)).Write(sampleReport()); err == nil {
		t.Error("error not returned")
	}
}

func TestHexColor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{in: "rgb(255, 0, 0)", want: "#ff0000", ok: true},
		{in: "rgba(0, 0, 255, 0.5)", want: "#0000ff", ok: true},
		{in: "rgba(0, 0, 0, 0)", ok: false},
		{in: "red", ok: false},
	}
	for _, tt := range tests {
		got, ok := hexColor(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("hexColor(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	if got := truncate("abcdef", 5); got != "ab..." {
		t.Errorf("truncate() = %q", got)
	}
	if got := truncate("éé", 5); got != "éé" {
		t.Errorf("truncate() = %q", got)
	}
}
