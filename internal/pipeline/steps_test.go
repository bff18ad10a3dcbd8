package pipeline

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/a11yscan/internal/config"
	"github.com/nao1215/a11yscan/internal/criteria"
	"github.com/nao1215/a11yscan/internal/dom"
)

// fakeLoader parses a fixed page instead of fetching the target.
type fakeLoader struct {
	html string
	err  error
}

func (f fakeLoader) Load(_ context.Context, _ string) (*dom.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	return dom.ParseString(f.html)
}

func loadedState(t *testing.T, tag, page string) *State {
	t.Helper()

	st := NewState("index.html", tag)
	if err := NewLoadStep(fakeLoader{html: page}).Do(context.Background(), st); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	return st
}

func TestLoadStep(t *testing.T) {
	t.Parallel()

	t.Run("records the stylesheets", func(t *testing.T) {
		t.Parallel()

		st := loadedState(t, "10.5", `<html><head>
<style>p { color: red }</style>
<link rel="stylesheet" href="https://cdn.example.net/lib.css">
</head><body><p>text</p></body></html>`)

		if st.Document == nil {
			t.Fatal("expected a document")
		}
		if st.Report.StyleSheets != 2 {
			t.Errorf("expected 2 stylesheets, got %d", st.Report.StyleSheets)
		}
		if len(st.Report.InaccessibleStyleSheets) != 1 ||
			st.Report.InaccessibleStyleSheets[0] != "https://cdn.example.net/lib.css" {
			t.Errorf("unexpected inaccessible stylesheets: %v", st.Report.InaccessibleStyleSheets)
		}
	})

	t.Run("wraps load errors", func(t *testing.T) {
		t.Parallel()

		errMissing := errors.New("missing")
		st := NewState("index.html", "10.5")
		err := NewLoadStep(fakeLoader{err: errMissing}).Do(context.Background(), st)
		if !errors.Is(err, errMissing) {
			t.Errorf("expected errMissing, got %v", err)
		}
		if !strings.Contains(err.Error(), "index.html") {
			t.Errorf("expected the target in the error, got %v", err)
		}
	})
}

func TestScanStep(t *testing.T) {
	t.Parallel()

	const page = `<html><body><span style="color:red">text</span><center>old</center></body></html>`

	t.Run("leaf criteria result is kept", func(t *testing.T) {
		t.Parallel()

		st := loadedState(t, "10.5", page)
		if err := NewScanStep(criteria.Default(), WithNoColor(true)).Do(context.Background(), st); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if st.Report.Result == nil || len(st.Report.Result.Anomalies) != 1 {
			t.Fatalf("expected one anomaly, got %+v", st.Report.Result)
		}
		if got := st.Report.Result.Anomalies[0].Declared.Color; got != "red" {
			t.Errorf("declared color = %q, want red", got)
		}
		if st.Report.Title == "" {
			t.Error("expected the criteria title in the report")
		}
		if !strings.Contains(st.Console.String(), "1 anomaly detected") {
			t.Errorf("unexpected console output:\n%s", st.Console.String())
		}
	})

	t.Run("aggregate children are recorded", func(t *testing.T) {
		t.Parallel()

		st := loadedState(t, "10.*", page)
		if err := NewScanStep(criteria.Default(), WithNoColor(true)).Do(context.Background(), st); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if st.Report.Result != nil {
			t.Errorf("expected no result for an aggregate, got %+v", st.Report.Result)
		}
		if len(st.Report.Children) != 2 {
			t.Fatalf("expected 2 children, got %d", len(st.Report.Children))
		}
		if st.Report.Children[0].Tag != "10.1" || st.Report.Children[1].Tag != "10.5" {
			t.Errorf("unexpected children order: %s, %s", st.Report.Children[0].Tag, st.Report.Children[1].Tag)
		}
		if st.Report.Children[0].Result.EvidenceCount() != 1 {
			t.Errorf("expected the <center> element, got %+v", st.Report.Children[0].Result)
		}
	})

	t.Run("no return drops the result", func(t *testing.T) {
		t.Parallel()

		st := loadedState(t, "10.5", page)
		step := NewScanStep(criteria.Default(), WithExecuteOptions(criteria.ExecuteOptions{NoReturn: true}))
		if err := step.Do(context.Background(), st); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if st.Report.Result != nil {
			t.Errorf("expected no result, got %+v", st.Report.Result)
		}
	})

	t.Run("unknown tag is an invalid argument", func(t *testing.T) {
		t.Parallel()

		st := loadedState(t, "nonexistent-tag", page)
		err := NewScanStep(criteria.Default()).Do(context.Background(), st)
		if !errors.Is(err, criteria.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("missing document", func(t *testing.T) {
		t.Parallel()

		st := NewState("index.html", "10.5")
		err := NewScanStep(criteria.Default()).Do(context.Background(), st)
		if !errors.Is(err, criteria.ErrNoDocument) {
			t.Errorf("expected ErrNoDocument, got %v", err)
		}
	})
}

func TestExecuteOptionsFrom(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	if opts := ExecuteOptionsFrom(cfg); opts.NoLog != nil || opts.NoReturn || opts.Help {
		t.Errorf("unexpected default options: %+v", opts)
	}

	cfg.NoLogSet = true
	cfg.NoReturn = true
	opts := ExecuteOptionsFrom(cfg)
	if opts.NoLog == nil || *opts.NoLog {
		t.Errorf("expected an explicit NoLog=false, got %v", opts.NoLog)
	}
	if !opts.NoReturn {
		t.Error("expected NoReturn")
	}
}

func TestNewScanPipeline(t *testing.T) {
	t.Parallel()

	t.Run("local file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "index.html")
		page := `<html><body><p style="background-color: yellow">text</p></body></html>`
		if err := os.WriteFile(path, []byte(page), 0600); err != nil {
			t.Fatal(err)
		}

		cfg := config.NewConfig()
		cfg.NoColor = true
		p := NewScanPipeline(cfg, path, nil)
		if names := p.StepNames(); len(names) != 2 || names[0] != "load" || names[1] != "scan" {
			t.Errorf("unexpected steps: %v", names)
		}

		st := NewState(path, "10.5")
		if err := p.Execute(context.Background(), st); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if st.Report.Result.EvidenceCount() != 1 {
			t.Errorf("expected one anomaly, got %+v", st.Report.Result)
		}
	})

	t.Run("site cookie and linked stylesheet over HTTP", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			if r.Header.Get("Cookie") != "session=abc" {
				_, _ = w.Write([]byte(`<html><body><p>anonymous</p></body></html>`))
				return
			}
			_, _ = w.Write([]byte(`<html><head><link rel="stylesheet" href="/site.css"></head>` +
				`<body><p class="note">member</p></body></html>`))
		})
		mux.HandleFunc("/site.css", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/css")
			_, _ = w.Write([]byte(`.note { color: navy; }`))
		})
		server := httptest.NewServer(mux)
		t.Cleanup(server.Close)

		cfg := config.NewConfig()
		cfg.NoColor = true
		cfg.SiteConfigs.Sites[config.HostOf(server.URL)] = config.SiteConfig{Cookie: "session=abc"}

		target := server.URL + "/"
		st := NewState(target, "10.5")
		if err := NewScanPipeline(cfg, target, nil).Execute(context.Background(), st); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if st.Report.StyleSheets != 1 || len(st.Report.InaccessibleStyleSheets) != 0 {
			t.Errorf("stylesheets = %d, inaccessible = %v", st.Report.StyleSheets, st.Report.InaccessibleStyleSheets)
		}
		if st.Report.Result.EvidenceCount() != 1 {
			t.Fatalf("expected one anomaly, got %+v", st.Report.Result)
		}
		if got := st.Report.Result.Anomalies[0].Computed.Color; got != "rgb(0, 0, 128)" {
			t.Errorf("computed color = %q", got)
		}
	})

	t.Run("missing file fails the target", func(t *testing.T) {
		t.Parallel()

		target := filepath.Join(t.TempDir(), "missing.html")
		st := NewState(target, "10.5")
		if err := NewScanPipeline(config.NewConfig(), target, nil).Execute(context.Background(), st); err == nil {
			t.Fatal("expected an error")
		}
		if st.Report.Error == "" {
			t.Error("expected the error in the report")
		}
	})
}
