package criteria

import (
	"errors"
	"strings"
	"testing"
)

func TestRegistry_Scan(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, `<span style="color:red">text</span>`)

	t.Run("unknown tag", func(t *testing.T) {
		t.Parallel()

		_, err := Default().Scan("nonexistent-tag", Env{Document: doc}, ExecuteOptions{})
		if !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("Scan() error = %v, want ErrInvalidArgument", err)
		}
		if !strings.Contains(err.Error(), `"nonexistent-tag"`) {
			t.Errorf("error %q does not name the tag", err)
		}
		if !strings.Contains(err.Error(), "10.*, 10.1, 10.5") {
			t.Errorf("error %q does not list the valid tags", err)
		}
	})

	t.Run("empty tag", func(t *testing.T) {
		t.Parallel()

		if _, err := Default().Scan("", Env{Document: doc}, ExecuteOptions{}); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("Scan() error = %v, want ErrInvalidArgument", err)
		}
	})

	t.Run("noReturn gives the empty result", func(t *testing.T) {
		t.Parallel()

		res, err := Default().Scan("10.5", Env{Document: doc}, ExecuteOptions{NoReturn: true})
		if err != nil {
			t.Fatalf("Scan() error = %v", err)
		}
		if res != nil {
			t.Errorf("Scan() = %+v, want nil", res)
		}
	})

	t.Run("dispatches to the criteria", func(t *testing.T) {
		t.Parallel()

		res, err := Default().Scan("10.5", Env{Document: doc}, ExecuteOptions{NoLog: Bool(true)})
		if err != nil {
			t.Fatalf("Scan() error = %v", err)
		}
		if res == nil || len(res.Anomalies) != 1 {
			t.Fatalf("Scan() = %+v, want one anomaly", res)
		}
		if res.Anomalies[0].Declared.Color != "red" || res.Anomalies[0].Declared.BackgroundColor != "" {
			t.Errorf("declared = %+v", res.Anomalies[0].Declared)
		}
	})

	t.Run("no document", func(t *testing.T) {
		t.Parallel()

		if _, err := Default().Scan("10.5", Env{}, ExecuteOptions{}); !errors.Is(err, ErrNoDocument) {
			t.Errorf("Scan() error = %v, want ErrNoDocument", err)
		}
	})
}

func TestRegistry_AllowList(t *testing.T) {
	t.Parallel()

	r := NewRegistry([]string{"10.5", "10.9"}, NewStyleConsistency(), NewPresentationMarkup())

	if got := r.Tags(); len(got) != 1 || got[0] != "10.5" {
		t.Errorf("Tags() = %v, want [10.5]", got)
	}
	if _, err := r.Lookup("10.1"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("registered but not allowed: error = %v, want ErrInvalidArgument", err)
	}
	if _, err := r.Lookup("10.9"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("allowed but not registered: error = %v, want ErrInvalidArgument", err)
	}
	if c, err := r.Lookup("10.5"); err != nil || c.Tag() != "10.5" {
		t.Errorf("Lookup(10.5) = %v, %v", c, err)
	}
}

func TestDefault_Tags(t *testing.T) {
	t.Parallel()

	got := Default().Tags()
	want := []string{"10.*", "10.1", "10.5"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Tags() = %v, want %v", got, want)
	}
	if Default() != Default() {
		t.Error("Default() is rebuilt")
	}
}

func TestInvoke_Help(t *testing.T) {
	t.Parallel()

	for _, tag := range Default().Tags() {
		t.Run(tag, func(t *testing.T) {
			t.Parallel()

			rep := &recorder{}
			// No document: the help path must not need one.
			res, err := Default().Scan(tag, Env{Reporter: rep}, ExecuteOptions{Help: true})
			if err != nil {
				t.Fatalf("Scan() error = %v", err)
			}
			if res != nil {
				t.Errorf("Scan() = %+v, want nil", res)
			}
			if len(rep.helps) != 1 {
				t.Fatalf("got %d helps, want 1", len(rep.helps))
			}
			h := rep.helps[0]
			if h.Tag != tag || h.Title == "" || len(h.Information.Links) == 0 {
				t.Errorf("help = %+v", h)
			}
			if len(h.Options) != 3 {
				t.Errorf("help lists %d options, want 3", len(h.Options))
			}
		})
	}
}

func TestDescribe_AdvicesInFrench(t *testing.T) {
	t.Parallel()

	leaves := []Criteria{NewStyleConsistency(), NewPresentationMarkup()}
	for _, c := range leaves {
		t.Run(c.Tag(), func(t *testing.T) {
			t.Parallel()

			info := c.Describe()
			if len(info.Advices) == 0 {
				t.Fatal("no advices")
			}
			for _, advice := range info.Advices {
				if !strings.HasPrefix(advice, "Rechercher") && !strings.HasPrefix(advice, "Remplacer") {
					t.Errorf("advice %q is not written like the French title", advice)
				}
			}
		})
	}
}
