package pipeline

import (
	"context"
	"errors"
	"testing"
)

// mockStep is a test helper that implements the Step interface.
type mockStep struct {
	name      string
	doFunc    func(ctx context.Context, st *State) error
	callCount int
}

// Do implements Step.Do.
func (m *mockStep) Do(ctx context.Context, st *State) error {
	m.callCount++
	if m.doFunc != nil {
		return m.doFunc(ctx, st)
	}
	return nil
}

// Name implements Step.Name.
func (m *mockStep) Name() string {
	return m.name
}

func TestPipelineNew(t *testing.T) {
	t.Parallel()

	t.Run("creates pipeline with default settings", func(t *testing.T) {
		t.Parallel()

		p := New()
		if p.StepCount() != 0 {
			t.Errorf("expected 0 steps, got %d", p.StepCount())
		}
		if p.continueOnError {
			t.Error("expected continueOnError to be false")
		}
	})

	t.Run("applies WithContinueOnError option", func(t *testing.T) {
		t.Parallel()

		if p := New(WithContinueOnError(true)); !p.continueOnError {
			t.Error("expected continueOnError to be true")
		}
	})
}

func TestPipelineAddStep(t *testing.T) {
	t.Parallel()

	p := New()
	p.AddStep(&mockStep{name: "load"})
	p.AddSteps(&mockStep{name: "scan"}, &mockStep{name: "save"})

	if p.StepCount() != 3 {
		t.Errorf("expected 3 steps, got %d", p.StepCount())
	}
	names := p.StepNames()
	for i, want := range []string{"load", "scan", "save"} {
		if names[i] != want {
			t.Errorf("step %d = %s, want %s", i, names[i], want)
		}
	}
}

func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	t.Run("executes steps in order", func(t *testing.T) {
		t.Parallel()

		var order []string
		record := func(name string) *mockStep {
			return &mockStep{name: name, doFunc: func(context.Context, *State) error {
				order = append(order, name)
				return nil
			}}
		}
		p := New()
		p.AddSteps(record("first"), record("second"))

		st := NewState("index.html", "10.5")
		if err := p.Execute(context.Background(), st); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(order) != 2 || order[0] != "first" || order[1] != "second" {
			t.Errorf("unexpected order: %v", order)
		}
		if st.Report.Error != "" {
			t.Errorf("unexpected report error: %s", st.Report.Error)
		}
		if st.Report.Duration <= 0 {
			t.Error("expected the duration to be recorded")
		}
	})

	t.Run("stops on first error", func(t *testing.T) {
		t.Parallel()

		errBoom := errors.New("boom")
		failing := &mockStep{name: "fail", doFunc: func(context.Context, *State) error { return errBoom }}
		next := &mockStep{name: "next"}
		p := New()
		p.AddSteps(failing, next)

		st := NewState("index.html", "10.5")
		err := p.Execute(context.Background(), st)
		if !errors.Is(err, errBoom) {
			t.Errorf("expected errBoom, got %v", err)
		}
		if next.callCount != 0 {
			t.Error("expected the next step not to run")
		}
		if st.Report.Error != "boom" {
			t.Errorf("expected the error in the report, got %q", st.Report.Error)
		}
	})

	t.Run("continues on error when configured", func(t *testing.T) {
		t.Parallel()

		failing := &mockStep{name: "fail", doFunc: func(context.Context, *State) error { return errors.New("first") }}
		next := &mockStep{name: "next"}
		p := New(WithContinueOnError(true))
		p.AddSteps(failing, next)

		st := NewState("index.html", "10.5")
		if err := p.Execute(context.Background(), st); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
		if next.callCount != 1 {
			t.Error("expected the next step to run")
		}
		if st.Report.Error != "first" {
			t.Errorf("expected the first error in the report, got %q", st.Report.Error)
		}
	})

	t.Run("respects cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		step := &mockStep{name: "load"}
		p := New()
		p.AddStep(step)

		st := NewState("index.html", "10.5")
		if err := p.Execute(ctx, st); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if step.callCount != 0 {
			t.Error("expected no step to run")
		}
		if st.Report.Error == "" {
			t.Error("expected the cancellation in the report")
		}
	})
}
