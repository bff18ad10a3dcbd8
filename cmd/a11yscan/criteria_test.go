package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewCriteriaCmd(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	cmd := NewCriteriaCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--no-color"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := out.String()
	for _, want := range []string{"a11yscan", "Version: ", "10.*, 10.1, 10.5", "--criteria-help"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, got)
		}
	}

	t.Run("rejects arguments", func(t *testing.T) {
		t.Parallel()
		cmd := NewCriteriaCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"10.1"})
		if err := cmd.Execute(); err == nil {
			t.Error("expected error")
		}
	})
}
