package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestSpinnerStopStates(t *testing.T) {
	tests := []struct {
		name string
		stop func(*Spinner)
		icon string
		want string
	}{
		{"success", func(s *Spinner) { s.StopWithSuccess("%s %s is valid", "npm", "10.2.4") }, iconSuccess, "npm 10.2.4 is valid\n"},
		{"warning", func(s *Spinner) { s.StopWithWarning("No asset manager installed") }, iconWarning, "No asset manager installed\n"},
		{"error", func(s *Spinner) { s.StopWithError("Invalid asset manager %s", "yarn") }, iconError, "Invalid asset manager yarn\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			s := newSpinnerTo(context.Background(), &buf, "Detecting asset manager...")
			s.Start()
			tt.stop(s)

			out := buf.String()
			if !strings.Contains(out, tt.icon) || !strings.HasSuffix(out, " "+tt.want) {
				t.Errorf("output = %q, want %s and %q", out, tt.icon, tt.want)
			}
			if strings.Contains(out, "Detecting") {
				t.Errorf("step message leaked into the status line: %q", out)
			}
		})
	}
}

func TestSpinnerSilentWithoutTerminal(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinnerTo(context.Background(), &buf, "Probing npm...")
	s.Start()
	s.Stop()

	if buf.Len() != 0 {
		t.Errorf("non-terminal spinner wrote %q", buf.String())
	}
}

func TestSpinnerSetMessage(t *testing.T) {
	s := newSpinnerTo(context.Background(), nil, "Looking for asset managers...")
	s.SetMessage("Probing %s...", "pnpm")
	if got := s.Message(); got != "Probing pnpm..." {
		t.Errorf("Message() = %q", got)
	}
}

func TestSpinnerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := newSpinnerTo(ctx, nil, "Checking npm version...")
	s.Start()

	if s.Cancelled() {
		t.Error("spinner should not start cancelled")
	}
	cancel()
	s.Stop()
	if !s.Cancelled() {
		t.Error("spinner should report the cancelled context")
	}
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := newSpinnerTo(context.Background(), nil, "Detecting asset manager...")
	s.Start()
	s.Stop()
	s.Stop()
}

func TestSpinnerStopWithoutStart(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinnerTo(context.Background(), &buf, "Detecting asset manager...")
	s.StopWithError("No usable asset manager")
	if !strings.Contains(buf.String(), "No usable asset manager") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestManagerItemsReportsProbe(t *testing.T) {
	c := newTestCLI(&fakeExecutor{}, nil)
	var stderr bytes.Buffer
	c.Stderr = &stderr

	if _, err := c.managerItems(context.Background(), t.TempDir()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stderr.String(), "No asset manager installed") {
		t.Errorf("stderr = %q", stderr.String())
	}
}
