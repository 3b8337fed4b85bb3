package repl

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"
)

// newEditCommand returns an editCommand whose editor leaves the file
// unchanged.
func newEditCommand(t *testing.T, seed, stdin string) (*editCommand, *bytes.Buffer) {
	t.Helper()

	if _, err := exec.LookPath("true"); err != nil {
		t.Skip("true not available")
	}

	t.Setenv("EDITOR", "true")

	var out bytes.Buffer

	return &editCommand{
		seed:    seed,
		ctxFunc: context.Background,
		stdin:   strings.NewReader(stdin),
		stdout:  &out,
		stderr:  &out,
	}, &out
}

func TestEditCommand_Rewrites(t *testing.T) {
	c, _ := newEditCommand(t, "run(a) {\n    |x| x\n}\n", "")

	if err := c.Run(); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if c.result == nil {
		t.Fatal("no result")
	}

	got := c.result.String()
	if !strings.HasPrefix(got, "run(a, |x| {") || !strings.HasSuffix(got, "})") {
		t.Errorf("result = %q", got)
	}
}

func TestEditCommand_EmptyCancels(t *testing.T) {
	c, _ := newEditCommand(t, "  \n", "")

	if err := c.Run(); err != nil || c.result != nil {
		t.Errorf("Run = %v, result = %v", err, c.result)
	}
}

func TestEditCommand_Declined(t *testing.T) {
	c, out := newEditCommand(t, "run(a)", "n\n")

	if err := c.Run(); !errors.Is(err, ErrEditDeclined) {
		t.Errorf("Run error = %v, want ErrEditDeclined", err)
	}

	if !strings.Contains(out.String(), "Rewrite error") {
		t.Errorf("output = %q", out.String())
	}
}
