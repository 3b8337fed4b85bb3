package repl

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestHistory_LoadMissing(t *testing.T) {
	h := NewHistory(filepath.Join(t.TempDir(), baseHistory))

	if err := h.Load(); err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if h.Len() != 0 {
		t.Errorf("Len() = %d, want 0", h.Len())
	}
}

func TestHistory_WriteAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)
	h := NewHistory(path)

	for _, line := range []string{
		"f() { a }",
		"  ",
		"g(x) {\n  |y| y\n}",
		"g(x) { |y| y }",
		"f() { a }",
	} {
		if _, err := h.Write(line); err != nil {
			t.Fatalf("Write(%q) error: %v", line, err)
		}
	}

	want := []string{"g(x) { |y| y }", "f() { a }"}
	if got := h.Entries(); strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Errorf("Entries() = %q, want %q", got, want)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if got := string(data); got != "g(x) { |y| y }\nf() { a }\n" {
		t.Errorf("file = %q", got)
	}

	r := NewHistory(path)
	if err := r.Load(); err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if r.Len() != 2 {
		t.Errorf("reloaded Len() = %d, want 2", r.Len())
	}
}

func TestHistory_GetLine(t *testing.T) {
	h := NewHistory(filepath.Join(t.TempDir(), baseHistory))
	_, _ = h.Write("first")
	_, _ = h.Write("second")

	if line, err := h.GetLine(0); err != nil || line != "first" {
		t.Errorf("GetLine(0) = %q, %v", line, err)
	}

	for _, i := range []int{-1, 2} {
		if _, err := h.GetLine(i); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("GetLine(%d) error = %v, want ErrOutOfBounds", i, err)
		}
	}
}
