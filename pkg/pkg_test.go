package pkg

import (
	"os"
	"slices"
	"strings"
	"testing"
)

func TestName(t *testing.T) {
	expected := "withblock"
	if Name != expected {
		t.Errorf("Expected Name to be %q, got %q", expected, Name)
	}
}

func TestDescription(t *testing.T) {
	expected := "Trailing block to closure rewriter"
	if Description != expected {
		t.Errorf("Expected Description to be %q, got %q", expected, Description)
	}
}

func TestVersion(t *testing.T) {
	// Tests run in the package directory, next to the embedded file.
	buf, err := os.ReadFile("VERSION")
	if err != nil {
		t.Fatalf("Failed to read VERSION file: %v", err)
	}

	if content := strings.TrimSpace(string(buf)); Version() != content {
		t.Errorf("Expected Version to be %q, got %q", content, Version())
	}
}

func TestAuthor(t *testing.T) {
	if len(Author) == 0 {
		t.Fatal("Expected Author to have at least one entry")
	}

	expectedName := "ardnew"
	expectedEmail := "andrew@ardnew.com"

	if !slices.ContainsFunc(Author, func(a AuthorInfo) bool {
		return a.Name == expectedName && a.Email == expectedEmail
	}) {
		t.Errorf("Expected Author to contain %q, %q", expectedName, expectedEmail)
	}
}

func TestPrefix(t *testing.T) {
	p := Prefix()
	if p == "" {
		t.Fatal("Prefix() is empty")
	}

	if strings.HasPrefix(p, ".") {
		t.Errorf("Prefix() = %q, leading dot not removed", p)
	}

	if !strings.HasSuffix(ConfigDir(), p) {
		t.Errorf("ConfigDir() = %q, want suffix %q", ConfigDir(), p)
	}

	if !strings.HasSuffix(CacheDir(), p) {
		t.Errorf("CacheDir() = %q, want suffix %q", CacheDir(), p)
	}
}
