package repl

import (
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/withblock/lang"
)

func TestWordBounds_RustTokens(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		cursor    int
		wantWord  string
		wantStart int
		wantEnd   int
	}{
		{"simple", "foo", 3, "foo", 0, 3},
		{"method", "pool.spa", 8, "spa", 5, 8},
		{"after_paren", "spawn(po", 8, "po", 6, 8},
		{"after_comma", "run(a, po", 9, "po", 7, 9},
		{"after_bang", "with_block!(fo", 14, "fo", 12, 14},
		{"in_block", "{ |x| fo", 8, "fo", 6, 8},
		{"empty_at_boundary", "a + ", 4, "", 4, 4},
		{"mid_word", "foobar", 3, "foobar", 0, 6},
		{"at_start", "foo", 0, "foo", 0, 3},
		{"cursor_past_end", "foo", 10, "foo", 0, 3},
		// Path separators keep a path as one word.
		{"path", "thread::spa", 11, "thread::spa", 0, 11},
		{"path_after_paren", "f(std::thr", 10, "std::thr", 2, 10},
		{"empty_after_dot", "pool.", 5, "", 5, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			word, start, end := wordBounds(tt.input, tt.cursor)
			if word != tt.wantWord || start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("wordBounds(%q, %d) = (%q, %d, %d), want (%q, %d, %d)",
					tt.input, tt.cursor, word, start, end,
					tt.wantWord, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestIsPath(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"spawn", true},
		{"thread::spawn", true},
		{"with_block", true},
		{"", false},
		{"a.b", false},
		{"f(x)", false},
	}

	for _, tt := range tests {
		if got := isPath(tt.input); got != tt.want {
			t.Errorf("isPath(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNames_Add(t *testing.T) {
	var n names

	for _, src := range []string{
		"thread::spawn() { work(); }",
		"pool.install() { work(); }",
		"thread::spawn(x) { more(); }",
		"make()(x) { work(); }",
	} {
		e, err := lang.RewriteString(context.Background(), src)
		if err != nil {
			t.Fatalf("RewriteString(%q): %v", src, err)
		}

		n.add(e)
	}

	want := "thread::spawn,install"
	if got := strings.Join(n.list, ","); got != want {
		t.Errorf("names = %s, want %s", got, want)
	}
}

func TestComputeMatches(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		names   []string
		want    []string
		wantEnd int
	}{
		{"command", ":tr", nil, []string{":trace"}, 3},
		{"complete_command", ":quit", nil, nil, 5},
		{"names", "sp", []string{"spawn", "install", "scope"}, []string{"spawn", "scope"}, 2},
		{"exact_only_candidate", "spawn", []string{"spawn"}, nil, 5},
		{"no_names", "sp", nil, nil, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := model{input: textinput.New()}
			m.input.SetValue(tt.input)
			m.input.SetCursor(len(tt.input))

			m.names.list = tt.names

			matches, _, end := m.computeMatches()

			var got []string
			for _, match := range matches {
				got = append(got, match.Str)
			}

			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("matches = %v, want %v", got, tt.want)
			}

			if end != tt.wantEnd {
				t.Errorf("end = %d, want %d", end, tt.wantEnd)
			}
		})
	}
}

func TestRenderCandidateBar(t *testing.T) {
	matches := fuzzy.Find("s", []string{"spawn", "scope", "sync"})

	if got := renderCandidateBar(nil, 0, false, 80); got != "" {
		t.Errorf("empty matches rendered %q", got)
	}

	if got := renderCandidateBar(matches, 0, false, 0); got != "" {
		t.Errorf("zero width rendered %q", got)
	}

	bar := renderCandidateBar(matches, 1, true, 80)
	for _, want := range []string{"pawn", "cope", "ync"} {
		if !strings.Contains(bar, want) {
			t.Errorf("bar %q missing %q", bar, want)
		}
	}

	if narrow := renderCandidateBar(matches, 0, false, 8); !strings.Contains(narrow, "...") {
		t.Errorf("narrow bar %q not ellipsized", narrow)
	}
}
