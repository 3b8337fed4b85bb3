package repl

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/withblock/lang"
)

// commands are the available REPL commands. Each is typed with a leading
// ':' and may be abbreviated to its first letter.
var commands = []string{":help", ":trace", ":edit", ":clear", ":quit"}

// isWordBoundary returns true if the rune is a word delimiter for completion
// purposes. Colons are not boundaries so that paths such as thread::spawn
// complete as one word.
func isWordBoundary(r rune) bool {
	if unicode.IsSpace(r) {
		return true
	}

	switch r {
	case '.', '(', ')', '[', ']', '{', '}',
		'+', '-', '*', '/', '%',
		'<', '>', '=', '!', '&', '|', '^',
		',', ';', '?', '#', '@', '"', '\'':
		return true
	}

	return false
}

// wordBounds returns the current word at the cursor position and its byte
// boundaries within input.
// Returns an empty word when the cursor sits on a boundary.
func wordBounds(input string, cursor int) (word string, start, end int) {
	if cursor > len(input) {
		cursor = len(input)
	}

	// Walk backward from cursor to find word start.
	start = cursor

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	// Walk forward from cursor to find word end.
	end = cursor

	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// names is the set of callee and method names seen in successful
// rewrites, in first-seen order.
type names struct {
	list []string
	seen map[string]bool
}

// add records the names used by e.
func (n *names) add(e *lang.Expansion) {
	var name string

	switch e.Call.Kind {
	case lang.PlainCall:
		name = e.Call.Callee.Compact()

	case lang.MethodCall:
		name = e.Call.Method.Text
	}

	if !isPath(name) || n.seen[name] {
		return
	}

	if n.seen == nil {
		n.seen = make(map[string]bool)
	}

	n.seen[name] = true
	n.list = append(n.list, name)
}

// isPath reports whether s is a plain identifier path like a::b::c.
func isPath(s string) bool {
	if s == "" {
		return false
	}

	for _, r := range s {
		if r != ':' && r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}

	return true
}

// computeMatches calculates the fuzzy match results for the word at the
// cursor. Input starting with ':' completes commands. It returns the
// matches (ranked best-first) and the word boundaries.
func (m model) computeMatches() (matches fuzzy.Matches, wordStart, wordEnd int) {
	input := m.input.Value()

	if strings.HasPrefix(input, ":") {
		word := strings.TrimSpace(input)
		if strings.ContainsAny(word, " \t") || slices.Contains(commands, word) {
			return nil, 0, len(input)
		}

		return fuzzy.Find(word, commands), 0, len(input)
	}

	word, ws, we := wordBounds(input, m.input.Position())
	if word == "" || len(m.names.list) == 0 {
		return nil, ws, we
	}

	matches = fuzzy.Find(word, m.names.list)

	// A word that already equals its only candidate needs no bar.
	if len(matches) == 1 && matches[0].Str == word {
		return nil, ws, we
	}

	return matches, ws, we
}

// renderCandidateBar builds the single-line completion bar, ellipsized to fit
// within the given terminal width. Each candidate is rendered with its matched
// characters highlighted. The selected candidate (when tabbing) uses the
// selected style.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	sepWidth := lipgloss.Width(sep)
	ellipsis := hintStyle.Render("...")
	ellipsisWidth := lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		rendered := renderCandidate(match, tabActive && i == suggIdx)

		entryWidth := lipgloss.Width(rendered)
		if i > 0 {
			entryWidth += sepWidth
		}

		// Check if adding this candidate would exceed width.
		if used+entryWidth+ellipsisWidth > width && i > 0 {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += entryWidth
	}

	return b.String()
}

// renderCandidate renders a single candidate with matched characters
// highlighted.
func renderCandidate(match fuzzy.Match, selected bool) string {
	base, highlight := suggestionStyle, matchStyle
	if selected {
		base, highlight = selectedStyle, selectedMatchStyle
	}

	matched := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		matched[idx] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		if matched[i] {
			b.WriteString(highlight.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}

	return b.String()
}
