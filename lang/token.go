package lang

import (
	"strconv"
	"strings"
)

// Position identifies a location in source text.
type Position struct {
	Offset int `json:"offset" yaml:"offset"` // byte offset, 0-based
	Line   int `json:"line"   yaml:"line"`   // 1-based
	Column int `json:"column" yaml:"column"` // 1-based, in runes
}

// String returns the position formatted as "line:column".
func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// Kind classifies a [Token].
type Kind int

const (
	// KindIdent is an identifier or keyword.
	KindIdent Kind = iota

	// KindLifetime is a lifetime or loop label such as 'a.
	KindLifetime

	// KindLiteral is a number, string, byte string, or character literal.
	KindLiteral

	// KindPunct is a single punctuation character.
	KindPunct

	// KindGroup is a delimited group of tokens.
	KindGroup

	// kindEOF marks the position past the last token of a sequence.
	kindEOF Kind = -1
)

// String returns a string representation of the token kind.
func (k Kind) String() string {
	switch k {
	case KindIdent:
		return "Ident"

	case KindLifetime:
		return "Lifetime"

	case KindLiteral:
		return "Literal"

	case KindPunct:
		return "Punct"

	case KindGroup:
		return "Group"

	default:
		return "Unknown"
	}
}

// Delimiter identifies the brackets enclosing a group.
type Delimiter int

const (
	DelimNone    Delimiter = iota // not a group
	DelimParen                    // ( ... )
	DelimBracket                  // [ ... ]
	DelimBrace                    // { ... }
)

// Open returns the opening character of the delimiter.
func (d Delimiter) Open() string {
	switch d {
	case DelimParen:
		return "("
	case DelimBracket:
		return "["
	case DelimBrace:
		return "{"
	default:
		return ""
	}
}

// Close returns the closing character of the delimiter.
func (d Delimiter) Close() string {
	switch d {
	case DelimParen:
		return ")"
	case DelimBracket:
		return "]"
	case DelimBrace:
		return "}"
	default:
		return ""
	}
}

// Token is an atomic lexical unit. Groups hold their children in Tokens.
//
// Lead holds the whitespace and comments that preceded the token in the
// source, and Trail holds those preceding a group's closing delimiter, so
// that rendering a token sequence reproduces the original text exactly.
type Token struct {
	Kind   Kind
	Text   string    // identifier, lifetime, literal, or punct text
	Delim  Delimiter // group delimiter
	Tokens Tokens    // group children
	Joint  bool      // punct immediately followed by another punct
	Lead   string
	Trail  string
	Pos    Position
	End    Position // position just past the token
}

// IsPunct reports whether t is the punctuation character ch.
func (t Token) IsPunct(ch string) bool {
	return t.Kind == KindPunct && t.Text == ch
}

// IsIdent reports whether t is the identifier (or keyword) name.
func (t Token) IsIdent(name string) bool {
	return t.Kind == KindIdent && t.Text == name
}

// IsGroup reports whether t is a group with delimiter d.
func (t Token) IsGroup(d Delimiter) bool {
	return t.Kind == KindGroup && t.Delim == d
}

// WithLead returns a copy of t with its leading trivia replaced.
func (t Token) WithLead(lead string) Token {
	t.Lead = lead

	return t
}

// Tokens is an ordered token sequence.
type Tokens []Token

// String renders the sequence exactly as it appeared in the source,
// including interior whitespace and comments. The leading trivia of the
// first token is omitted.
func (ts Tokens) String() string {
	var sb strings.Builder

	for i, t := range ts {
		t.write(&sb, i > 0, false)
	}

	return sb.String()
}

// Source renders the sequence including the leading trivia of the first
// token.
func (ts Tokens) Source() string {
	var sb strings.Builder

	for _, t := range ts {
		t.write(&sb, true, false)
	}

	return sb.String()
}

// Compact renders the sequence on a single line with trivia collapsed to
// single spaces. It is used for trace output and error attributes.
func (ts Tokens) Compact() string {
	var sb strings.Builder

	for i, t := range ts {
		t.write(&sb, i > 0, true)
	}

	return sb.String()
}

// String renders the token without its leading trivia.
func (t Token) String() string {
	var sb strings.Builder

	t.write(&sb, false, false)

	return sb.String()
}

func (t Token) write(sb *strings.Builder, lead, compact bool) {
	if lead {
		switch {
		case !compact:
			sb.WriteString(t.Lead)
		case t.Lead != "":
			sb.WriteByte(' ')
		}
	}

	if t.Kind != KindGroup {
		sb.WriteString(t.Text)

		return
	}

	sb.WriteString(t.Delim.Open())

	for _, c := range t.Tokens {
		c.write(sb, true, compact)
	}

	switch {
	case !compact:
		sb.WriteString(t.Trail)
	case t.Trail != "" && len(t.Tokens) > 0:
		sb.WriteByte(' ')
	}

	sb.WriteString(t.Delim.Close())
}

// Split divides ts at every top-level punct sep. Groups are atomic, so
// separators nested in groups never split. A trailing separator does not
// produce an empty final element.
func (ts Tokens) Split(sep string) []Tokens {
	if len(ts) == 0 {
		return nil
	}

	var (
		parts []Tokens
		start int
	)

	for i, t := range ts {
		if t.IsPunct(sep) {
			parts = append(parts, ts[start:i])
			start = i + 1
		}
	}

	if start < len(ts) {
		parts = append(parts, ts[start:])
	}

	return parts
}

// Group constructs a group token around children.
func Group(d Delimiter, lead string, children Tokens) Token {
	return Token{
		Kind:   KindGroup,
		Delim:  d,
		Tokens: children,
		Lead:   lead,
	}
}

// Punct constructs a punctuation token.
func Punct(ch, lead string, joint bool) Token {
	return Token{
		Kind:  KindPunct,
		Text:  ch,
		Joint: joint,
		Lead:  lead,
	}
}

// Ident constructs an identifier token.
func Ident(name, lead string) Token {
	return Token{
		Kind: KindIdent,
		Text: name,
		Lead: lead,
	}
}
