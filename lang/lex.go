package lang

import (
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Lex splits src into token trees.
//
// The returned trail holds the whitespace and comments following the last
// token, so that ts.Source() + trail reproduces src exactly.
func Lex(src string) (ts Tokens, trail string, err error) {
	l := &lexer{
		input: src,
		line:  1,
		col:   1,
	}

	return l.lexGroup(DelimNone, l.position())
}

// lexer holds the lexer state.
type lexer struct {
	input string
	pos   int
	line  int
	col   int
}

// lexGroup lexes tokens until the closing delimiter of d (or EOF when d is
// DelimNone). open is the position of the opening delimiter.
func (l *lexer) lexGroup(d Delimiter, open Position) (Tokens, string, error) {
	var ts Tokens

	for {
		lead, err := l.skipTrivia()
		if err != nil {
			return nil, "", err
		}

		if l.eof() {
			if d != DelimNone {
				return nil, "", ErrLex.WithPosition(open).
					With(slog.String("expected", d.Close())).
					With(slog.String("issue", "unclosed delimiter"))
			}

			return ts, lead, nil
		}

		pos := l.position()
		ch := l.peek()

		switch ch {
		case ')', ']', '}':
			if closing(d) != ch {
				return nil, "", ErrLex.WithPosition(pos).
					With(slog.String("found", string(ch))).
					With(slog.String("expected", expectedClose(d))).
					With(slog.String("issue", "mismatched delimiter"))
			}

			l.advance()

			return ts, lead, nil

		case '(', '[', '{':
			inner := delimiterOf(ch)

			l.advance()

			children, trail, err := l.lexGroup(inner, pos)
			if err != nil {
				return nil, "", err
			}

			ts = append(ts, Token{
				Kind:   KindGroup,
				Delim:  inner,
				Tokens: children,
				Lead:   lead,
				Trail:  trail,
				Pos:    pos,
				End:    l.position(),
			})

			continue
		}

		tok, err := l.lexAtom()
		if err != nil {
			return nil, "", err
		}

		tok.Lead = lead
		tok.Pos = pos
		tok.End = l.position()
		ts = append(ts, tok)
	}
}

// lexAtom lexes a single non-group token at the current position.
func (l *lexer) lexAtom() (Token, error) {
	start := l.pos
	ch := l.peek()

	switch {
	case ch == '"':
		if err := l.skipString('"'); err != nil {
			return Token{}, err
		}

		l.skipSuffix()

		return Token{Kind: KindLiteral, Text: l.input[start:l.pos]}, nil

	case ch == '\'':
		return l.lexQuote()

	case ch == 'r' && l.isRawStringStart(1):
		return l.lexRawString(start, 1)

	case (ch == 'b' || ch == 'c') && l.peekN(2) == string(ch)+"\"":
		l.advance()

		if err := l.skipString('"'); err != nil {
			return Token{}, err
		}

		return Token{Kind: KindLiteral, Text: l.input[start:l.pos]}, nil

	case ch == 'b' && l.peekN(2) == "b'":
		return l.lexQuote()

	case (ch == 'b' || ch == 'c') && l.peekN(2) == string(ch)+"r" &&
		l.isRawStringStart(2):
		return l.lexRawString(start, 2)

	case ch == 'r' && l.peekN(2) == "r#" && l.pos+2 < len(l.input) &&
		isIdentifierStart(l.runeAt(l.pos+2)):
		// Raw identifier r#name.
		l.advance()
		l.advance()

		l.skipIdentifier()

		return Token{Kind: KindIdent, Text: l.input[start:l.pos]}, nil

	case isIdentifierStart(ch):
		l.skipIdentifier()

		return Token{Kind: KindIdent, Text: l.input[start:l.pos]}, nil

	case ch >= '0' && ch <= '9':
		l.skipNumber()

		return Token{Kind: KindLiteral, Text: l.input[start:l.pos]}, nil

	case isPunct(ch):
		l.advance()

		return Token{
			Kind:  KindPunct,
			Text:  l.input[start:l.pos],
			Joint: !l.eof() && isPunct(l.peek()),
		}, nil

	default:
		return Token{}, ErrLex.WithPosition(l.position()).
			With(slog.String("found", string(ch))).
			With(slog.String("issue", "unexpected character"))
	}
}

// lexQuote lexes a character literal, byte literal, or lifetime starting
// at a single quote.
func (l *lexer) lexQuote() (Token, error) {
	start := l.pos
	if l.peek() == 'b' {
		l.advance()
	}

	pos := l.position()

	l.advance() // skip '\''

	if l.eof() {
		return Token{}, ErrLex.WithPosition(pos).
			With(slog.String("issue", "unterminated character literal"))
	}

	ch := l.peek()

	// A lifetime is a quote followed by an identifier that is not closed
	// by a second quote one rune later ('a' is a character literal).
	if ch != '\\' && isIdentifierStart(ch) {
		_, size := utf8.DecodeRuneInString(l.input[l.pos:])
		if l.pos+size >= len(l.input) || l.input[l.pos+size] != '\'' {
			l.skipIdentifier()

			return Token{Kind: KindLifetime, Text: l.input[start:l.pos]}, nil
		}
	}

	for !l.eof() {
		ch := l.peek()

		switch ch {
		case '\\':
			l.advance()

			if !l.eof() {
				l.advance()
			}

		case '\'':
			l.advance()
			l.skipSuffix()

			return Token{Kind: KindLiteral, Text: l.input[start:l.pos]}, nil

		case '\n':
			return Token{}, ErrLex.WithPosition(pos).
				With(slog.String("issue", "unterminated character literal"))

		default:
			l.advance()
		}
	}

	return Token{}, ErrLex.WithPosition(pos).
		With(slog.String("issue", "unterminated character literal"))
}

// isRawStringStart reports whether the input at offset n from the current
// position opens a raw string: r"..." or r#"..."#.
func (l *lexer) isRawStringStart(n int) bool {
	i := l.pos + n
	if i >= len(l.input) || l.input[i-1] != 'r' {
		return false
	}

	for i < len(l.input) && l.input[i] == '#' {
		i++
	}

	return i < len(l.input) && l.input[i] == '"'
}

// lexRawString lexes a raw string whose 'r' prefix ends at offset n.
func (l *lexer) lexRawString(start, n int) (Token, error) {
	pos := l.position()

	for range n {
		l.advance()
	}

	hashes := 0
	for l.peek() == '#' {
		hashes++

		l.advance()
	}

	l.advance() // skip '"'

	closer := "\"" + strings.Repeat("#", hashes)

	for !l.eof() {
		if l.peek() == '"' && l.peekN(len(closer)) == closer {
			for range len(closer) {
				l.advance()
			}

			return Token{Kind: KindLiteral, Text: l.input[start:l.pos]}, nil
		}

		l.advance()
	}

	return Token{}, ErrLex.WithPosition(pos).
		With(slog.String("issue", "unterminated raw string"))
}

func (l *lexer) skipIdentifier() {
	l.advance()

	for !l.eof() && isIdentifierContinue(l.peek()) {
		l.advance()
	}
}

// skipNumber consumes an integer or float literal including its suffix.
// A '.' followed by a digit continues the number. A bare trailing '.', as
// in "1.", ends it, unless a second '.' (0..n) or an identifier (1.max(2))
// follows, which are left to the punctuation lexer.
func (l *lexer) skipNumber() {
	hex := strings.HasPrefix(l.input[l.pos:], "0x") ||
		strings.HasPrefix(l.input[l.pos:], "0X")
	dot := false

	for !l.eof() {
		ch := l.peek()

		switch {
		case ch == '_' || unicode.IsLetter(ch) || unicode.IsDigit(ch):
			prev := ch

			l.advance()

			if !hex && (prev == 'e' || prev == 'E') &&
				(l.peek() == '+' || l.peek() == '-') {
				l.advance()
			}

		case ch == '.' && !dot && !hex:
			dot = true

			if l.pos+1 >= len(l.input) {
				l.advance()

				return
			}

			next := l.runeAt(l.pos + 1)

			switch {
			case next >= '0' && next <= '9':
				l.advance()

			case next == '.' || isIdentifierStart(next):
				return

			default:
				// "1." is a complete float literal.
				l.advance()

				return
			}

		default:
			return
		}
	}
}

// skipSuffix consumes an optional literal suffix such as "u8" or "_f32".
func (l *lexer) skipSuffix() {
	if !l.eof() && isIdentifierStart(l.peek()) {
		l.skipIdentifier()
	}
}

// skipTrivia consumes whitespace and comments and returns them verbatim.
func (l *lexer) skipTrivia() (string, error) {
	start := l.pos

	for !l.eof() {
		ch := l.peek()

		switch {
		case unicode.IsSpace(ch):
			l.advance()

		case ch == '/' && l.peekN(2) == "//":
			l.skipLineComment()

		case ch == '/' && l.peekN(2) == "/*":
			if err := l.skipBlockComment(); err != nil {
				return "", err
			}

		default:
			return l.input[start:l.pos], nil
		}
	}

	return l.input[start:l.pos], nil
}

// Helper methods

func (l *lexer) peek() rune {
	if l.eof() {
		return 0
	}

	r, _ := utf8.DecodeRuneInString(l.input[l.pos:])

	return r
}

func (l *lexer) peekN(n int) string {
	if l.pos+n > len(l.input) {
		return l.input[l.pos:]
	}

	return l.input[l.pos : l.pos+n]
}

func (l *lexer) runeAt(offset int) rune {
	r, _ := utf8.DecodeRuneInString(l.input[offset:])

	return r
}

func (l *lexer) advance() {
	if l.eof() {
		return
	}

	r, size := utf8.DecodeRuneInString(l.input[l.pos:])

	l.pos += size
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
}

func (l *lexer) eof() bool {
	return l.pos >= len(l.input)
}

func (l *lexer) position() Position {
	return Position{
		Offset: l.pos,
		Line:   l.line,
		Column: l.col,
	}
}

func (l *lexer) skipLineComment() {
	for !l.eof() && l.peek() != '\n' {
		l.advance()
	}
}

// skipBlockComment consumes a block comment. Block comments nest.
func (l *lexer) skipBlockComment() error {
	pos := l.position()
	depth := 0

	for !l.eof() {
		switch l.peekN(2) {
		case "/*":
			depth++

			l.advance()
			l.advance()

		case "*/":
			depth--

			l.advance()
			l.advance()

			if depth == 0 {
				return nil
			}

		default:
			l.advance()
		}
	}

	return ErrLex.WithPosition(pos).
		With(slog.String("issue", "unterminated block comment"))
}

func (l *lexer) skipString(quote rune) error {
	pos := l.position()

	l.advance() // skip opening quote

	for !l.eof() {
		ch := l.peek()
		if ch == '\\' {
			l.advance() // skip backslash

			if !l.eof() {
				l.advance() // skip escaped char
			}

			continue
		}

		if ch == quote {
			l.advance() // skip closing quote

			return nil
		}

		l.advance()
	}

	return ErrLex.WithPosition(pos).
		With(slog.String("issue", "unterminated string"))
}

// Character classification

func isIdentifierStart(r rune) bool {
	return unicode.In(r,
		unicode.L,  // Letter
		unicode.Nl, // Letter, Number
		unicode.Other_ID_Start,
	) || r == '_'
}

func isIdentifierContinue(r rune) bool {
	return unicode.In(r,
		unicode.L,  // Letter
		unicode.Nl, // Letter, Number
		unicode.Other_ID_Start,
		unicode.Mn, // Mark, Nonspacing
		unicode.Mc, // Mark, Spacing Combining
		unicode.Nd, // Number, Decimal Digit
		unicode.Pc, // Punctuation, Connector
		unicode.Other_ID_Continue,
	)
}

func isPunct(r rune) bool {
	return strings.ContainsRune("~!@#$%^&*-+=|\\:;,.<>/?", r)
}

func delimiterOf(open rune) Delimiter {
	switch open {
	case '(':
		return DelimParen
	case '[':
		return DelimBracket
	default:
		return DelimBrace
	}
}

func closing(d Delimiter) rune {
	switch d {
	case DelimParen:
		return ')'
	case DelimBracket:
		return ']'
	case DelimBrace:
		return '}'
	default:
		return 0
	}
}

func expectedClose(d Delimiter) string {
	if d == DelimNone {
		return "end of input"
	}

	return d.Close()
}
