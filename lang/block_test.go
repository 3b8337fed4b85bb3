package lang

import (
	"errors"
	"testing"
)

func mustGroup(t *testing.T, src string) Token {
	t.Helper()

	ts := mustLex(t, src)
	if len(ts) != 1 || ts[0].Kind != KindGroup {
		t.Fatalf("%q is not a single group", src)
	}

	return ts[0]
}

func TestParseBlock(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		literal string // "" when no parameter list is expected
		params  []Param
		stmts   int
	}{
		{
			name:    "typed params",
			input:   "{ |x, y: u32| x + y }",
			literal: "|x, y: u32|",
			params: []Param{
				{Pattern: Tokens{Ident("x", "")}},
				{Pattern: Tokens{Ident("y", " ")}, Type: Tokens{Ident("u32", " ")}},
			},
			stmts: 1,
		},
		{
			name:    "explicit empty params",
			input:   "{ || run() }",
			literal: "||",
			stmts:   1,
		},
		{
			name:    "spaced empty params",
			input:   "{ | | run(); }",
			literal: "||",
			stmts:   1,
		},
		{
			name:    "pattern params",
			input:   "{ |(a, b), &c, mut d: Vec<u8>,| a }",
			literal: "|(a, b), &c, mut d: Vec<u8>,|",
			stmts:   1,
		},
		{name: "empty block", input: "{ }"},
		{name: "no params", input: "{ a; b }", stmts: 2},
		{name: "pipe in string", input: `{ let s = "a|b"; s }`, stmts: 2},
		{name: "pipe in later statement", input: "{ x | y }", stmts: 1},
		{name: "closure statement", input: "{ let f = |x| x; f }", stmts: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := ParseBlock(mustGroup(t, tt.input))
			if err != nil {
				t.Fatalf("ParseBlock(%q) error: %v", tt.input, err)
			}

			if tt.literal == "" {
				if b.Params != nil {
					t.Errorf("Params = %q, want none", b.Params.Literal())
				}
			} else {
				if b.Params == nil {
					t.Fatalf("Params = nil, want %q", tt.literal)
				}

				if got := b.Params.Literal(); got != tt.literal {
					t.Errorf("Literal() = %q, want %q", got, tt.literal)
				}
			}

			if len(b.Stmts) != tt.stmts {
				t.Errorf("got %d statements, want %d", len(b.Stmts), tt.stmts)
			}

			for i, want := range tt.params {
				got := b.Params.List[i]
				if got.Pattern.String() != want.Pattern.String() ||
					got.Type.String() != want.Type.String() {
					t.Errorf("param %d = %q: %q, want %q: %q", i,
						got.Pattern.String(), got.Type.String(),
						want.Pattern.String(), want.Type.String())
				}
			}
		})
	}
}

func TestParseBlock_Body(t *testing.T) {
	b, err := ParseBlock(mustGroup(t, "{ |x| first(x);\n    second() }"))
	if err != nil {
		t.Fatalf("ParseBlock error: %v", err)
	}

	if got, want := b.Closure().String(), "{ first(x);\n    second() }"; got != want {
		t.Errorf("Closure() = %q, want %q", got, want)
	}

	if got := b.Stmts[0].Tokens.String(); got != "first(x);" {
		t.Errorf("first statement = %q, want %q", got, "first(x);")
	}
}

func TestParseBlock_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"unclosed params", "{ |x }", ErrParamFragment},
		{"invalid params", "{ |x y| z }", ErrParamFragment},
		{"invalid param type", "{ |x: | z }", ErrParamFragment},
		{"trailing code", "{ |x| let }", ErrTrailingCode},
		{"trailing code after params", "{ |x| x x }", ErrTrailingCode},
		{"invalid statements", "{ a b }", ErrBlockParse},
		{"not a brace group", "(a)", ErrMissingBlock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBlock(mustGroup(t, tt.input))
			if !errors.Is(err, tt.want) {
				t.Errorf("ParseBlock(%q) error = %v, want %v", tt.input, err, tt.want)
			}

			if tt.want != ErrMissingBlock && !errors.Is(err, ErrSyntax) &&
				tt.name != "unclosed params" {
				t.Errorf("ParseBlock(%q) error = %v, want wrapped ErrSyntax", tt.input, err)
			}
		})
	}
}

func TestParseParams_Arrow(t *testing.T) {
	g := mustGroup(t, "(item, idx: usize)")

	p, err := ParseParams(g.Tokens, ArrowParams)
	if err != nil {
		t.Fatalf("ParseParams error: %v", err)
	}

	if p.Style != ArrowParams || len(p.List) != 2 || p.Typed() != 1 {
		t.Errorf("params = %+v, want 2 arrow params with 1 typed", p)
	}

	if got, want := p.Literal(), "|item, idx: usize|"; got != want {
		t.Errorf("Literal() = %q, want %q", got, want)
	}
}
