package lang

import "log/slog"

// ParamStyle records how a parameter list was written.
type ParamStyle int

const (
	PipeParams  ParamStyle = iota // { |a, b: T| ... }
	ArrowParams                   // f() (a, b: T) -> { ... }
)

// String returns a string representation of the parameter style.
func (s ParamStyle) String() string {
	switch s {
	case PipeParams:
		return "Pipe"
	case ArrowParams:
		return "Arrow"
	default:
		return "Unknown"
	}
}

// Param is one closure parameter. Type is empty when the parameter is
// untyped.
type Param struct {
	Pattern Tokens
	Type    Tokens
}

// Typed reports whether the parameter carries a type annotation.
func (p Param) Typed() bool { return len(p.Type) > 0 }

// Params is a closure parameter list.
type Params struct {
	Style ParamStyle
	List  []Param

	// Source holds the tokens between the delimiters exactly as written.
	Source Tokens
}

// Literal renders the list as a pipe-delimited closure parameter clause.
func (p *Params) Literal() string {
	if p == nil || len(p.Source) == 0 {
		return "||"
	}

	return "|" + p.Source.String() + "|"
}

// Typed reports the number of typed parameters.
func (p *Params) Typed() int {
	if p == nil {
		return 0
	}

	n := 0

	for _, q := range p.List {
		if q.Typed() {
			n++
		}
	}

	return n
}

// Block is a parsed trailing block.
type Block struct {
	// Params is the parameter list found at the start of the block, or nil.
	Params *Params

	Stmts []Stmt

	// Group is the original brace group.
	Group Token

	// Body holds the block children after any parameter list.
	Body Tokens
}

// Closure returns the closure body: the original brace group with any
// parameter list removed.
func (b *Block) Closure() Token {
	g := b.Group
	g.Tokens = b.Body

	return g
}

// ParseBlock parses a brace group as a closure body.
//
// A leading '|' opens a parameter list closed by the next top-level '|';
// a joint "||" is an explicit empty list. The remaining tokens are split
// into statements.
func ParseBlock(g Token) (*Block, error) {
	if !g.IsGroup(DelimBrace) {
		return nil, ErrMissingBlock.WithPosition(g.Pos).
			With(slog.String("found", describe(g)))
	}

	b := &Block{Group: g, Body: g.Tokens}

	children := g.Tokens
	if len(children) == 0 {
		return b, nil
	}

	if !children[0].IsPunct("|") {
		stmts, err := ParseStmts(children)
		if err != nil {
			return nil, ErrBlockParse.WithPosition(g.Pos).Wrap(err)
		}

		b.Stmts = stmts

		return b, nil
	}

	closeAt := 1
	if !(children[0].Joint && len(children) > 1 && children[1].IsPunct("|")) {
		for closeAt < len(children) && !children[closeAt].IsPunct("|") {
			closeAt++
		}

		if closeAt == len(children) {
			return nil, ErrParamFragment.WithPosition(children[0].Pos).
				WithTokens("fragment", children).
				With(slog.String("issue", "unclosed parameter list"))
		}
	}

	params, err := ParseParams(children[1:closeAt], PipeParams)
	if err != nil {
		return nil, err
	}

	b.Params = params
	b.Body = children[closeAt+1:]

	stmts, err := ParseStmts(b.Body)
	if err != nil {
		pos := g.End
		if len(b.Body) > 0 {
			pos = b.Body[0].Pos
		}

		return nil, ErrTrailingCode.WithPosition(pos).
			WithTokens("code", b.Body).
			Wrap(err)
	}

	b.Stmts = stmts

	return b, nil
}

// ParseParams parses the tokens of a parameter list, excluding its
// delimiters: comma-separated patterns with optional ": Type".
func ParseParams(ts Tokens, style ParamStyle) (*Params, error) {
	params := &Params{Style: style, Source: ts}

	p := newParser(ts, endOf(ts))

	_, err := p.list("parameter", func() error {
		start := p.pos

		if err := p.pattern(false); err != nil {
			return err
		}

		param := Param{Pattern: ts[start:p.pos]}

		if p.eatSingle(":") {
			typeStart := p.pos

			if err := p.typ(true); err != nil {
				return err
			}

			param.Type = ts[typeStart:p.pos]
		}

		params.List = append(params.List, param)

		return nil
	})
	if err != nil {
		pos := endOf(ts)
		if len(ts) > 0 {
			pos = ts[0].Pos
		}

		return nil, ErrParamFragment.WithPosition(pos).
			WithTokens("fragment", ts).
			With(slog.String("style", style.String())).
			Wrap(err)
	}

	return params, nil
}
