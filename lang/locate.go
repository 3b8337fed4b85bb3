package lang

import "log/slog"

// Boundary marks the parts of an invocation found by [Locate].
type Boundary struct {
	// Block is the index of the trailing brace group.
	Block int

	// Params is the index of an arrow-style parameter group placed between
	// the call and the block, as in f(a) (x, y: T) -> { ... }, or -1.
	Params int
}

// Head returns the tokens of the call expression preceding the block and
// any arrow-style parameter list.
func (b Boundary) Head(ts Tokens) Tokens {
	if b.Params >= 0 {
		return ts[:b.Params]
	}

	return ts[:b.Block]
}

// Locate finds the trailing block of an invocation.
//
// The right-most top-level brace group is the block. Brace groups nested in
// the call arguments are never considered since groups are atomic tokens.
// Tokens following the block are rejected.
func Locate(ts Tokens) (Boundary, error) {
	b := Boundary{Block: -1, Params: -1}

	for i := len(ts) - 1; i >= 0; i-- {
		if ts[i].IsGroup(DelimBrace) {
			b.Block = i

			break
		}
	}

	if b.Block < 0 {
		return b, ErrMissingBlock.With(slog.String("input", ts.Compact()))
	}

	if rest := ts[b.Block+1:]; len(rest) > 0 {
		return b, ErrBlockParse.WithPosition(rest[0].Pos).
			WithTokens("unexpected", rest).
			With(slog.String("issue", "tokens after trailing block"))
	}

	// Arrow variant: ( params ) - > { block }
	if i := b.Block; i >= 3 &&
		ts[i-1].IsPunct(">") &&
		ts[i-2].IsPunct("-") && ts[i-2].Joint &&
		ts[i-3].IsGroup(DelimParen) {
		b.Params = i - 3
	}

	return b, nil
}
