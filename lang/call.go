package lang

import "log/slog"

// CallKind distinguishes the supported call shapes.
type CallKind int

const (
	PlainCall  CallKind = iota // callee(args)
	MethodCall                 // receiver.method(args)
)

// String returns a string representation of the call kind.
func (k CallKind) String() string {
	switch k {
	case PlainCall:
		return "PlainCall"
	case MethodCall:
		return "MethodCall"
	default:
		return "Unknown"
	}
}

// Call is a parsed call head.
type Call struct {
	Kind CallKind

	// Callee is the function expression of a plain call.
	Callee Tokens

	// Receiver, Method, and Generics describe a method call. Generics holds
	// the turbofish tokens ::<...> when present.
	Receiver Tokens
	Method   Token
	Generics Tokens

	// Args holds each argument in order, excluding separating commas.
	Args []Tokens

	// Group is the original argument group.
	Group Token

	dot Token
}

// TrailingComma reports whether the argument list ends with a comma.
func (c *Call) TrailingComma() bool {
	n := len(c.Group.Tokens)

	return n > 0 && c.Group.Tokens[n-1].IsPunct(",")
}

// Head returns the tokens preceding the argument group.
func (c *Call) Head() Tokens {
	if c.Kind == PlainCall {
		return c.Callee
	}

	head := make(Tokens, 0, len(c.Receiver)+len(c.Generics)+2)
	head = append(head, c.Receiver...)
	head = append(head, c.dot, c.Method)

	return append(head, c.Generics...)
}

// ParseCall parses ts as a plain or method call expression. The whole
// sequence must be consumed; any other shape is [ErrUnsupportedCall].
func ParseCall(ts Tokens) (*Call, error) {
	unsupported := func(issue string, cause error) error {
		err := ErrUnsupportedCall.WithTokens("head", ts).
			With(slog.String("issue", issue))
		if len(ts) > 0 {
			err = err.WithPosition(ts[0].Pos)
		}

		if cause != nil {
			err = err.Wrap(cause)
		}

		return err
	}

	n := len(ts)
	if n < 2 || !ts[n-1].IsGroup(DelimParen) {
		return nil, unsupported("expected callee followed by argument list", nil)
	}

	c := &Call{Group: ts[n-1]}

	p := newParser(c.Group.Tokens, c.Group.End)

	args, err := p.list("argument", func() error { return p.expr(0) })
	if err != nil {
		return nil, unsupported("invalid argument", err)
	}

	c.Args = args

	fn := ts[:n-1]

	if c.method(fn) {
		if err := ParseExpr(c.Receiver); err != nil {
			return nil, unsupported("invalid receiver", err)
		}

		return c, nil
	}

	c.Kind = PlainCall
	c.Callee = fn

	if err := parseCallee(fn); err != nil {
		return nil, unsupported("invalid callee", err)
	}

	return c, nil
}

// method recognizes receiver . ident and receiver . ident :: < ... > at
// the end of fn, filling in the method call fields.
func (c *Call) method(fn Tokens) bool {
	end := len(fn)

	var generics Tokens

	if end > 0 && fn[end-1].IsPunct(">") {
		open := turbofishStart(fn)
		if open < 0 {
			return false
		}

		generics = fn[open:]
		end = open
	}

	if end < 2 || fn[end-1].Kind != KindIdent || !fn[end-2].IsPunct(".") ||
		fn[end-1].IsIdent("await") {
		return false
	}

	// a..b(x) calls b; the dot belongs to a range operator.
	if end < 3 || fn[end-3].IsPunct(".") && fn[end-3].Joint {
		return false
	}

	c.Kind = MethodCall
	c.Receiver = fn[:end-2]
	c.dot = fn[end-2]
	c.Method = fn[end-1]
	c.Generics = generics

	return true
}

// turbofishStart returns the index of the "::" opening the generic
// arguments that close at the end of fn, or -1.
func turbofishStart(fn Tokens) int {
	depth := 0

	for i := len(fn) - 1; i >= 0; i-- {
		switch {
		case fn[i].IsPunct(">") && (i == 0 || !fn[i-1].IsPunct("-")):
			depth++

		case fn[i].IsPunct("<"):
			depth--

			if depth == 0 {
				if i >= 2 && fn[i-1].IsPunct(":") && fn[i-2].IsPunct(":") &&
					fn[i-2].Joint {
					return i - 2
				}

				return -1
			}
		}
	}

	return -1
}

// control lists keywords that begin an expression but never a callee.
var control = map[string]bool{
	"if": true, "match": true, "loop": true, "while": true, "for": true,
	"unsafe": true, "async": true, "move": true, "return": true,
	"break": true, "continue": true, "yield": true, "become": true,
}

// parseCallee validates a plain callee: a single primary expression with
// postfix operators, excluding literals and macro invocations.
func parseCallee(fn Tokens) error {
	p := newParser(fn, endOf(fn))

	switch t := p.peek(); {
	case t.Kind == KindLiteral, t.Kind == KindLifetime:
		return p.errExpected("callee")

	case t.Kind == KindPunct && !p.atOp("::") && !p.atPunct("<"):
		return p.errExpected("callee")

	case t.Kind == KindIdent && (reserved[t.Text] || control[t.Text]):
		return p.errExpected("callee")
	}

	if err := p.primary(0); err != nil {
		return err
	}

	if n := p.pos; n >= 2 && p.ts[n-2].IsPunct("!") && p.ts[n-1].Kind == KindGroup {
		return ErrSyntax.WithPosition(p.ts[n-2].Pos).
			With(slog.String("issue", "macro invocation as callee"))
	}

	if err := p.postfix(); err != nil {
		return err
	}

	return p.done("end of callee")
}
