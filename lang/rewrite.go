package lang

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ardnew/withblock/log"
)

// Expansion is the result of rewriting one invocation.
type Expansion struct {
	Call  *Call
	Block *Block

	// Params is the effective parameter list: the block's own pipe list,
	// an arrow-style list from the call head, or nil.
	Params *Params

	// Closure is the synthesized closure argument.
	Closure Tokens

	// Tokens is the rewritten call expression.
	Tokens Tokens
}

// String renders the rewritten call expression.
func (e *Expansion) String() string { return e.Tokens.String() }

// RewriteString lexes src and rewrites it as a single invocation.
func RewriteString(
	ctx context.Context,
	src string,
	opts ...Option,
) (*Expansion, error) {
	ts, _, err := Lex(src)
	if err != nil {
		return nil, err
	}

	return Rewrite(ctx, ts, opts...)
}

// Rewrite turns a call followed by a trailing block into a single call
// with the block appended as a closure argument:
//
//	f(a) { stmts }         =>  f(a, || { stmts })
//	recv.m() { |x| stmts } =>  recv.m(|x| { stmts })
//	f() (x: T) -> { stmts } =>  f(|x: T| { stmts })
func Rewrite(
	ctx context.Context,
	ts Tokens,
	opts ...Option,
) (*Expansion, error) {
	cfg := makeConfig(opts...)

	return cfg.rewrite(ctx, ts)
}

func (c config) rewrite(ctx context.Context, ts Tokens) (*Expansion, error) {
	c.debug(ctx, "input", ts)

	b, err := Locate(ts)
	if err != nil {
		return nil, err
	}

	head := b.Head(ts)

	call, err := ParseCall(head)
	if err != nil {
		return nil, err
	}

	c.debug(
		ctx,
		"call tokens",
		head,
		slog.String("kind", call.Kind.String()),
		slog.Int("args", len(call.Args)),
	)

	block, err := ParseBlock(ts[b.Block])
	if err != nil {
		return nil, err
	}

	params := block.Params

	if b.Params >= 0 {
		group := ts[b.Params]

		if params != nil {
			return nil, ErrParamFragment.WithPosition(group.Pos).
				WithTokens("arrow", Tokens{group}).
				With(slog.String("issue", "more than one parameter list"))
		}

		if params, err = ParseParams(group.Tokens, ArrowParams); err != nil {
			return nil, err
		}
	}

	closure := closureTokens(params, block)

	c.debug(
		ctx,
		"closure tokens",
		closure,
		slog.Int("params", paramCount(params)),
		slog.Int("stmts", len(block.Stmts)),
	)

	e := &Expansion{
		Call:    call,
		Block:   block,
		Params:  params,
		Closure: closure,
		Tokens:  append(append(Tokens(nil), call.Head()...), appendArg(call, closure)),
	}

	c.debug(ctx, "result", e.Tokens)

	return e, nil
}

// closureTokens builds |params| { body } from the block, keeping the
// parameter and body text exactly as written.
func closureTokens(params *Params, block *Block) Tokens {
	var ts Tokens

	if params == nil || len(params.Source) == 0 {
		ts = Tokens{Punct("|", "", true), Punct("|", "", false)}
	} else {
		ts = make(Tokens, 0, len(params.Source)+3)
		ts = append(ts, Punct("|", "", false))
		ts = append(ts, params.Source[0].WithLead(""))
		ts = append(ts, params.Source[1:]...)
		ts = append(ts, Punct("|", "", false))
	}

	return append(ts, block.Closure().WithLead(" "))
}

// appendArg returns the argument group of call with arg appended as the
// last argument. A trailing comma in the original list is reused. Comments
// in an empty argument list are kept ahead of arg.
func appendArg(call *Call, arg Tokens) Token {
	g := call.Group
	arg = append(Tokens(nil), arg...)

	children := make(Tokens, 0, len(g.Tokens)+len(arg)+1)
	children = append(children, g.Tokens...)

	switch {
	case len(call.Args) == 0:
		if strings.TrimSpace(g.Trail) != "" {
			lead := strings.TrimRight(g.Trail, " \t")
			if !strings.HasSuffix(lead, "\n") {
				lead += " "
			}

			arg[0] = arg[0].WithLead(lead)
		}

		g.Trail = ""

	case call.TrailingComma():
		arg[0] = arg[0].WithLead(" ")

	default:
		children = append(children, Punct(",", "", false))
		arg[0] = arg[0].WithLead(" ")
	}

	g.Tokens = append(children, arg...)

	return g
}

// debug logs ts in compact form. Rendering is skipped unless debug
// output is enabled.
func (c config) debug(ctx context.Context, msg string, ts Tokens, attrs ...slog.Attr) {
	if !c.logger.Enabled(ctx, log.LevelDebug) {
		return
	}

	c.logger.DebugContext(
		ctx,
		msg,
		append([]slog.Attr{slog.String("tokens", ts.Compact())}, attrs...)...,
	)
}

func paramCount(p *Params) int {
	if p == nil {
		return 0
	}

	return len(p.List)
}
