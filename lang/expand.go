package lang

import (
	"context"
	"log/slog"

	"github.com/sahilm/fuzzy"

	"github.com/ardnew/withblock/log"
)

// Site records one macro invocation found while expanding a source.
type Site struct {
	Macro     string   `json:"macro"              yaml:"macro"`
	Pos       Position `json:"position"           yaml:"position"`
	Depth     int      `json:"depth"              yaml:"depth"`
	Kind      string   `json:"kind"               yaml:"kind"`
	Callee    string   `json:"callee,omitempty"   yaml:"callee,omitempty"`
	Receiver  string   `json:"receiver,omitempty" yaml:"receiver,omitempty"`
	Method    string   `json:"method,omitempty"   yaml:"method,omitempty"`
	Args      []string `json:"args"               yaml:"args"`
	Params    int      `json:"params"             yaml:"params"`
	Typed     int      `json:"typed"              yaml:"typed"`
	Stmts     int      `json:"stmts"              yaml:"stmts"`
	Original  string   `json:"original"           yaml:"original"`
	Rewritten string   `json:"rewritten"          yaml:"rewritten"`

	// Skipped is set when a filter rejected the site. Skipped sites are
	// left untouched in the output.
	Skipped bool `json:"skipped" yaml:"skipped"`
}

// Suggestion reports an invocation of an unknown macro whose name is close
// to a configured one.
type Suggestion struct {
	Name  string   `json:"name"     yaml:"name"`
	Macro string   `json:"macro"    yaml:"macro"`
	Pos   Position `json:"position" yaml:"position"`
}

// Result is the outcome of expanding a whole source.
type Result struct {
	// Source is the expanded text. Bytes outside of expanded sites are
	// identical to the input.
	Source      string
	Sites       []Site
	Suggestions []Suggestion
}

// Expanded returns the number of sites that were rewritten.
func (r *Result) Expanded() int {
	n := 0

	for _, s := range r.Sites {
		if !s.Skipped {
			n++
		}
	}

	return n
}

// ExpandString expands every macro site in src.
//
// A site is a configured macro name followed by '!' and a delimited group
// holding a call and its trailing block. Sites nested inside a site are
// expanded first. The first failing site aborts the expansion.
func ExpandString(
	ctx context.Context,
	src string,
	opts ...Option,
) (*Result, error) {
	cfg := makeConfig(opts...)

	return cfg.expand(ctx, src)
}

func (c config) expand(ctx context.Context, src string) (*Result, error) {
	c.logger = c.logger.ForFile(c.opts.file)

	c.logger.TraceContext(ctx, "expand source", slog.Int("source_length", len(src)))

	ts, trail, err := Lex(src)
	if err != nil {
		return nil, c.fail(err)
	}

	h := &host{config: c, result: &Result{}}

	out, err := h.walk(ctx, ts, 0)
	if err != nil {
		return nil, c.fail(err)
	}

	h.result.Source = out.Source() + trail

	c.logger.TraceContext(
		ctx,
		"expanded source",
		slog.Int("sites", len(h.result.Sites)),
		slog.Int("expanded", h.result.Expanded()),
	)

	return h.result, nil
}

// fail attaches the source name to err.
func (c config) fail(err error) error {
	if c.opts.file == "" {
		return err
	}

	return WrapError(err).With(slog.String(log.KeyFile, c.opts.file))
}

// host walks a token tree, splicing in the expansion of each site.
type host struct {
	config

	result *Result
}

// walk returns ts with every site expanded. depth is the number of
// enclosing sites.
func (h *host) walk(ctx context.Context, ts Tokens, depth int) (Tokens, error) {
	out := make(Tokens, 0, len(ts))

	for i := 0; i < len(ts); i++ {
		t := ts[i]

		if h.atSite(ts, i) {
			if err := ctx.Err(); err != nil {
				return nil, context.Cause(ctx)
			}

			if !h.isMacro(t.Text) {
				h.suggest(ctx, t)
			} else {
				repl, err := h.site(ctx, ts[i:i+3], depth)
				if err != nil {
					return nil, err
				}

				out = append(out, repl...)
				i += 2

				continue
			}
		}

		if t.Kind == KindGroup {
			children, err := h.walk(ctx, t.Tokens, depth)
			if err != nil {
				return nil, err
			}

			t.Tokens = children
		}

		out = append(out, t)
	}

	return out, nil
}

// atSite reports whether ts[i:] begins with name ! group. A name following
// '.' is a field, not a macro path.
func (h *host) atSite(ts Tokens, i int) bool {
	return i+2 < len(ts) &&
		ts[i].Kind == KindIdent &&
		ts[i+1].IsPunct("!") && !ts[i+1].Joint &&
		ts[i+2].Kind == KindGroup &&
		(i == 0 || !ts[i-1].IsPunct("."))
}

// site expands the invocation name ! group and returns its replacement.
func (h *host) site(ctx context.Context, inv Tokens, depth int) (Tokens, error) {
	name, group := inv[0], inv[2]

	if depth >= h.opts.maxDepth {
		return nil, ErrMaxDepthExceeded.WithPosition(name.Pos).
			With(slog.Int(log.KeyDepth, depth)).
			With(slog.Int("max_depth", h.opts.maxDepth))
	}

	inner, err := h.walk(ctx, group.Tokens, depth+1)
	if err != nil {
		return nil, err
	}

	e, err := h.rewrite(ctx, inner)
	if err != nil {
		return nil, WrapError(err).
			With(slog.String(log.KeyMacro, name.Text)).
			With(slog.String("site", name.Pos.String()))
	}

	s := newSite(name, inv, e, depth)

	ok, err := h.filter.Accept(filterEnv(s, h.opts.file))
	if err != nil {
		return nil, err
	}

	if !ok {
		s.Skipped = true
		h.result.Sites = append(h.result.Sites, s)

		h.logger.DebugContext(
			ctx,
			"site skipped",
			slog.String(log.KeyMacro, s.Macro),
			slog.String(log.KeyPosition, s.Pos.String()),
		)

		group.Tokens = inner

		return Tokens{name, inv[1], group}, nil
	}

	h.result.Sites = append(h.result.Sites, s)

	h.logger.TraceContext(
		ctx,
		"site expanded",
		slog.String(log.KeyMacro, s.Macro),
		slog.String(log.KeyPosition, s.Pos.String()),
		slog.Int(log.KeyDepth, depth),
	)

	repl := append(Tokens(nil), e.Tokens...)
	repl[0] = repl[0].WithLead(name.Lead)

	return repl, nil
}

func newSite(name Token, inv Tokens, e *Expansion, depth int) Site {
	s := Site{
		Macro:     name.Text,
		Pos:       name.Pos,
		Depth:     depth,
		Kind:      e.Call.Kind.String(),
		Args:      make([]string, len(e.Call.Args)),
		Params:    paramCount(e.Params),
		Typed:     e.Params.Typed(),
		Stmts:     len(e.Block.Stmts),
		Original:  inv.String(),
		Rewritten: e.String(),
	}

	for i, arg := range e.Call.Args {
		s.Args[i] = arg.String()
	}

	switch e.Call.Kind {
	case PlainCall:
		s.Callee = e.Call.Callee.String()

	case MethodCall:
		s.Receiver = e.Call.Receiver.String()
		s.Method = e.Call.Method.Text
	}

	return s
}

// suggest records a near miss when name resembles a configured macro.
func (h *host) suggest(ctx context.Context, name Token) {
	if len(name.Text) < 3 {
		return
	}

	for _, macro := range h.opts.macros {
		if 2*len(name.Text) < len(macro) {
			continue
		}

		if len(fuzzy.Find(name.Text, []string{macro})) == 0 &&
			len(fuzzy.Find(macro, []string{name.Text})) == 0 {
			continue
		}

		h.result.Suggestions = append(h.result.Suggestions, Suggestion{
			Name:  name.Text,
			Macro: macro,
			Pos:   name.Pos,
		})

		h.logger.WarnContext(
			ctx,
			"unknown macro resembles configured macro",
			slog.String("name", name.Text),
			slog.String("suggestion", macro),
			slog.String(log.KeyPosition, name.Pos.String()),
		)

		return
	}
}
