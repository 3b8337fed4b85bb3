package lang

import (
	"log/slog"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// FilterEnv is the environment a [Filter] expression is evaluated in.
type FilterEnv struct {
	Macro    string   `expr:"macro"`
	Kind     string   `expr:"kind"`
	Callee   string   `expr:"callee"`
	Receiver string   `expr:"receiver"`
	Method   string   `expr:"method"`
	Args     []string `expr:"args"`
	Params   int      `expr:"params"`
	Typed    int      `expr:"typed"`
	Stmts    int      `expr:"stmts"`
	Line     int      `expr:"line"`
	File     string   `expr:"file"`
}

// Filter is a compiled boolean expression selecting expansion sites, e.g.
//
//	kind == "MethodCall" && method startsWith "spawn"
type Filter struct {
	source  string
	program *vm.Program
}

// CompileFilter compiles a filter expression. An empty source yields a nil
// filter, which accepts every site.
func CompileFilter(source string) (*Filter, error) {
	if source == "" {
		return nil, nil
	}

	program, err := expr.Compile(source, expr.Env(FilterEnv{}), expr.AsBool())
	if err != nil {
		return nil, ErrFilter.Wrap(err).With(slog.String("expression", source))
	}

	return &Filter{source: source, program: program}, nil
}

// String returns the filter source.
func (f *Filter) String() string {
	if f == nil {
		return ""
	}

	return f.source
}

// Accept reports whether the site described by env passes the filter.
func (f *Filter) Accept(env FilterEnv) (bool, error) {
	if f == nil {
		return true, nil
	}

	result, err := vm.Run(f.program, env)
	if err != nil {
		return false, ErrFilter.Wrap(err).With(slog.String("expression", f.source))
	}

	ok, _ := result.(bool)

	return ok, nil
}

// filterEnv describes a rewritten site for filter evaluation.
func filterEnv(site Site, file string) FilterEnv {
	return FilterEnv{
		Macro:    site.Macro,
		Kind:     site.Kind,
		Callee:   site.Callee,
		Receiver: site.Receiver,
		Method:   site.Method,
		Args:     site.Args,
		Params:   site.Params,
		Typed:    site.Typed,
		Stmts:    site.Stmts,
		Line:     site.Pos.Line,
		File:     file,
	}
}
