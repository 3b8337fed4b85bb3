package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/withblock/lang"
)

// Inspect prints the decomposition of an invocation in the chosen format.
type Inspect struct {
	Native Native `cmd:"" default:"withargs" help:"Print as readable text (default)."`
	JSON   JSON   `cmd:""                    help:"Print as JSON."`
	YAML   YAML   `cmd:""                    help:"Print as YAML."`
	AST    AST    `cmd:""                    help:"Print the token tree of the rewritten call."`
}

// Native prints the decomposition as readable text.
type Native struct {
	Indent int `default:"2" help:"Indent width for formatted output" short:"i"`

	Input string `arg:"" default:"-" help:"Invocation text, or '-' to read it from stdin." name:"input"`
}

// Run executes the native command.
func (n *Native) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	e, err := rewriteInput(ctx, n.Input)
	if err != nil {
		return wrapFormat(err, "native")
	}

	return e.Format(ctx, outputFrom(ctx), n.Indent)
}

// JSON prints the decomposition as JSON.
type JSON struct {
	Indent int `default:"2" help:"Indent width for JSON output" short:"i"`

	Input string `arg:"" default:"-" help:"Invocation text, or '-' to read it from stdin." name:"input"`
}

// Run executes the json command.
func (j *JSON) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	e, err := rewriteInput(ctx, j.Input)
	if err != nil {
		return wrapFormat(err, "json")
	}

	return e.FormatJSON(ctx, outputFrom(ctx), j.Indent)
}

// YAML prints the decomposition as YAML.
type YAML struct {
	Indent int `default:"2" help:"Indent width for YAML output" short:"i"`

	Input string `arg:"" default:"-" help:"Invocation text, or '-' to read it from stdin." name:"input"`
}

// Run executes the yaml command.
func (y *YAML) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	e, err := rewriteInput(ctx, y.Input)
	if err != nil {
		return wrapFormat(err, "yaml")
	}

	return e.FormatYAML(ctx, outputFrom(ctx), y.Indent)
}

// AST prints the token tree of the rewritten call.
type AST struct {
	Indent int `default:"2" help:"Indent width for each tree level" short:"i"`

	Input string `arg:"" default:"-" help:"Invocation text, or '-' to read it from stdin." name:"input"`
}

// Run executes the ast command.
func (a *AST) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	e, err := rewriteInput(ctx, a.Input)
	if err != nil {
		return wrapFormat(err, "ast")
	}

	return e.FormatTree(ctx, outputFrom(ctx), a.Indent)
}

// wrapFormat attaches the output format to a rewriting error.
func wrapFormat(err error, format string) error {
	return lang.WrapError(err).With(slog.String("format", format))
}
