package cmd

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/ardnew/withblock/lang"
)

// Rewrite rewrites a single invocation body, a call followed by its
// trailing block, and prints the resulting call.
type Rewrite struct {
	Input string `arg:"" default:"-" help:"Invocation text, or '-' to read it from stdin." name:"input"`
}

// Run executes the rewrite command.
func (r *Rewrite) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	e, err := rewriteInput(ctx, r.Input)
	if err != nil {
		return err
	}

	_, err = io.WriteString(outputFrom(ctx), e.String()+"\n")

	return err
}

// rewriteInput rewrites input, or the content of stdin when input is "-".
func rewriteInput(ctx context.Context, input string) (*lang.Expansion, error) {
	if input == stdinSource {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, ErrReadSource.With(fileAttr(stdinSource)).Wrap(err)
		}

		input = string(data)
	}

	if strings.TrimSpace(input) == "" {
		return nil, ErrNoInput
	}

	return lang.RewriteString(ctx, input, optionsFrom(ctx)...)
}
