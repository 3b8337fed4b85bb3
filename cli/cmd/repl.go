package cmd

import (
	"context"

	"github.com/ardnew/withblock/cli/cmd/repl"
	"github.com/ardnew/withblock/log"
)

// Repl starts an interactive session that rewrites each entered invocation.
type Repl struct{}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) error {
	cacheDir := ""
	if ktx := kongContextFrom(ctx); ktx != nil {
		cacheDir = ktx.Model.Vars()[CacheIdentifier]
	}

	return repl.Run(ctx, cacheDir, log.Default(), optionsFrom(ctx)...)
}
