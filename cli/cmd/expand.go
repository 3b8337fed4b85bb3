package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ardnew/withblock/lang"
	"github.com/ardnew/withblock/log"
)

// Expand expands every macro site in each source file.
type Expand struct {
	Files     []string `arg:"" help:"Source files or '-' for stdin (default)." name:"file" optional:""`
	Write     bool     `       help:"Write results to the source files instead of stdout."                short:"w"`
	Jobs      int      `       help:"Maximum number of files expanded concurrently (0 for one per CPU)." short:"j" default:"0"`
	Where     string   `       help:"Expand only sites for which this expression is true."                               placeholder:"EXPR"`
	KeepGoing bool     `       help:"Report failing files and continue with the rest."                   short:"k"`
	List      bool     `       help:"Print one line per site instead of the expanded source."            short:"l"`
}

// expanded is the outcome of one source.
type expanded struct {
	src    source
	result *lang.Result
	err    error
}

// Run executes the expand command.
func (e *Expand) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	srcs, err := collectSources(e.Files)
	if err != nil {
		return err
	}

	opts, err := e.options(ctx)
	if err != nil {
		return err
	}

	results, err := expandAll(ctx, srcs, e.jobs(), e.KeepGoing, opts...)
	if err != nil {
		return err
	}

	return e.report(ctx, results)
}

// options returns the rewriting options including the site filter.
func (e *Expand) options(ctx context.Context) ([]lang.Option, error) {
	if strings.TrimSpace(e.Where) == "" {
		return optionsFrom(ctx), nil
	}

	f, err := lang.CompileFilter(e.Where)
	if err != nil {
		return nil, err
	}

	return optionsFrom(ctx, lang.WithFilter(f)), nil
}

func (e *Expand) jobs() int {
	if e.Jobs > 0 {
		return e.Jobs
	}

	return runtime.GOMAXPROCS(0)
}

// expandAll expands each source concurrently, at most jobs at a time.
// Results are returned in source order. Unless keepGoing is set, the first
// failure cancels the remaining work and is returned.
func expandAll(
	ctx context.Context,
	srcs []source,
	jobs int,
	keepGoing bool,
	opts ...lang.Option,
) ([]expanded, error) {
	results := make([]expanded, len(srcs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for i, src := range srcs {
		g.Go(func() error {
			res, err := expandSource(gctx, src, opts...)
			results[i] = expanded{src: src, result: res, err: err}

			if keepGoing {
				return nil
			}

			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

func expandSource(ctx context.Context, src source, opts ...lang.Option) (*lang.Result, error) {
	r, err := src.open()
	if err != nil {
		return nil, ErrReadSource.With(fileAttr(src.name)).Wrap(err)
	}
	defer r.Close()

	return lang.ExpandReader(ctx, r, append(opts, lang.WithFile(src.name))...)
}

// report writes or prints each result.
func (e *Expand) report(ctx context.Context, results []expanded) error {
	w := outputFrom(ctx)
	failed := 0

	for _, x := range results {
		if x.err != nil {
			failed++

			log.ErrorContext(ctx, "expand failed",
				fileAttr(x.src.name),
				slog.Any("error", x.err),
			)

			continue
		}

		var err error

		switch {
		case e.List:
			err = listSites(w, x.src.name, x.result)

		case e.Write && !x.src.isStdin():
			err = writeSource(ctx, x)

		default:
			_, err = io.WriteString(w, x.result.Source)
		}

		if err != nil {
			return err
		}
	}

	if failed > 0 {
		return ErrExpandFailed.With(
			slog.Int("failed", failed),
			slog.Int("files", len(results)),
		)
	}

	return nil
}

// listSites prints one line per site: position, macro, state, and the
// rewritten call on a single line.
func listSites(w io.Writer, name string, res *lang.Result) error {
	for _, s := range res.Sites {
		state, text := "expanded", s.Rewritten
		if s.Skipped {
			state, text = "skipped", s.Original
		}

		_, err := fmt.Fprintf(w, "%s:%s: %s %s %s\n",
			name, s.Pos, s.Macro, state, strings.Join(strings.Fields(text), " "))
		if err != nil {
			return err
		}
	}

	return nil
}

// writeSource replaces the file content with the expanded source when it
// changed. The new content is written to a temporary file in the same
// directory and renamed over the original.
func writeSource(ctx context.Context, x expanded) error {
	if x.result.Expanded() == 0 {
		return nil
	}

	dir, base := filepath.Split(x.src.path)

	tmp, err := os.CreateTemp(dir, "."+base+".*")
	if err != nil {
		return ErrWriteSource.With(fileAttr(x.src.name)).Wrap(err)
	}

	defer os.Remove(tmp.Name())

	if _, err = io.WriteString(tmp, x.result.Source); err == nil {
		err = tmp.Chmod(x.src.mode)
	}

	if cerr := tmp.Close(); err == nil {
		err = cerr
	}

	if err == nil {
		err = os.Rename(tmp.Name(), x.src.path)
	}

	if err != nil {
		return ErrWriteSource.With(fileAttr(x.src.name)).Wrap(err)
	}

	log.DebugContext(ctx, "source written",
		fileAttr(x.src.name),
		slog.Int("sites", x.result.Expanded()),
	)

	return nil
}
