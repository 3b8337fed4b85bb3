package lang

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"
)

// globalCache stores expansion results keyed by (source_hash ^ opts_hash).
var globalCache sync.Map

// state tracks the expansion of one source under one option set.
type state struct {
	once   sync.Once
	result *Result
	err    error
}

// ExpandReader expands every macro site in the content of r.
// Results are cached by content and options for efficiency.
func ExpandReader(
	ctx context.Context,
	r io.Reader,
	opts ...Option,
) (*Result, error) {
	// Wrap reader with async read-ahead for concurrent I/O.
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).
			With(slog.String("source", "reader"))
	}

	cfg := makeConfig(opts...)

	cfg.logger.TraceContext(
		ctx,
		"read input",
		slog.Int("source_bytes", len(data)),
		slog.Bool("read_ahead", true),
	)

	return cfg.expandCached(ctx, string(data))
}

// expandCached expands source, reusing a previous result for identical
// content and options.
func (c config) expandCached(ctx context.Context, source string) (*Result, error) {
	// Combine source hash with options hash for cache key uniqueness
	sourceHash := xxh3.HashString(source)
	optsHash := c.opts.hash()
	key := strconv.FormatUint(sourceHash^optsHash, 36)

	value, cacheHit := globalCache.LoadOrStore(key, new(state))

	entry, ok := value.(*state)
	if !ok {
		return nil, ErrReadInput.
			With(slog.String("issue", "invalid entry type in cache"))
	}

	c.logger.TraceContext(
		ctx,
		"cache lookup",
		slog.String("source_hash", strconv.FormatUint(sourceHash, 16)),
		slog.String("opts_hash", strconv.FormatUint(optsHash, 16)),
		slog.Bool("cache_hit", cacheHit),
	)

	entry.once.Do(func() {
		entry.result, entry.err = c.expand(ctx, source)
	})

	if entry.err != nil {
		// Failed entries are evicted so that a later call retries.
		globalCache.CompareAndDelete(key, entry)

		return nil, entry.err
	}

	return entry.result.clone(), nil
}

// clone returns a copy of r that shares no slices with it.
func (r *Result) clone() *Result {
	c := &Result{
		Source:      r.Source,
		Sites:       make([]Site, len(r.Sites)),
		Suggestions: append([]Suggestion(nil), r.Suggestions...),
	}

	for i, s := range r.Sites {
		s.Args = append([]string(nil), s.Args...)
		c.Sites[i] = s
	}

	return c
}

// ClearCache removes all cached results.
// This is primarily useful for testing or when memory needs to be reclaimed.
func ClearCache() {
	globalCache.Clear()
}
