package cmd

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/zeebo/xxh3"

	"github.com/ardnew/withblock/lang"
)

// ContextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

type (
	optionsKey struct{}
	outputKey  struct{}
)

// WithOptions returns a new context.Context carrying the rewriting options
// applied by every command.
func WithOptions(ctx context.Context, opts ...lang.Option) context.Context {
	return context.WithValue(ctx, optionsKey{}, opts)
}

// optionsFrom returns the options stored by WithOptions followed by extra.
func optionsFrom(ctx context.Context, extra ...lang.Option) []lang.Option {
	opts, _ := ctx.Value(optionsKey{}).([]lang.Option)

	return append(opts[:len(opts):len(opts)], extra...)
}

// WithOutput returns a new context.Context whose command output is written
// to w instead of os.Stdout.
func WithOutput(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, outputKey{}, w)
}

func outputFrom(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(outputKey{}).(io.Writer); ok && w != nil {
		return w
	}

	return os.Stdout
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// source is one input of a command.
type source struct {
	// name is the path as given, or "-" for stdin.
	name string
	// path is the resolved path; empty for stdin.
	path string
	mode os.FileMode
}

func (s source) isStdin() bool { return s.path == "" }

func (s source) open() (io.ReadCloser, error) {
	if s.isStdin() {
		return io.NopCloser(os.Stdin), nil
	}

	return os.Open(s.path)
}

// fileKey uniquely identifies a file by its device and inode numbers.
// This handles deduplication across symlinks, absolute/relative paths, and
// special device files.
type fileKey struct {
	dev uint64
	ino uint64
}

// collectSources resolves the given paths into sources.
//
// Duplicates are dropped by resolving symlinks and comparing device/inode
// pairs. All occurrences of "-" collapse into a single stdin source placed
// last. No paths at all means stdin.
func collectSources(paths []string) ([]source, error) {
	if len(paths) == 0 {
		return []source{{name: stdinSource}}, nil
	}

	var (
		srcs     = make([]source, 0, len(paths))
		seen     = make(map[fileKey]struct{})
		hasStdin bool
	)

	for _, p := range paths {
		if p == stdinSource {
			hasStdin = true

			continue
		}

		src, key, err := resolveSource(p)
		if err != nil {
			return nil, ErrReadSource.With(fileAttr(p)).Wrap(err)
		}

		if _, dup := seen[key]; dup {
			continue
		}

		seen[key] = struct{}{}
		srcs = append(srcs, src)
	}

	if hasStdin {
		srcs = append(srcs, source{name: stdinSource})
	}

	return srcs, nil
}

// resolveSource resolves path to a regular file and its identity.
func resolveSource(path string) (source, fileKey, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return source{}, fileKey{}, err
	}

	resolved, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		return source{}, fileKey{}, err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return source{}, fileKey{}, err
	}

	if info.IsDir() {
		return source{}, fileKey{}, ErrIsDirectory
	}

	key, ok := makeFileKey(info)
	if !ok {
		// No device/inode available: the resolved path is the identity.
		key = fileKey{ino: xxh3.HashString(resolved)}
	}

	return source{name: path, path: resolved, mode: info.Mode().Perm()}, key, nil
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true //nolint:unconvert
}
