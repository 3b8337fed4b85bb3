package lang

import (
	"bytes"
	"encoding/gob"

	"github.com/zeebo/xxh3"

	"github.com/ardnew/withblock/log"
)

// DefaultMacro is the macro name recognized when none is configured.
const DefaultMacro = "with_block"

// DefaultMaxDepth is the default maximum nesting depth of macro sites.
// Users may modify this before expanding to change the default.
var DefaultMaxDepth = 16

// optionsKey holds the options that affect expansion output.
// This type is gob-encodable for cache key hashing.
type optionsKey struct {
	macros   []string
	maxDepth int
	filter   string
	file     string
}

// config holds the effective options of one call.
type config struct {
	opts   optionsKey
	filter *Filter
	logger log.Logger // structured logger (outside optionsKey, doesn't affect cache)
}

// Option configures rewriting and expansion behavior.
type Option func(*config)

// WithLogger sets the structured logger for trace output.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithMacros sets the macro names recognized as expansion sites.
// Empty names are ignored; an empty list restores [DefaultMacro].
func WithMacros(names ...string) Option {
	return func(c *config) {
		c.opts.macros = c.opts.macros[:0:0]

		for _, name := range names {
			if name != "" {
				c.opts.macros = append(c.opts.macros, name)
			}
		}

		if len(c.opts.macros) == 0 {
			c.opts.macros = []string{DefaultMacro}
		}
	}
}

// WithMaxDepth sets the maximum nesting depth of macro sites.
func WithMaxDepth(depth int) Option {
	return func(c *config) {
		c.opts.maxDepth = depth
	}
}

// WithFilter restricts expansion to sites accepted by f. Rejected sites are
// left untouched.
func WithFilter(f *Filter) Option {
	return func(c *config) {
		c.filter = f
		c.opts.filter = f.String()
	}
}

// WithFile names the source being expanded. The name appears in logs and
// is visible to filters as "file".
func WithFile(name string) Option {
	return func(c *config) {
		c.opts.file = name
	}
}

// makeConfig applies opts over the defaults.
func makeConfig(opts ...Option) config {
	c := config{
		opts: optionsKey{
			macros:   []string{DefaultMacro},
			maxDepth: DefaultMaxDepth,
		},
	}

	for _, opt := range opts {
		opt(&c)
	}

	if c.opts.maxDepth <= 0 {
		c.opts.maxDepth = DefaultMaxDepth
	}

	return c
}

// isMacro reports whether name is a configured macro.
func (c config) isMacro(name string) bool {
	for _, m := range c.opts.macros {
		if m == name {
			return true
		}
	}

	return false
}

// hash encodes options using gob and hashes with xxh3.
// Returns a hash that uniquely identifies the options configuration.
func (k optionsKey) hash() uint64 {
	var buf bytes.Buffer

	enc := gob.NewEncoder(&buf)

	// Encode relevant options fields
	_ = enc.Encode(k.macros)
	_ = enc.Encode(k.maxDepth)
	_ = enc.Encode(k.filter)
	_ = enc.Encode(k.file)

	return xxh3.Hash(buf.Bytes())
}
