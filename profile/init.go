package profile

// Config yields the settings of one profiled withblock run: the
// --pprof-mode value, the --pprof-dir output directory, and whether the
// pkg/profile banner lines are suppressed so they do not mix with the
// rewritten source on stdout.
type Config func() (mode, path string, quiet bool)

// Option replaces one setting of a [Config].
type Option func(Config) Config

// Start begins profiling the current run and returns a handle whose Stop
// writes the profile into the output directory. The command line defers
// Stop until every file has been expanded.
//
// Without the pprof build tag, or with an empty or unknown mode, Start
// returns a no-op handle.
func (c Config) Start() interface{ Stop() } {
	s := c.settings()

	if s.mode == "" {
		return ignore{}
	}

	return start(s.mode, s.path, s.quiet)
}

// With returns c with opts applied in order.
func (c Config) With(opts ...Option) Config {
	for _, opt := range opts {
		c = opt(c)
	}

	return c
}

// WithMode selects the profile collected, one of [Modes].
func WithMode(mode string) Option {
	return set(func(s *settings) { s.mode = mode })
}

// WithPath sets the directory the profile is written to. It defaults to
// the pprof directory under the withblock cache.
func WithPath(path string) Option {
	return set(func(s *settings) { s.path = path })
}

// WithQuiet suppresses the log lines pkg/profile prints on start and stop.
func WithQuiet(quiet bool) Option {
	return set(func(s *settings) { s.quiet = quiet })
}

type settings struct {
	mode, path string
	quiet      bool
}

func (c Config) settings() settings {
	if c == nil {
		return settings{}
	}

	mode, path, quiet := c()

	return settings{mode: mode, path: path, quiet: quiet}
}

func set(fn func(*settings)) Option {
	return func(c Config) Config {
		s := c.settings()
		fn(&s)

		return func() (string, string, bool) { return s.mode, s.path, s.quiet }
	}
}

type ignore struct{}

func (ignore) Stop() {}
