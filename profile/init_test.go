package profile

import "testing"

func TestConfig_Options(t *testing.T) {
	var cfg Config = func() (string, string, bool) { return "", "", false }

	cfg = WithMode("cpu")(cfg)
	cfg = WithPath("/tmp/withblock")(cfg)
	cfg = WithQuiet(true)(cfg)

	mode, path, quiet := cfg()
	if mode != "cpu" || path != "/tmp/withblock" || !quiet {
		t.Errorf("cfg() = (%q, %q, %v)", mode, path, quiet)
	}

	// Later options replace only their own field.
	mode, path, _ = WithMode("heap")(cfg)()
	if mode != "heap" || path != "/tmp/withblock" {
		t.Errorf("WithMode kept (%q, %q)", mode, path)
	}
}

func TestConfig_StartWithoutMode(t *testing.T) {
	var cfg Config = func() (string, string, bool) { return "", t.TempDir(), true }

	p := cfg.Start()
	if _, ok := p.(ignore); !ok {
		t.Errorf("Start() = %T, want no-op", p)
	}

	p.Stop()
}

func TestConfig_With(t *testing.T) {
	tests := []struct {
		name      string
		base      Config
		opts      []Option
		wantMode  string
		wantPath  string
		wantQuiet bool
	}{
		{
			name:     "nil base",
			opts:     []Option{WithMode("cpu"), WithPath("/tmp/withblock")},
			wantMode: "cpu",
			wantPath: "/tmp/withblock",
		},
		{
			name:      "later option wins",
			opts:      []Option{WithMode("cpu"), WithQuiet(true), WithMode("trace")},
			wantMode:  "trace",
			wantQuiet: true,
		},
		{
			name:      "base kept",
			base:      func() (string, string, bool) { return "heap", "/var/pprof", false },
			opts:      []Option{WithQuiet(true)},
			wantMode:  "heap",
			wantPath:  "/var/pprof",
			wantQuiet: true,
		},
		{
			name: "no options on nil base",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.base.With(tt.opts...).settings()

			if s.mode != tt.wantMode || s.path != tt.wantPath || s.quiet != tt.wantQuiet {
				t.Errorf("settings = %+v, want {%s %s %v}",
					s, tt.wantMode, tt.wantPath, tt.wantQuiet)
			}
		})
	}
}

func TestConfig_StartNil(t *testing.T) {
	var cfg Config

	p := cfg.Start()
	if _, ok := p.(ignore); !ok {
		t.Errorf("Start() = %T, want no-op", p)
	}

	p.Stop()
}
