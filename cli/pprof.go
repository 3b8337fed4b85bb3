//go:build pprof

package cli

import (
	"context"
	"log/slog"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/withblock/log"
	"github.com/ardnew/withblock/pkg"
	"github.com/ardnew/withblock/profile"
)

type pprofConfig struct {
	Mode string `default:""            enum:",${pprofModeEnum}" help:"Enable profiling"         placeholder:"${enum}" short:"p"`
	Dir  string `default:"${pprofDir}"                          help:"Profile output directory"                                 type:"path"`
}

func (pprofConfig) vars() kong.Vars {
	return kong.Vars{
		"pprofModeEnum": strings.Join(profile.Modes(), ","),
		"pprofDir":      pkg.CachePath(profile.Tag),
	}
}

func (pprofConfig) group() kong.Group {
	return kong.Group{Key: profile.Tag, Title: "Profiling (pprof)"}
}

// start starts the selected profiler and returns the function that stops
// it. Without a mode both are no-ops.
func (f pprofConfig) start(ctx context.Context) (stop func()) {
	if f.Mode == "" {
		return func() {}
	}

	attrs := []slog.Attr{slog.String("pprof_mode", f.Mode), slog.String("pprof_dir", f.Dir)}

	log.DebugContext(ctx, "profiling started", attrs...)

	var cfg profile.Config

	cfg = cfg.With(
		profile.WithMode(f.Mode),
		profile.WithPath(f.Dir),
		profile.WithQuiet(true),
	)

	p := cfg.Start()

	return func() {
		p.Stop()
		log.DebugContext(ctx, "profiling stopped", attrs...)
	}
}
