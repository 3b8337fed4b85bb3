//go:build pprof

package profile

import (
	"maps"
	"os"
	"slices"
	"sync"

	"github.com/pkg/profile"
)

// Modes returns the sorted names of the profiles that can be collected.
var Modes = sync.OnceValue(
	func() []string { return slices.Sorted(maps.Keys(modes)) },
)

var modes = map[string]func(*profile.Profile){
	"allocs":    profile.MemProfileAllocs,
	"block":     profile.BlockProfile,
	"clock":     profile.ClockProfile,
	"cpu":       profile.CPUProfile,
	"goroutine": profile.GoroutineProfile,
	"heap":      profile.MemProfileHeap,
	"mem":       profile.MemProfile,
	"mutex":     profile.MutexProfile,
	"thread":    profile.ThreadcreationProfile,
	"trace":     profile.TraceProfile,
}

// start starts a pkg/profile session for mode, writing into path. Unknown
// modes and an uncreatable path yield a no-op handle.
func start(mode, path string, quiet bool) interface{ Stop() } {
	fn, ok := modes[mode]
	if !ok {
		return ignore{}
	}

	settings := []func(*profile.Profile){fn, profile.NoShutdownHook}

	if path != "" {
		if err := os.MkdirAll(path, 0o755); err != nil {
			return ignore{}
		}

		settings = append(settings, profile.ProfilePath(path))
	}

	if quiet {
		settings = append(settings, profile.Quiet)
	}

	return profile.Start(settings...)
}
