// Package profile provides optional runtime profiling for withblock.
//
// Profiling wraps [github.com/pkg/profile] and is compiled in only with the
// "pprof" build tag. Without the tag every operation is a no-op and
// [Modes] is empty.
//
// # Modes
//
//   - allocs:    memory allocation profiling (all allocations)
//   - block:     blocking profiling
//   - clock:     wall-clock profiling
//   - cpu:       CPU profiling
//   - goroutine: goroutine profiling
//   - heap:      live heap profiling
//   - mem:       general memory profiling
//   - mutex:     mutex contention profiling
//   - thread:    thread creation profiling
//   - trace:     execution trace
//
// # Usage
//
//	go build -tags pprof .
//	withblock --pprof-mode cpu expand -w ./src
//	go tool pprof -http=: ~/.cache/withblock/pprof/cpu.pprof
//
// A [Config] is built from functional options and started:
//
//	var cfg profile.Config
//	cfg = cfg.With(profile.WithMode("heap"), profile.WithPath(dir))
//	defer cfg.Start().Stop()
//
// The output directory is created on start if it does not exist.
package profile

// Tag is the build tag required to enable pprof profiling. It also names
// the profile output directory under the cache directory.
const Tag = `pprof`
