// Package cli contains the command line interface for withblock.
//
// # Usage
//
// Expand every with_block! site in a set of Rust sources:
//
//	withblock expand src/main.rs src/lib.rs
//	withblock expand -w -j 4 $(git ls-files '*.rs')
//
// Rewrite or inspect a single invocation:
//
//	withblock rewrite 'spawn(pool) { |job| job.run(); }'
//	withblock inspect json 'pool.install() { work(); }'
//
// # Macro Names
//
// The macro names recognized as expansion sites come from the repeatable
// --macro flag and the comma-separated WITHBLOCK_MACROS environment
// variable. Both lists are merged; when neither is given, with_block is
// used.
//
// # Configuration Loader
//
// Flag defaults are read from config.json, config.yaml, or config.yml in
// the user configuration directory. YAML files are loaded by [loadYAML];
// nested mappings are joined into hyphenated flag names, so
//
//	log:
//	  level: debug
//	max_depth: 8
//
// sets --log-level and --max-depth. The init command writes a YAML file
// holding the current flag values.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time: Set timestamp format (RFC3339, RFC3339Nano, none, etc.)
//   - --log-caller: Include caller information in log output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o withblock .
//
// It adds --pprof-mode (allocs, block, clock, cpu, goroutine, heap, mem,
// mutex, thread, trace) and --pprof-dir, which defaults to the pprof
// directory in the user cache directory.
package cli
