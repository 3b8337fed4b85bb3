// Package cmd implements the withblock subcommands.
//
// Each command is a struct whose fields are kong flags and arguments and
// whose Run method receives a [context.Context] carrying the parsed
// [kong.Context] ([WithContext]), the rewriting options selected by the
// global flags ([WithOptions]), and the output writer ([WithOutput]).
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path
	// of the YAML configuration file written by [Init].
	ConfigIdentifier = "config"
)
