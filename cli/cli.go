package cli

import (
	"context"
	"log/slog"
	"os"
	"strconv"

	"github.com/alecthomas/kong"

	"github.com/ardnew/withblock/cli/cmd"
	"github.com/ardnew/withblock/lang"
	"github.com/ardnew/withblock/log"
	"github.com/ardnew/withblock/pkg"
)

// CLI is the top-level command-line interface for withblock.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Version kong.VersionFlag `help:"Print version and exit." short:"V"`

	Macro    []string `help:"Macro name recognized as an expansion site (repeatable)." name:"macro"     placeholder:"NAME" short:"m"`
	MaxDepth int      `help:"Maximum nesting depth of macro sites."                    name:"max-depth" default:"${maxDepth}"`

	Expand  cmd.Expand  `cmd:"" default:"withargs" help:"Expand macro sites in source files"`
	Rewrite cmd.Rewrite `cmd:""                    help:"Rewrite a single invocation"`
	Inspect cmd.Inspect `cmd:""                    help:"Print the decomposition of an invocation"`
	Diff    cmd.Diff    `cmd:""                    help:"Show the original and rewritten text of each site"`
	Repl    cmd.Repl    `cmd:""                    help:"Rewrite invocations interactively"`
	Init    cmd.Init    `cmd:""                    help:"Initialize configuration file"`
}

// Run executes the withblock CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	err := pkg.MkdirAll()
	if err != nil {
		return err
	}

	configFilePath := pkg.ConfigPath(baseConfig)

	vars := kong.Vars{
		cmd.ConfigIdentifier: configFilePath + ".yaml",
		cmd.CacheIdentifier:  pkg.CacheDir(),
		"maxDepth":           strconv.Itoa(lang.DefaultMaxDepth),
		"version":            pkg.Name + " " + pkg.Version(),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Pre-scan for logger flags so that errors reported while parsing use
	// the requested format and level.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				FlagsLast:           false,
				NoAppSummary:        false,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(kong.JSON, configFilePath+".json"),
		kong.Configuration(loadYAML, configFilePath+".yaml", configFilePath+".yml"),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	// Finalize logger configuration with all parsed values including
	// TimeLayout and Caller which don't use TextUnmarshaler.
	cli.Log.start(ctx)

	// [pprofConfig.start] is no-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx)()

	macros := mergeMacros(cli.Macro, os.Getenv(macrosEnv))

	log.DebugContext(ctx, "macros configured",
		slog.Any("macros", macros),
		slog.Int("max_depth", cli.MaxDepth),
	)

	// Stuff additional context values for use by commands
	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithOptions(ctx,
		lang.WithMacros(macros...),
		lang.WithMaxDepth(cli.MaxDepth),
		lang.WithLogger(log.Default()),
	)

	return ktx.Run(ctx, &cli)
}
