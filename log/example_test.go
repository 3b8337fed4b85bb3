package log_test

import (
	"context"
	"log/slog"
	"os"

	"github.com/ardnew/withblock/log"
)

func Example_basic() {
	logger := log.Make(os.Stdout)
	logger.Info("expansion started", slog.String("file", "src/main.rs"))
}

func Example_configuration() {
	logger := log.Make(os.Stdout,
		log.WithLevel(log.LevelDebug),
		log.WithTimeLayout("RFC3339Nano"),
		log.WithCaller(true))

	logger.Debug("call tokens", slog.String("tokens", "spawn(a)"))
}

func Example_levels() {
	logger := log.Make(os.Stdout, log.WithLevel(log.LevelWarn))

	logger.Debug("closure tokens")
	logger.Info("site expanded")
	logger.Warn("unknown macro resembles configured macro",
		slog.String("name", "with_blok"))
	logger.Error("expand failed", slog.String("error", "missing trailing block"))
}

func Example_textFormat() {
	logger := log.Make(os.Stdout,
		log.WithFormat(log.FormatText),
		log.WithTimeLayout("none"))
	logger.Info("site expanded", slog.String("macro", "with_block"))
	// Output:
	// level=INFO msg="site expanded" macro=with_block
}

func Example_withAttributes() {
	logger := log.Make(os.Stdout)
	logger = logger.With(slog.String("file", "src/lib.rs"))

	logger.Info("expanding")
	logger.Debug("cache lookup", slog.Bool("cache_hit", true))
}

func Example_withContext() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := log.Make(os.Stdout)

	logger.InfoContext(ctx, "expanding with context")
	logger.DebugContext(ctx, "site skipped", slog.String("position", "3:5"))
}

func Example_packageLogger() {
	log.Config(
		log.WithOutput(os.Stdout),
		log.WithFormat(log.FormatText),
		log.WithTimeLayout("none"),
	)
	defer log.Config(log.WithOutput(os.Stderr))

	log.Warn("no sites found", slog.String("file", "empty.rs"))
	// Output:
	// level=WARN msg="no sites found" file=empty.rs
}
