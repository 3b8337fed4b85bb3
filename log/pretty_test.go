package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

type siteError struct {
	macro string
	line  int
}

func (e siteError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("error", "missing trailing block"),
		slog.String("macro", e.macro),
		slog.Int("line", e.line),
	)
}

func TestPrettyText_PlainOutputWithoutTerminal(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithFormat(FormatText), WithTimeLayout("none"))
	logger.Info("site expanded", slog.String("macro", "with_block"), slog.Int("depth", 1))

	want := "level=INFO msg=\"site expanded\" macro=with_block depth=1\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestPrettyText_FlattensGroups(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithFormat(FormatText), WithTimeLayout("none"))
	logger.Error("expand failed", slog.Any("err", siteError{"with_block", 3}))

	out := buf.String()
	for _, want := range []string{
		`err.error="missing trailing block"`,
		"err.macro=with_block",
		"err.line=3",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}
}

func TestPrettyText_WithAttrsKept(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithFormat(FormatText), WithTimeLayout("none")).
		With(slog.String("file", "src/main.rs"))
	logger.Warn("unknown macro")

	if !strings.Contains(buf.String(), "file=src/main.rs") {
		t.Errorf("output missing logger attribute: %s", buf.String())
	}
}

func TestPrettyText_TraceLevelName(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithFormat(FormatText), WithLevel(LevelTrace), WithTimeLayout("none"))
	logger.Trace("cache lookup")

	if !strings.HasPrefix(buf.String(), "level=TRACE ") {
		t.Errorf("output = %q, want TRACE level", buf.String())
	}
}

func TestPrettyJSON_Groups(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithFormat(FormatJSON), WithTimeLayout("none")).
		With(slog.String("file", "lib.rs"))
	logger.Error("expand failed", slog.Any("err", siteError{"block", 7}))

	want := "{\n" +
		"  \"level\": \"ERROR\",\n" +
		"  \"msg\": \"expand failed\",\n" +
		"  \"file\": \"lib.rs\",\n" +
		"  \"err\": {\n" +
		"    \"error\": \"missing trailing block\",\n" +
		"    \"macro\": \"block\",\n" +
		"    \"line\": 7\n" +
		"  }\n" +
		"}\n"

	if got := buf.String(); got != want {
		t.Errorf("output =\n%s\nwant:\n%s", got, want)
	}
}

func TestLogger_Enabled(t *testing.T) {
	var zero Logger
	if zero.Enabled(DefaultContextProvider(), LevelError) {
		t.Error("zero Logger reports enabled")
	}

	logger := Make(nil, WithLevel(LevelWarn))

	if logger.Enabled(DefaultContextProvider(), LevelInfo) {
		t.Error("info enabled at warn level")
	}

	if !logger.Enabled(DefaultContextProvider(), LevelError) {
		t.Error("error disabled at warn level")
	}
}

func TestLogger_Wrap_ZeroValue(t *testing.T) {
	var zero Logger

	l := zero.Wrap(WithLevel(LevelDebug))
	if l.Level() != LevelDebug {
		t.Errorf("Level() = %v, want %v", l.Level(), LevelDebug)
	}

	l.Debug("discarded")
}
