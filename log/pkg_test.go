package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

// swapDefault replaces the package-level logger for the duration of t.
func swapDefault(t *testing.T, l Logger) {
	t.Helper()

	defaultMu.Lock()
	original := defaultLog
	defaultLog = l
	defaultMu.Unlock()

	t.Cleanup(func() {
		defaultMu.Lock()
		defaultLog = original
		defaultMu.Unlock()
	})
}

func TestPackage_Functions(t *testing.T) {
	var buf bytes.Buffer

	swapDefault(t, plainJSON(&buf, WithLevel(LevelTrace)))

	ctx := context.Background()

	tests := []struct {
		level string
		log   func(string, ...slog.Attr)
	}{
		{"TRACE", Trace},
		{"DEBUG", Debug},
		{"INFO", Info},
		{"WARN", Warn},
		{"ERROR", Error},
		{"TRACE", func(m string, a ...slog.Attr) { TraceContext(ctx, m, a...) }},
		{"DEBUG", func(m string, a ...slog.Attr) { DebugContext(ctx, m, a...) }},
		{"INFO", func(m string, a ...slog.Attr) { InfoContext(ctx, m, a...) }},
		{"WARN", func(m string, a ...slog.Attr) { WarnContext(ctx, m, a...) }},
		{"ERROR", func(m string, a ...slog.Attr) { ErrorContext(ctx, m, a...) }},
	}

	for _, tt := range tests {
		buf.Reset()
		tt.log("macros configured", slog.String("macros", "with_block"))

		entry := decode(t, buf.Bytes())
		if entry["level"] != tt.level || entry["macros"] != "with_block" {
			t.Errorf("entry = %v, want level %s", entry, tt.level)
		}
	}
}

func TestPackage_Config(t *testing.T) {
	var buf bytes.Buffer

	swapDefault(t, plainJSON(&buf))

	Config(WithFormat(FormatText), WithLevel(LevelWarn))

	Info("dropped")
	Warn("unknown macro", slog.String("name", "with_blok"))

	out := buf.String()
	if strings.Contains(out, "dropped") || !strings.Contains(out, "name=with_blok") {
		t.Errorf("output = %q", out)
	}

	var other bytes.Buffer

	SetOutput(&other)
	Error("expand failed")

	if !strings.Contains(other.String(), "expand failed") || strings.Contains(buf.String(), "expand failed") {
		t.Errorf("SetOutput did not redirect: %q", other.String())
	}
}
