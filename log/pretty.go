package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// palette holds the styles used by the pretty handlers. Styles are bound
// to a renderer for the output writer, so color is dropped automatically
// when the output is not a terminal.
type palette struct {
	key   lipgloss.Style
	str   lipgloss.Style
	num   lipgloss.Style
	yes   lipgloss.Style
	no    lipgloss.Style
	dur   lipgloss.Style
	time  lipgloss.Style
	null  lipgloss.Style
	trace lipgloss.Style
	debug lipgloss.Style
	info  lipgloss.Style
	warn  lipgloss.Style
	error lipgloss.Style
}

func newPalette(w io.Writer) *palette {
	r := lipgloss.NewRenderer(w)
	fg := func(c string) lipgloss.Style {
		return r.NewStyle().Foreground(lipgloss.Color(c))
	}

	return &palette{
		key:   fg("8"),
		str:   fg("6"),
		num:   fg("3"),
		yes:   fg("2"),
		no:    fg("1"),
		dur:   fg("5"),
		time:  fg("4"),
		null:  fg("8"),
		trace: fg("8").Bold(true),
		debug: fg("4").Bold(true),
		info:  fg("2").Bold(true),
		warn:  fg("3").Bold(true),
		error: fg("1").Bold(true),
	}
}

func (p *palette) level(l slog.Level, text string) string {
	switch {
	case l >= slog.LevelError:
		return p.error.Render(text)
	case l >= slog.LevelWarn:
		return p.warn.Render(text)
	case l >= slog.LevelInfo:
		return p.info.Render(text)
	case l >= slog.LevelDebug:
		return p.debug.Render(text)
	default:
		return p.trace.Render(text)
	}
}

// replace applies the configured ReplaceAttr to a built-in attribute.
// It reports false when the attribute was removed.
func replace(opts *slog.HandlerOptions, groups []string, a slog.Attr) (slog.Attr, bool) {
	if opts.ReplaceAttr != nil {
		a = opts.ReplaceAttr(groups, a)
	}

	return a, !a.Equal(slog.Attr{})
}

// prettyTextHandler writes one colorized key=value line per record.
type prettyTextHandler struct {
	opts   slog.HandlerOptions
	mu     *sync.Mutex
	w      io.Writer
	style  *palette
	prefix string // dotted group path for attributes added later
	attrs  []byte // preformatted attributes from WithAttrs
}

func newPrettyTextHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
) *prettyTextHandler {
	return &prettyTextHandler{
		opts:  *opts,
		mu:    &sync.Mutex{},
		w:     w,
		style: newPalette(w),
	}
}

func (h *prettyTextHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h *prettyTextHandler) Handle(_ context.Context, r slog.Record) error {
	buf := new(bytes.Buffer)

	if !r.Time.IsZero() {
		if a, ok := replace(&h.opts, nil, slog.Time(slog.TimeKey, r.Time)); ok {
			h.writeAttr(buf, "", a)
		}
	}

	if a, ok := replace(&h.opts, nil, slog.Any(slog.LevelKey, r.Level)); ok {
		h.writeSep(buf)
		buf.WriteString(h.style.key.Render(a.Key) + "=")
		buf.WriteString(h.style.level(r.Level, a.Value.String()))
	}

	if h.opts.AddSource {
		if src := r.Source(); src != nil {
			h.writeAttr(buf, "", slog.String(slog.SourceKey,
				src.File+":"+strconv.Itoa(src.Line)))
		}
	}

	h.writeAttr(buf, "", slog.String(slog.MessageKey, r.Message))

	if len(h.attrs) > 0 {
		h.writeSep(buf)
		buf.Write(h.attrs)
	}

	r.Attrs(func(a slog.Attr) bool {
		h.writeAttr(buf, h.prefix, a)

		return true
	})

	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyTextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}

	buf := bytes.NewBuffer(append([]byte(nil), h.attrs...))

	for _, a := range attrs {
		h.writeAttr(buf, h.prefix, a)
	}

	c := *h
	c.attrs = buf.Bytes()

	return &c
}

func (h *prettyTextHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.prefix = h.prefix + name + "."

	return &c
}

func (h *prettyTextHandler) writeSep(buf *bytes.Buffer) {
	if buf.Len() > 0 {
		buf.WriteByte(' ')
	}
}

// writeAttr writes a as key=value. Group values are flattened into dotted
// keys.
func (h *prettyTextHandler) writeAttr(buf *bytes.Buffer, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()

	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		if a.Key != "" {
			prefix += a.Key + "."
		}

		for _, g := range a.Value.Group() {
			h.writeAttr(buf, prefix, g)
		}

		return
	}

	h.writeSep(buf)
	buf.WriteString(h.style.key.Render(prefix+a.Key) + "=")
	buf.WriteString(h.formatValue(a.Value))
}

func (h *prettyTextHandler) formatValue(v slog.Value) string {
	s := h.style

	switch v.Kind() {
	case slog.KindString:
		text := v.String()
		if strings.ContainsAny(text, " \t\n\"=") {
			text = strconv.Quote(text)
		}

		return s.str.Render(text)

	case slog.KindInt64:
		return s.num.Render(strconv.FormatInt(v.Int64(), 10))

	case slog.KindUint64:
		return s.num.Render(strconv.FormatUint(v.Uint64(), 10))

	case slog.KindFloat64:
		return s.num.Render(strconv.FormatFloat(v.Float64(), 'g', -1, 64))

	case slog.KindBool:
		if v.Bool() {
			return s.yes.Render("true")
		}

		return s.no.Render("false")

	case slog.KindDuration:
		return s.dur.Render(v.Duration().String())

	case slog.KindTime:
		return s.time.Render(v.Time().String())

	default:
		if v.Any() == nil {
			return s.null.Render("<nil>")
		}

		return s.str.Render(fmt.Sprint(v.Any()))
	}
}

// prettyJSONHandler writes each record as an indented, colorized JSON-like
// object.
type prettyJSONHandler struct {
	opts  slog.HandlerOptions
	mu    *sync.Mutex
	w     io.Writer
	style *palette
	attrs []slog.Attr
}

func newPrettyJSONHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
) *prettyJSONHandler {
	return &prettyJSONHandler{
		opts:  *opts,
		mu:    &sync.Mutex{},
		w:     w,
		style: newPalette(w),
	}
}

func (h *prettyJSONHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h *prettyJSONHandler) Handle(_ context.Context, r slog.Record) error {
	buf := new(bytes.Buffer)
	buf.WriteString("{")

	first := true

	if !r.Time.IsZero() {
		if a, ok := replace(&h.opts, nil, slog.Time(slog.TimeKey, r.Time)); ok {
			h.writeField(buf, 1, a, &first)
		}
	}

	if a, ok := replace(&h.opts, nil, slog.Any(slog.LevelKey, r.Level)); ok {
		h.writeKey(buf, 1, a.Key, &first)
		buf.WriteString(h.style.level(r.Level, strconv.Quote(a.Value.String())))
	}

	if h.opts.AddSource {
		if src := r.Source(); src != nil {
			h.writeField(buf, 1, slog.String(slog.SourceKey,
				src.File+":"+strconv.Itoa(src.Line)), &first)
		}
	}

	h.writeField(buf, 1, slog.String(slog.MessageKey, r.Message), &first)

	for _, a := range h.attrs {
		h.writeField(buf, 1, a, &first)
	}

	r.Attrs(func(a slog.Attr) bool {
		h.writeField(buf, 1, a, &first)

		return true
	})

	buf.WriteString("\n}\n")

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyJSONHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = append(h.attrs[:len(h.attrs):len(h.attrs)], attrs...)

	return &c
}

// WithGroup is not supported; grouped attributes are written at the top
// level.
func (h *prettyJSONHandler) WithGroup(string) slog.Handler { return h }

func (h *prettyJSONHandler) writeKey(buf *bytes.Buffer, depth int, key string, first *bool) {
	if !*first {
		buf.WriteByte(',')
	}

	*first = false

	buf.WriteString("\n" + strings.Repeat("  ", depth))
	buf.WriteString(h.style.key.Render(strconv.Quote(key)) + ": ")
}

func (h *prettyJSONHandler) writeField(buf *bytes.Buffer, depth int, a slog.Attr, first *bool) {
	a.Value = a.Value.Resolve()

	if a.Equal(slog.Attr{}) {
		return
	}

	h.writeKey(buf, depth, a.Key, first)

	if a.Value.Kind() == slog.KindGroup {
		buf.WriteString("{")

		inner := true

		for _, g := range a.Value.Group() {
			h.writeField(buf, depth+1, g, &inner)
		}

		buf.WriteString("\n" + strings.Repeat("  ", depth) + "}")

		return
	}

	h.writeValue(buf, a.Value)
}

func (h *prettyJSONHandler) writeValue(buf *bytes.Buffer, v slog.Value) {
	s := h.style

	switch v.Kind() {
	case slog.KindString:
		buf.WriteString(s.str.Render(strconv.Quote(v.String())))

	case slog.KindInt64, slog.KindUint64, slog.KindFloat64:
		buf.WriteString(s.num.Render(v.String()))

	case slog.KindBool:
		if v.Bool() {
			buf.WriteString(s.yes.Render("true"))
		} else {
			buf.WriteString(s.no.Render("false"))
		}

	case slog.KindDuration:
		buf.WriteString(s.dur.Render(strconv.Quote(v.Duration().String())))

	case slog.KindTime:
		buf.WriteString(s.time.Render(strconv.Quote(v.Time().String())))

	default:
		if v.Any() == nil {
			buf.WriteString(s.null.Render("null"))

			return
		}

		buf.WriteString(s.str.Render(strconv.Quote(fmt.Sprint(v.Any()))))
	}
}
