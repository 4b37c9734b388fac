package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// palette holds the styles of the pretty handlers. Styles are bound to a
// renderer for the handler's output, so nothing is colored unless that
// output is a terminal.
type palette struct {
	key, message, text, number, time lipgloss.Style
	truth, falsity, null, source     lipgloss.Style
	trace, debug, info, warn, err    lipgloss.Style
}

func newPalette(w io.Writer) palette {
	r := lipgloss.NewRenderer(w)
	fg := func(c string) lipgloss.Style {
		return r.NewStyle().Foreground(lipgloss.Color(c))
	}

	return palette{
		key:     fg("8"),
		message: r.NewStyle().Bold(true),
		text:    fg("6"),
		number:  fg("3"),
		time:    fg("4"),
		truth:   fg("2"),
		falsity: fg("1"),
		null:    fg("8").Italic(true),
		source:  fg("8").Underline(true),
		trace:   fg("5"),
		debug:   fg("4"),
		info:    fg("2"),
		warn:    fg("3").Bold(true),
		err:     fg("1").Bold(true),
	}
}

func (p palette) level(l slog.Level) lipgloss.Style {
	switch {
	case l >= slog.LevelError:
		return p.err
	case l >= slog.LevelWarn:
		return p.warn
	case l >= slog.LevelInfo:
		return p.info
	case l >= slog.LevelDebug:
		return p.debug
	default:
		return p.trace
	}
}

// prettyHandler writes colorized records, either as a single line of
// key=value pairs or as an indented JSON object.
type prettyHandler struct {
	opts   slog.HandlerOptions
	colors palette
	mu     *sync.Mutex
	w      io.Writer
	group  string
	attrs  []slog.Attr
	json   bool
}

func newPrettyHandler(w io.Writer, opts *slog.HandlerOptions, json bool) *prettyHandler {
	return &prettyHandler{
		opts:   *opts,
		colors: newPalette(w),
		mu:     &sync.Mutex{},
		w:      w,
		json:   json,
	}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	threshold := slog.LevelInfo
	if h.opts.Level != nil {
		threshold = h.opts.Level.Level()
	}

	return level >= threshold
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}

	c := *h
	c.attrs = slices.Clip(h.attrs)

	for _, a := range attrs {
		c.attrs = flatten(c.attrs, h.group, a)
	}

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.group = join(h.group, name)

	return &c
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	var head []field

	if !r.Time.IsZero() {
		if a := h.replace(slog.Time(slog.TimeKey, r.Time)); a.Key != "" {
			head = append(head, field{a.Key, h.colors.time.Render(a.Value.String()), a.Value})
		}
	}

	if a := h.replace(slog.Any(slog.LevelKey, r.Level)); a.Key != "" {
		name := a.Value.String()
		if !h.json {
			name = fmt.Sprintf("%-5s", name)
		}

		head = append(head, field{a.Key, h.colors.level(r.Level).Render(name), slog.StringValue(a.Value.String())})
	}

	if h.opts.AddSource {
		if src := r.Source(); src != nil && src.File != "" {
			loc := src.File + ":" + strconv.Itoa(src.Line)
			head = append(head, field{slog.SourceKey, h.colors.source.Render(loc), slog.StringValue(loc)})
		}
	}

	head = append(head, field{slog.MessageKey, h.colors.message.Render(r.Message), slog.StringValue(r.Message)})

	attrs := slices.Clip(h.attrs)
	r.Attrs(func(a slog.Attr) bool {
		attrs = flatten(attrs, h.group, a)

		return true
	})

	buf := new(bytes.Buffer)
	if h.json {
		h.writeJSON(buf, head, attrs)
	} else {
		h.writeText(buf, head, attrs)
	}

	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

// field is a built-in record element with its pre-rendered text.
type field struct {
	key      string
	rendered string
	value    slog.Value
}

func (h *prettyHandler) replace(a slog.Attr) slog.Attr {
	if h.opts.ReplaceAttr == nil {
		if t, ok := a.Value.Any().(time.Time); ok {
			a.Value = slog.StringValue(t.Format(time.RFC3339))
		}

		return a
	}

	return h.opts.ReplaceAttr(nil, a)
}

func (h *prettyHandler) writeText(buf *bytes.Buffer, head []field, attrs []slog.Attr) {
	for i, f := range head {
		if i > 0 {
			buf.WriteByte(' ')
		}

		buf.WriteString(f.rendered)
	}

	for _, a := range attrs {
		buf.WriteByte(' ')
		buf.WriteString(h.colors.key.Render(a.Key + "="))
		buf.WriteString(h.value(a.Value, false))
	}
}

func (h *prettyHandler) writeJSON(buf *bytes.Buffer, head []field, attrs []slog.Attr) {
	buf.WriteString("{")

	sep := "\n  "
	for _, f := range head {
		buf.WriteString(sep)
		buf.WriteString(h.colors.key.Render(strconv.Quote(f.key)))
		buf.WriteString(": ")

		if f.key == slog.LevelKey || f.key == slog.MessageKey {
			buf.WriteString(h.styleOf(f).Render(strconv.Quote(f.value.String())))
		} else {
			buf.WriteString(h.value(f.value, true))
		}

		sep = ",\n  "
	}

	for _, a := range attrs {
		buf.WriteString(sep)
		buf.WriteString(h.colors.key.Render(strconv.Quote(a.Key)))
		buf.WriteString(": ")
		buf.WriteString(h.value(a.Value, true))
	}

	buf.WriteString("\n}")
}

func (h *prettyHandler) styleOf(f field) lipgloss.Style {
	if f.key == slog.LevelKey {
		var l slog.Level
		if err := l.UnmarshalText([]byte(f.value.String())); err == nil {
			return h.colors.level(l)
		}

		return h.colors.trace
	}

	return h.colors.message
}

// value renders v; quoted selects JSON string syntax for non-scalar kinds.
func (h *prettyHandler) value(v slog.Value, quoted bool) string {
	str := func(s string) string {
		return h.colors.text.Render(maybeQuote(s, quoted))
	}

	switch v.Kind() {
	case slog.KindString:
		return str(v.String())
	case slog.KindInt64:
		return h.colors.number.Render(strconv.FormatInt(v.Int64(), 10))
	case slog.KindUint64:
		return h.colors.number.Render(strconv.FormatUint(v.Uint64(), 10))
	case slog.KindFloat64:
		return h.colors.number.Render(strconv.FormatFloat(v.Float64(), 'g', -1, 64))
	case slog.KindBool:
		if v.Bool() {
			return h.colors.truth.Render("true")
		}

		return h.colors.falsity.Render("false")
	case slog.KindDuration:
		return str(v.Duration().String())
	case slog.KindTime:
		return h.colors.time.Render(maybeQuote(v.Time().Format(time.RFC3339), quoted))
	case slog.KindAny:
		if v.Any() == nil {
			return h.colors.null.Render("null")
		}

		if err, ok := v.Any().(error); ok {
			return h.colors.falsity.Render(maybeQuote(err.Error(), quoted))
		}
	}

	return str(v.String())
}

func maybeQuote(s string, quoted bool) string {
	if quoted {
		return strconv.Quote(s)
	}

	return s
}

// flatten appends a to dst with its key qualified by group. Group values
// are expanded into dotted keys and LogValuers are resolved.
func flatten(dst []slog.Attr, group string, a slog.Attr) []slog.Attr {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return dst
	}

	key := join(group, a.Key)

	if a.Value.Kind() == slog.KindGroup {
		for _, g := range a.Value.Group() {
			dst = flatten(dst, key, g)
		}

		return dst
	}

	return append(dst, slog.Attr{Key: key, Value: a.Value})
}

func join(group, key string) string {
	switch {
	case group == "":
		return key
	case key == "":
		return group
	default:
		return group + "." + key
	}
}
