package log

//go:generate go tool stringer --linecomment --type Level,Format --output config_string.go

import (
	"io"
	"iter"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Level is the severity of a log message.
type Level slog.Level

const (
	LevelTrace Level = Level(slog.LevelDebug - 4) // trace
	LevelDebug Level = Level(slog.LevelDebug)     // debug
	LevelInfo  Level = Level(slog.LevelInfo)      // info
	LevelWarn  Level = Level(slog.LevelWarn)      // warn
	LevelError Level = Level(slog.LevelError)     // error
)

// DefaultLevel is used when no level is configured or a level string does
// not parse.
const DefaultLevel = LevelWarn

var allLevels = []Level{LevelTrace, LevelDebug, LevelInfo, LevelWarn, LevelError}

// Levels yields the names of all defined levels from most to least verbose.
func Levels() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, l := range allLevels {
			if !yield(l.String()) {
				return
			}
		}
	}
}

// ParseLevel returns the level named by s. Names are case-insensitive and
// follow [slog.Level.UnmarshalText], including "+N"/"-N" offsets, with the
// addition of "trace". Unrecognized input yields [DefaultLevel].
func ParseLevel(s string) Level {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, LevelTrace.String()) {
		return LevelTrace
	}

	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return DefaultLevel
	}

	return Level(l)
}

// Format selects the encoding of log records.
type Format int

const (
	FormatText Format = iota // text
	FormatJSON               // json
)

// DefaultFormat is used when no format is configured.
const DefaultFormat = FormatText

// Formats yields the names of all defined formats.
func Formats() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, f := range []Format{FormatText, FormatJSON} {
			if !yield(f.String()) {
				return
			}
		}
	}
}

// ParseFormat returns the format named by s, or [DefaultFormat].
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case FormatJSON.String():
		return FormatJSON
	case FormatText.String():
		return FormatText
	default:
		return DefaultFormat
	}
}

// FormatTime renders a record timestamp. An empty result omits the time.
type FormatTime func(time.Time) string

const (
	// DefaultTimeLayout is used when no time layout is configured.
	DefaultTimeLayout = "stampmilli"
	// DefaultCaller disables source locations by default.
	DefaultCaller = false
	// DefaultPretty enables the colorized handlers by default.
	DefaultPretty = true
)

// Option modifies a logger configuration.
type Option func(config) config

// config is immutable once a Logger holds it; options return modified
// copies.
type config struct {
	output     io.Writer
	formatTime FormatTime
	level      Level
	format     Format
	caller     bool
	pretty     bool
}

func makeConfig(w io.Writer, opts ...Option) config {
	return apply(WithDefaults(w)(config{}), opts...)
}

func apply(c config, opts ...Option) config {
	for _, opt := range opts {
		if opt != nil {
			c = opt(c)
		}
	}

	return c
}

// replaceAttr renders the time with the configured layout and the level by
// its upper-case name so that trace records read TRACE rather than DEBUG-4.
func (c config) replaceAttr(_ []string, a slog.Attr) slog.Attr {
	switch a.Key {
	case slog.TimeKey:
		if t, ok := a.Value.Any().(time.Time); ok {
			s := c.formatTime(t)
			if s == "" {
				return slog.Attr{}
			}

			a.Value = slog.StringValue(s)
		}

	case slog.LevelKey:
		if l, ok := a.Value.Any().(slog.Level); ok {
			a.Value = slog.StringValue(levelName(l))
		}
	}

	return a
}

func (c config) handler() slog.Handler {
	opts := &slog.HandlerOptions{
		AddSource:   c.caller,
		Level:       slog.Level(c.level),
		ReplaceAttr: c.replaceAttr,
	}

	switch {
	case c.format != FormatText && c.format != FormatJSON:
		return slog.DiscardHandler
	case c.pretty:
		return newPrettyHandler(c.output, opts, c.format == FormatJSON)
	case c.format == FormatJSON:
		return slog.NewJSONHandler(c.output, opts)
	default:
		return slog.NewTextHandler(c.output, opts)
	}
}

// levelName names l by the nearest defined level at or below it, adding an
// offset for levels in between (e.g. "INFO+2").
func levelName(l slog.Level) string {
	i := len(allLevels) - 1
	for i > 0 && slog.Level(allLevels[i]) > l {
		i--
	}

	base := allLevels[i]
	name := strings.ToUpper(base.String())

	if d := int(l) - int(base); d != 0 {
		var sign string
		if d > 0 {
			sign = "+"
		}

		return name + sign + strconv.Itoa(d)
	}

	return name
}

// WithDefaults resets every setting to its default and directs output to w.
func WithDefaults(w io.Writer) Option {
	return func(config) config {
		return config{
			output:     orDiscard(w),
			formatTime: makeFormatTimeFunc(DefaultTimeLayout),
			level:      DefaultLevel,
			format:     DefaultFormat,
			caller:     DefaultCaller,
			pretty:     DefaultPretty,
		}
	}
}

// WithOutput directs log output to w, or discards it if w is nil.
func WithOutput(w io.Writer) Option {
	return func(c config) config {
		c.output = orDiscard(w)

		return c
	}
}

// WithLevel sets the minimum level of emitted records.
func WithLevel(level Level) Option {
	return func(c config) config {
		c.level = level

		return c
	}
}

// WithFormat sets the record encoding.
func WithFormat(format Format) Option {
	return func(c config) config {
		c.format = format

		return c
	}
}

// WithTimeLayout sets the timestamp layout.
//
// Named layouts from package [time] are matched case-insensitively ignoring
// punctuation ("RFC3339", "rfc-3339-nano", "kitchen"), along with the short
// names "ms", "us" and "ns". Anything else is passed to [time.Time.Format]
// verbatim. An empty layout or "none" omits timestamps.
func WithTimeLayout(layout string) Option {
	return func(c config) config {
		c.formatTime = makeFormatTimeFunc(layout)

		return c
	}
}

// WithCaller includes the source location of each record.
func WithCaller(enable bool) Option {
	return func(c config) config {
		c.caller = enable

		return c
	}
}

// WithPretty selects the colorized handlers. Colors are only emitted when
// the output is a terminal.
func WithPretty(enable bool) Option {
	return func(c config) config {
		c.pretty = enable

		return c
	}
}

func orDiscard(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}

	return w
}

var timeLayout = map[string]string{
	"rfc3339":     time.RFC3339,
	"rfc3339nano": time.RFC3339Nano,
	"ansic":       time.ANSIC,
	"unixdate":    time.UnixDate,
	"rubydate":    time.RubyDate,
	"rfc822":      time.RFC822,
	"rfc822z":     time.RFC822Z,
	"rfc850":      time.RFC850,
	"rfc1123":     time.RFC1123,
	"rfc1123z":    time.RFC1123Z,
	"kitchen":     time.Kitchen,
	"datetime":    time.DateTime,
	"dateonly":    time.DateOnly,
	"timeonly":    time.TimeOnly,
	"stamp":       time.Stamp,
	"stampmilli":  time.StampMilli,
	"stampmicro":  time.StampMicro,
	"stampnano":   time.StampNano,
	"ms":          time.StampMilli,
	"us":          time.StampMicro,
	"ns":          time.StampNano,
	"none":        "",
}

// TimeLayouts returns the sorted names accepted by [WithTimeLayout].
func TimeLayouts() []string {
	names := make([]string, 0, len(timeLayout))
	for name := range timeLayout {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

func makeFormatTimeFunc(layout string) FormatTime {
	key := strings.Map(
		func(r rune) rune {
			if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
				return r
			}

			return -1
		},
		strings.ToLower(layout),
	)

	if std, ok := timeLayout[key]; ok {
		layout = std
	}

	if strings.TrimSpace(layout) == "" {
		return func(time.Time) string { return "" }
	}

	return func(t time.Time) string { return t.Format(layout) }
}
