package cmd

import (
	"log/slog"
	"slices"
	"strings"
)

// Error is a command failure. The package-level values are sentinels;
// [Error.Wrap] and [Error.With] derive errors that still match them with
// [errors.Is] and log their attributes through [slog.LogValuer].
type Error struct {
	msg   string
	err   error
	attrs []slog.Attr
}

func NewError(msg string) *Error {
	return &Error{msg: msg}
}

func (e *Error) Error() string {
	// "<msg>: <err>", or whichever of the two is set
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel e was derived from. Errors made
// by [Error.Wrap] and [Error.With] share the message of their sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t.err == nil && len(t.attrs) == 0 && t.msg == e.msg
}

func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.Any("cause", e.err))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap returns a copy of e caused by err.
func (e *Error) Wrap(err error) *Error {
	return &Error{msg: e.msg, err: err, attrs: slices.Clip(e.attrs)}
}

// With returns a copy of e with attrs appended.
func (e *Error) With(attrs ...slog.Attr) *Error {
	return &Error{msg: e.msg, err: e.err, attrs: slices.Concat(e.attrs, attrs)}
}

var (
	ErrNoInput     = NewError("no script input")
	ErrOpenInput   = NewError("open script input")
	ErrBindings    = NewError("load bindings")
	ErrEvaluate    = NewError("evaluate script")
	ErrCompile     = NewError("compile script")
	ErrWriteOutput = NewError("write output")
	ErrJSONMarshal = NewError("marshal JSON")
	ErrYAMLMarshal = NewError("marshal YAML")
	ErrWriteConfig = NewError("write configuration file")
	ErrFileExists  = NewError("file exists (use --force to overwrite)")
)
