package lang

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/sahilm/fuzzy"
)

// Predefined errors (sentinel values).
//
// Every error returned by this package matches exactly one of these with
// [errors.Is], regardless of the attributes or position attached to it.
var (
	ErrLex             = NewError("lex error")
	ErrParse           = NewError("parse error")
	ErrUnknownBinding  = NewError("unknown binding")
	ErrUnknownFunction = NewError("unknown function")
	ErrArityMismatch   = NewError("arity mismatch")
	ErrTypeMismatch    = NewError("type mismatch")
	ErrReadOnlyScope   = NewError("read-only scope")
	ErrIterationLimit  = NewError("iteration limit exceeded")
	ErrCall            = NewError("function call failed")
	ErrReadInput       = NewError("failed to read input")
)

// Position identifies a location in script source.
// Line and Column are 1-based; Offset is the 0-based byte offset.
type Position struct {
	Offset int
	Line   int
	Column int
}

// String returns the position as "line:column".
func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// IsValid reports whether the position was set.
func (p Position) IsValid() bool { return p.Line > 0 }

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	kind   *Error // sentinel this error derives from
	msg    string
	err    error       // Wrapped error (for errors.Unwrap)
	attrs  []slog.Attr // Attributes for structured logging
	pos    Position
	source string
}

// NewError creates a new Error with a message.
// The returned value is its own kind, so it can be used as a sentinel.
func NewError(msg string) *Error {
	e := &Error{msg: msg}
	e.kind = e

	return e
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	// Build error message using the available fields:
	//
	//   "<msg> at line L, column C (k=v, ...): <err>"
	var sb strings.Builder

	sb.WriteString(e.msg)

	if e.pos.IsValid() {
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}

		fmt.Fprintf(&sb, "at line %d, column %d", e.pos.Line, e.pos.Column)
	}

	if len(e.attrs) > 0 {
		sb.WriteString(" (")

		for i, a := range e.attrs {
			if i > 0 {
				sb.WriteString(", ")
			}

			sb.WriteString(a.Key)
			sb.WriteByte('=')
			sb.WriteString(a.Value.String())
		}

		sb.WriteByte(')')
	}

	if e.err != nil {
		if sb.Len() > 0 {
			sb.WriteString(": ")
		}

		sb.WriteString(e.err.Error())
	}

	return sb.String()
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel e was derived from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.kind == nil {
		return false
	}

	return e.kind == t.kind
}

// Position returns the source position attached to the error, if any.
func (e *Error) Position() (Position, bool) {
	return e.pos, e.pos.IsValid()
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+3)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.pos.IsValid() {
		attrs = append(attrs, slog.String("position", e.pos.String()))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	c := e.clone()
	c.err = err

	return c
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	c := e.clone()
	c.attrs = make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(c.attrs, e.attrs)
	copy(c.attrs[len(e.attrs):], attrs)

	return c
}

// WithPosition returns a copy of the error located at pos.
func (e *Error) WithPosition(pos Position) *Error {
	c := e.clone()
	c.pos = pos

	return c
}

// WithSource returns a copy of the error that retains the script source,
// which enables [Error.Snippet].
func (e *Error) WithSource(source string) *Error {
	c := e.clone()
	c.source = source

	return c
}

func (e *Error) clone() *Error {
	c := *e

	return &c
}

// Snippet renders the source line containing the error position followed
// by a caret under the offending column. It returns the empty string if
// either the source or the position is unknown.
func (e *Error) Snippet() string {
	if e.source == "" || !e.pos.IsValid() {
		return ""
	}

	lines := strings.Split(e.source, "\n")
	if e.pos.Line > len(lines) {
		return ""
	}

	var sb strings.Builder

	num := strconv.Itoa(e.pos.Line)

	sb.WriteString("  ")
	sb.WriteString(num)
	sb.WriteString(" | ")
	sb.WriteString(strings.TrimRight(lines[e.pos.Line-1], "\r"))
	sb.WriteByte('\n')

	// +5 accounts for: 2 leading spaces + " | " (3 chars)
	sb.WriteString(strings.Repeat(" ", len(num)+5+max(e.pos.Column-1, 0)))
	sb.WriteString("^\n")

	return sb.String()
}

// suggest returns the candidate closest to name, or the empty string if
// nothing matches.
func suggest(name string, candidates []string) string {
	if name == "" || len(candidates) == 0 {
		return ""
	}

	matches := fuzzy.Find(name, candidates)
	if len(matches) == 0 {
		return ""
	}

	return matches[0].Str
}

// withSuggestion attaches a "did you mean" hint to err when one is found.
func withSuggestion(err *Error, name string, candidates []string) *Error {
	if s := suggest(name, candidates); s != "" && s != name {
		return err.With(slog.String("hint", "did you mean "+strconv.Quote(s)+"?"))
	}

	return err
}
