package lang

import (
	"errors"
	"fmt"
	"log/slog"
	"testing"
)

func TestError_Error(t *testing.T) {
	cause := errors.New("cause")

	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"message", ErrParse, "parse error"},
		{
			"attrs",
			ErrParse.With(slog.String("expected", "';'")),
			"parse error (expected=';')",
		},
		{
			"position",
			ErrLex.WithPosition(Position{Offset: 4, Line: 2, Column: 3}),
			"lex error at line 2, column 3",
		},
		{"wrapped", ErrCall.Wrap(cause), "function call failed: cause"},
		{"bare wrap", WrapError(cause), "cause"},
		{
			"everything",
			ErrCall.WithPosition(Position{Line: 1, Column: 5}).
				With(slog.String("function", "query.f"), slog.Int("n", 2)).
				Wrap(cause),
			"function call failed at line 1, column 5 (function=query.f, n=2): cause",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestError_Is(t *testing.T) {
	derived := ErrTypeMismatch.With(slog.String("k", "v")).WithPosition(Position{Line: 1, Column: 1})

	if !errors.Is(derived, ErrTypeMismatch) {
		t.Error("derived error does not match its sentinel")
	}

	if errors.Is(derived, ErrParse) {
		t.Error("derived error matches an unrelated sentinel")
	}

	wrapped := fmt.Errorf("outer: %w", derived)
	if !errors.Is(wrapped, ErrTypeMismatch) {
		t.Error("fmt-wrapped error lost its sentinel")
	}

	if errors.Is(WrapError(errors.New("x")), ErrCall) {
		t.Error("kindless error matches a sentinel")
	}

	cause := errors.New("root")
	if !errors.Is(ErrCall.Wrap(cause), cause) {
		t.Error("wrapped cause not reachable")
	}
}

func TestError_Immutable(t *testing.T) {
	base := ErrParse.With(slog.String("a", "1"))
	_ = base.With(slog.String("b", "2"))
	_ = base.WithPosition(Position{Line: 3, Column: 1})

	if got := base.Error(); got != "parse error (a=1)" {
		t.Errorf("base modified: %q", got)
	}

	if got := ErrParse.Error(); got != "parse error" {
		t.Errorf("sentinel modified: %q", got)
	}
}

func TestWrapError(t *testing.T) {
	orig := ErrLex.With(slog.String("k", "v"))

	if got := WrapError(fmt.Errorf("ctx: %w", orig)); got != orig {
		t.Errorf("WrapError did not return the wrapped *Error")
	}
}

func TestError_LogValue(t *testing.T) {
	err := ErrCall.WithPosition(Position{Line: 2, Column: 4}).
		With(slog.String("function", "math.acos")).
		Wrap(errors.New("out of range"))

	got := map[string]string{}
	for _, a := range err.LogValue().Group() {
		got[a.Key] = a.Value.String()
	}

	want := map[string]string{
		"error":    "function call failed",
		"position": "2:4",
		"cause":    "out of range",
		"function": "math.acos",
	}

	for k, v := range want {
		if got[k] != v {
			t.Errorf("LogValue[%s] = %q, want %q", k, got[k], v)
		}
	}
}

func TestError_Snippet(t *testing.T) {
	src := "v.a = 1;\r\nv.b = $;"

	err := ErrLex.WithPosition(Position{Offset: 16, Line: 2, Column: 7}).WithSource(src)

	want := "  2 | v.b = $;\n" +
		"            ^\n"
	if got := err.Snippet(); got != want {
		t.Errorf("Snippet() =\n%q\nwant\n%q", got, want)
	}

	if ErrLex.WithSource(src).Snippet() != "" {
		t.Error("snippet without position should be empty")
	}

	if ErrLex.WithPosition(Position{Line: 9, Column: 1}).WithSource(src).Snippet() != "" {
		t.Error("snippet past the last line should be empty")
	}
}

func TestSuggest(t *testing.T) {
	names := []string{"anim_time", "is_on_ground", "life_time"}

	if got := suggest("anim_tim", names); got != "anim_time" {
		t.Errorf("suggest(anim_tim) = %q", got)
	}

	if got := suggest("zzz", names); got != "" {
		t.Errorf("suggest(zzz) = %q, want none", got)
	}

	if got := suggest("", names); got != "" {
		t.Errorf("suggest(\"\") = %q, want none", got)
	}
}
