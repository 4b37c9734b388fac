package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestPackage_UsesDefault(t *testing.T) {
	original := Default()
	t.Cleanup(func() { SetDefault(original) })

	var buf bytes.Buffer

	SetDefault(Make(&buf, WithLevel(LevelTrace), WithFormat(FormatJSON), WithPretty(false)))

	tests := []struct {
		name  string
		fn    func(string, ...slog.Attr)
		level string
	}{
		{"Trace", Trace, "TRACE"},
		{"Debug", Debug, "DEBUG"},
		{"Info", Info, "INFO"},
		{"Warn", Warn, "WARN"},
		{"Error", Error, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.fn("message", slog.String("key", "value"))

			out := buf.String()
			for _, want := range []string{`"level":"` + tt.level + `"`, `"key":"value"`, `"msg":"message"`} {
				if !strings.Contains(out, want) {
					t.Errorf("%q missing from %s", want, out)
				}
			}
		})
	}
}

func TestPackage_Config(t *testing.T) {
	original := Default()
	t.Cleanup(func() { SetDefault(original) })

	var buf bytes.Buffer

	l := Config(WithOutput(&buf), WithLevel(LevelDebug), WithPretty(false))
	if Default().Level() != LevelDebug || l.Level() != LevelDebug {
		t.Fatalf("Config did not replace the default logger")
	}

	With(slog.String("cmd", "check")).DebugContext(t.Context(), "compiled")
	InfoContext(t.Context(), "second")

	out := buf.String()
	if !strings.Contains(out, "cmd=check") || !strings.Contains(out, "msg=second") {
		t.Errorf("package output = %q", out)
	}
}
