package bindings

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/molang/lang"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestFormatOf(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"a.yaml", FormatYAML, false},
		{"a.YML", FormatYAML, false},
		{"dir/a.json", FormatYAML, false},
		{"a.hcl", FormatHCL, false},
		{"a.toml", 0, true},
		{"noext", 0, true},
	}

	for _, tt := range tests {
		got, err := FormatOf(tt.path)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrFormat, tt.path)

			continue
		}

		require.NoError(t, err, tt.path)
		assert.Equal(t, tt.want, got, tt.path)
	}
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "bind.yaml", strings.Join([]string{
		"query:",
		"  life_time: 2.5",
		"context:",
		"  name: zombie",
		"variable:",
		"  speeds: [1, 2, 3]",
		"  alive: true",
		"temp:",
		"  nothing: null",
	}, "\n"))

	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5, s.Len())
	assert.Equal(t, 2.5, s.Query["life_time"].Native())
	assert.Equal(t, "zombie", s.Context["name"].Native())
	assert.Equal(t, []any{1.0, 2.0, 3.0}, s.Variable["speeds"].Native())
	assert.Equal(t, 1.0, s.Variable["alive"].Native())
	assert.True(t, s.Temp["nothing"].IsUnset())
}

func TestLoad_JSON(t *testing.T) {
	path := writeFile(t, "bind.json", `{"context": {"scale": 4}, "variable": {"tags": ["a", "b"]}}`)

	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 4.0, s.Context["scale"].Native())
	assert.Equal(t, []any{"a", "b"}, s.Variable["tags"].Native())
}

func TestLoad_HCL(t *testing.T) {
	path := writeFile(t, "bind.hcl", `
query {
  life_time = 2.5
}

variable {
  speeds = [1, 2, 3]
  name   = "zombie"
  alive  = false
}
`)

	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2.5, s.Query["life_time"].Native())
	assert.Equal(t, []any{1.0, 2.0, 3.0}, s.Variable["speeds"].Native())
	assert.Equal(t, "zombie", s.Variable["name"].Native())
	assert.Equal(t, 0.0, s.Variable["alive"].Native())
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    error
	}{
		{"unknown_section", "a.yaml", "math:\n  pi: 3\n", ErrDecode},
		{"nested_map", "a.yaml", "context:\n  pos: {x: 1}\n", ErrDecode},
		{"bad_yaml", "a.yaml", "context: [\n", ErrDecode},
		{"hcl_unknown_block", "a.hcl", "math {\n  pi = 3\n}\n", ErrDecode},
		{"hcl_object", "a.hcl", "context {\n  pos = { x = 1 }\n}\n", ErrDecode},
		{"hcl_syntax", "a.hcl", "context {\n", ErrDecode},
		{"extension", "a.ini", "", ErrFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.content))
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, ErrDecode)
}

func TestEvaluate(t *testing.T) {
	t.Setenv("MOLANG_BINDINGS_TEST", "from env")

	tests := []struct {
		source string
		want   any
	}{
		{"1 + 2", 3.0},
		{"2.5 * 2", 5.0},
		{`"a" + "b"`, "ab"},
		{"[1, 2 * 2]", []any{1.0, 4.0}},
		{"1 < 2", 1.0},
		{`env("MOLANG_BINDINGS_TEST")`, "from env"},
		{"nil", nil},
		{"  ", nil},
	}

	for _, tt := range tests {
		v, err := Evaluate(tt.source)
		require.NoError(t, err, tt.source)
		assert.Equal(t, tt.want, v.Native(), tt.source)
	}

	_, err := Evaluate("{a: 1}")
	require.ErrorIs(t, err, lang.ErrTypeMismatch)

	_, err = Evaluate("1 +")
	require.Error(t, err)
}

func TestSet_Assign(t *testing.T) {
	var s Set

	require.NoError(t, s.AssignAll(lang.ScopeContext, "speed=1.5", " name = 'zombie'"))
	require.NoError(t, s.Assign(lang.ScopeVariable, "list=[1,2]"))

	v, ok := s.Lookup(lang.ScopeContext, "speed")
	require.True(t, ok)
	assert.Equal(t, 1.5, v.Native())

	v, ok = s.Lookup(lang.ScopeContext, "name")
	require.True(t, ok)
	assert.Equal(t, "zombie", v.Native())

	_, ok = s.Lookup(lang.ScopeTemp, "speed")
	assert.False(t, ok)

	for _, bad := range []string{"speed", "=1", "x=)"} {
		assert.ErrorIs(t, s.Assign(lang.ScopeContext, bad), ErrAssign, bad)
	}

	assert.ErrorIs(t, s.Assign(lang.ScopeMath, "pi=3"), ErrAssign)
}

func TestSet_Merge(t *testing.T) {
	var a, b Set

	require.NoError(t, a.Bind(lang.ScopeQuery, "x", lang.Number(1)))
	require.NoError(t, a.Bind(lang.ScopeTemp, "t", lang.Number(2)))
	require.NoError(t, b.Bind(lang.ScopeQuery, "x", lang.Number(10)))
	require.NoError(t, b.Bind(lang.ScopeContext, "c", lang.String("s")))

	a.Merge(b)

	assert.Equal(t, 3, a.Len())
	assert.Equal(t, 10.0, a.Query["x"].Native())
	assert.Equal(t, "s", a.Context["c"].Native())
	assert.Len(t, b.Query, 1)
	assert.Equal(t, 10.0, b.Query["x"].Native())
}

func TestSet_Environment(t *testing.T) {
	var s Set

	require.NoError(t, s.Bind(lang.ScopeQuery, "life_time", lang.Number(2)))
	require.NoError(t, s.Bind(lang.ScopeContext, "scale", lang.Number(3)))
	require.NoError(t, s.Bind(lang.ScopeVariable, "n", lang.Number(1)))

	env := s.Environment(lang.WithMaxIterations(8))
	assert.Equal(t, 8, env.MaxIterations)

	got, err := lang.Eval(t.Context(), "v.n = v.n + q.life_time * c.scale; return v.n;", env)
	require.NoError(t, err)
	assert.Equal(t, 7.0, got.Native())

	// the environment owns copies of the writable maps
	assert.Equal(t, 1.0, s.Variable["n"].Native())
	assert.Equal(t, 7.0, env.Variable["n"].Native())
}
