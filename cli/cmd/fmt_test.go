package cmd

import (
	"encoding/json"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/molang/lang"
)

func TestFmt_Text(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"native_default", []string{"fmt", "v.a=1+2*3"}, "variable.a = 1 + 2 * 3;\n"},
		{"native", []string{"fmt", "native", "q.f(1,2)"}, "query.f(1, 2);\n"},
		{"native_optimized", []string{"fmt", "native", "--optimize", "v.a = 1 + 2"}, "variable.a = 3;\n"},
		{"sexpr", []string{"fmt", "sexpr", "1+2"}, "(block (+ 1 2))\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := execute(t, t.TempDir(), "", tt.args...)
			require.NoError(t, res.err, res.stderr)
			assert.Equal(t, tt.want, res.stdout)
		})
	}
}

func TestFmt_JSON(t *testing.T) {
	res := execute(t, t.TempDir(), "", "fmt", "json", "-i", "0", "q.anim_time + 5")
	require.NoError(t, res.err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &got))

	root, err := lang.Parse("q.anim_time + 5")
	require.NoError(t, err)

	want, err := json.Marshal(lang.Dump(root))
	require.NoError(t, err)
	assert.JSONEq(t, string(want), res.stdout)
	assert.Equal(t, "block", got["node"])
}

func TestFmt_YAML(t *testing.T) {
	res := execute(t, t.TempDir(), "math.sin(90)", "fmt", "yaml")
	require.NoError(t, res.err)

	var got map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(res.stdout), &got))
	assert.Equal(t, "block", got["node"])
	assert.Len(t, got["statements"], 1)
}

func TestFmt_Error(t *testing.T) {
	res := execute(t, t.TempDir(), "", "fmt", "sexpr", "(1 +")
	assert.ErrorIs(t, res.err, ErrCompile)
	assert.ErrorIs(t, res.err, lang.ErrParse)
	assert.Empty(t, res.stdout)
}
