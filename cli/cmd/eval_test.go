package cmd

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/molang/lang"
)

func TestEval_Output(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
		want  string
	}{
		{"default_command", "", []string{"1 + 2 * 3"}, "7\n"},
		{"explicit", "", []string{"eval", "math.clamp(5, 0, 1)"}, "1\n"},
		{"stdin", "math.pow(2, 10)", []string{"eval"}, "1024\n"},
		{"string", "", []string{"eval", "'idle'"}, "idle\n"},
		{
			"assignments",
			"",
			[]string{"eval", "-q", "life_time=2", "-c", "scale=3", "q.life_time * c.scale"},
			"6\n",
		},
		{
			"expr_functions",
			"",
			[]string{"eval", "-c", "n=len([1, 2, 3])", "-c", `name=upper("walk")`, "c.n"},
			"3\n",
		},
		{
			"repeat_shares_variables",
			"",
			[]string{"eval", "--repeat", "3", "--show-variables", "-v", "n=0", "v.n = v.n + 1; return v.n;"},
			"3\nvariable.n = 3\n",
		},
		{
			"temps_reseeded",
			"",
			[]string{"eval", "--repeat", "2", "-t", "a=1", "t.a = t.a + 1; return t.a;"},
			"2\n",
		},
		{
			"temps_kept",
			"",
			[]string{"eval", "--repeat", "2", "--keep-temps", "-t", "a=1", "t.a = t.a + 1; return t.a;"},
			"3\n",
		},
		{"yaml_scalar", "", []string{"eval", "-o", "yaml", "'hi'"}, "hi\n"},
		{"json_array", "", []string{"eval", "-o", "json", "--no-optimize", "[1, 'a']"}, "[\n  1,\n  \"a\"\n]\n"},
		{"unset", "", []string{"eval", "v.missing"}, "unset\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := execute(t, t.TempDir(), tt.stdin, tt.args...)
			require.NoError(t, res.err, res.stderr)
			assert.Equal(t, tt.want, res.stdout)
		})
	}
}

func TestEval_JSONVariables(t *testing.T) {
	res := execute(t, t.TempDir(), "",
		"eval", "-o", "json", "--show-variables", "v.x = 'a'; v.y = 2; return 1;")
	require.NoError(t, res.err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &got))

	assert.Equal(t, map[string]any{
		"result":   1.0,
		"variable": map[string]any{"x": "a", "y": 2.0},
	}, got)
}

func TestEval_YAMLVariables(t *testing.T) {
	res := execute(t, t.TempDir(), "",
		"eval", "-o", "yaml", "--show-variables", "v.b = 2; v.a = 1; return v.a + v.b;")
	require.NoError(t, res.err)
	assert.Equal(t, "result: 3\nvariable:\n  a: 1\n  b: 2\n", res.stdout)
}

func TestEval_Files(t *testing.T) {
	dir := t.TempDir()
	walk := writeFile(t, dir, "walk.molang", "v.speed = c.base * 2;\nreturn v.speed;\n")
	bind := writeFile(t, dir, "entity.yaml", "context:\n  base: 4\nvariable:\n  speed: 0\n")

	res := execute(t, dir, "", "eval", "-b", bind, "-f", walk, "-f", walk)
	require.NoError(t, res.err, res.stderr)
	assert.Equal(t, "8\n", res.stdout, "duplicate file evaluated twice")
}

func TestEval_BindingsOverride(t *testing.T) {
	dir := t.TempDir()
	bind := writeFile(t, dir, "entity.hcl", "context {\n  base = 4\n}\n")

	res := execute(t, dir, "", "eval", "-b", bind, "-c", "base=5", "c.base")
	require.NoError(t, res.err, res.stderr)
	assert.Equal(t, "5\n", res.stdout)
}

func TestEval_Errors(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, dir, "bad.yaml", "scope:\n  x: 1\n")

	tests := []struct {
		name string
		args []string
		want []error
	}{
		{"syntax", []string{"eval", "1 +"}, []error{ErrCompile, lang.ErrParse}},
		{"unknown_context", []string{"eval", "c.missing"}, []error{ErrEvaluate, lang.ErrUnknownBinding}},
		{"iteration_limit", []string{"eval", "--max-iterations", "4", "loop(10, { v.i = (v.i ?? 0) + 1; })"}, []error{ErrEvaluate, lang.ErrIterationLimit}},
		{"bad_assignment", []string{"eval", "-v", "novalue", "1"}, []error{ErrBindings}},
		{"bad_bindings_file", []string{"eval", "-b", bad, "1"}, []error{ErrBindings}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := execute(t, dir, "", tt.args...)
			require.Error(t, res.err)

			for _, want := range tt.want {
				assert.ErrorIs(t, res.err, want)
			}

			assert.Empty(t, res.stdout)
		})
	}
}
