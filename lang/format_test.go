package lang

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFormatString(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"v.a=1+2*3", "variable.a = 1 + 2 * 3;"},
		{"(1+2)*3", "(1 + 2) * 3;"},
		{"1-(2-3)", "1 - (2 - 3);"},
		{"1 - -2", "1 - -2;"},
		{"-(-v.x)", "-(-variable.x);"},
		{"-v.a * 2", "-variable.a * 2;"},
		{"(-1)[0]", "(-1)[0];"},
		{"a ?? b ?? c", "a ?? b ?? c;"},
		{"(a ?? b) ?? c", "(a ?? b) ?? c;"},
		{"(a ? b : c) ? d : e", "(a ? b : c) ? d : e;"},
		{"q.a ? v.b = 1 : 2", "query.a ? variable.b = 1 : 2;"},
		{"v.x = q.a ? 1", "variable.x = query.a ? 1;"},
		{"'it\\'s'", `"it's";`},
		{`"tab\there"`, `"tab\there";`},
		{"math.sin(30)", "math.sin(30);"},
		{"q.f(1,2)", "query.f(1, 2);"},
		{"t.a[0][1] = [1, [2]]", "temp.a[0][1] = [1, [2]];"},
		{"this", "this;"},
		{"return", "return;"},
		{"v.a = 1; return v.a", "variable.a = 1;\nreturn variable.a;"},
		{"loop(2, {})", "loop(2, {});"},
		{"loop(2, {t.a = 1;})", "loop(2, {\n\ttemp.a = 1;\n});"},
		{
			"for_each(t.e, c.list, { t.e > 1 ? break; })",
			"for_each(temp.e, context.list, {\n\ttemp.e > 1 ? break;\n});",
		},
		{
			"if (q.a) { v.b = 1; } else if (q.c) { v.b = 2; } else { v.b = 3; }",
			"if (query.a) {\n\tvariable.b = 1;\n} else if (query.c) {\n\tvariable.b = 2;\n} else {\n\tvariable.b = 3;\n};",
		},
		{
			"loop(2, { if (1) { t.a = 1; } })",
			"loop(2, {\n\tif (1) {\n\t\ttemp.a = 1;\n\t};\n});",
		},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			root, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.input, err)
			}

			got := FormatString(root)
			if got != tt.want {
				t.Fatalf("FormatString(%q) =\n%s\nwant\n%s", tt.input, got, tt.want)
			}

			// formatted output must parse back to the same tree
			again, err := Parse(got)
			if err != nil {
				t.Fatalf("reparse of %q failed: %v", got, err)
			}

			if Sexpr(again) != Sexpr(root) {
				t.Errorf("round trip changed tree:\n%s\n%s", Sexpr(root), Sexpr(again))
			}
		})
	}
}

func TestFormat_Writer(t *testing.T) {
	root, err := Parse("q.a+1")
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := Format(&buf, root); err != nil {
		t.Fatal(err)
	}

	if got := buf.String(); got != "query.a + 1;" {
		t.Errorf("Format = %q", got)
	}

	// single nodes are written without a trailing separator
	if got := FormatString(root.Statements[0]); got != "query.a + 1" {
		t.Errorf("FormatString(node) = %q", got)
	}
}

func TestDump(t *testing.T) {
	root, err := Parse("q.anim_time + 5")
	if err != nil {
		t.Fatal(err)
	}

	want := map[string]any{
		"node": "block",
		"pos":  "1:1",
		"statements": []any{
			map[string]any{
				"node": "binary",
				"pos":  "1:1",
				"op":   "+",
				"left": map[string]any{
					"node":  "identifier",
					"pos":   "1:1",
					"scope": "query",
					"name":  "anim_time",
				},
				"right": map[string]any{
					"node":  "number",
					"pos":   "1:15",
					"value": 5.0,
				},
			},
		},
	}

	if diff := cmp.Diff(want, Dump(root)); diff != "" {
		t.Errorf("Dump mismatch (-want +got):\n%s", diff)
	}
}

func TestDump_OptionalChildren(t *testing.T) {
	root, err := Parse("q.a ? 1; return")
	if err != nil {
		t.Fatal(err)
	}

	d := Dump(root)
	stmts := d["statements"].([]any)

	ternary := stmts[0].(map[string]any)
	if _, ok := ternary["else"]; ok {
		t.Errorf("ternary without else dumped an else key: %v", ternary)
	}

	ret := stmts[1].(map[string]any)
	if _, ok := ret["value"]; ok {
		t.Errorf("bare return dumped a value key: %v", ret)
	}

	if Dump(nil) != nil {
		t.Errorf("Dump(nil) != nil")
	}
}

func TestWalk(t *testing.T) {
	root, err := Parse("v.a = [1, q.b(2)]; loop(3, { t.c = this; })")
	if err != nil {
		t.Fatal(err)
	}

	var kinds []string

	Walk(root, func(n Node) bool {
		switch n.(type) {
		case *Block:
			kinds = append(kinds, "block")
		case *Assignment:
			kinds = append(kinds, "assign")
		case *Identifier:
			kinds = append(kinds, "ident")
		case *ArrayLiteral:
			kinds = append(kinds, "array")
		case *NumberLiteral:
			kinds = append(kinds, "number")
		case *Call:
			kinds = append(kinds, "call")
		case *Loop:
			// do not descend
			kinds = append(kinds, "loop")

			return false
		}

		return true
	})

	want := []string{
		"block",
		"assign", "ident", "array", "number", "call", "number",
		"loop",
	}

	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Errorf("Walk order mismatch (-want +got):\n%s", diff)
	}
}

func TestParseScope(t *testing.T) {
	for prefix, want := range map[string]Scope{
		"query": ScopeQuery, "q": ScopeQuery,
		"context": ScopeContext, "c": ScopeContext,
		"variable": ScopeVariable, "v": ScopeVariable,
		"temp": ScopeTemp, "t": ScopeTemp,
		"math": ScopeMath, "m": ScopeMath,
	} {
		got, ok := ParseScope(prefix)
		if !ok || got != want {
			t.Errorf("ParseScope(%q) = %v, %v; want %v", prefix, got, ok, want)
		}
	}

	if _, ok := ParseScope("Query"); ok {
		t.Errorf("scope prefixes are case-sensitive")
	}
}
