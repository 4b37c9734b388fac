package lang

import (
	"testing"
)

func TestOptimize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1 + 2 * 3", "7"},
		{"-(2)", "-2"},
		{"!0", "1"},
		{"1 / 0", "0"},
		{"'x' == 'x'", "1"},
		{"math.lerp(0, 10, 0.5)", "5"},
		{"math.max(1, 4, 2)", "4"},
		{"math.pi * 2", "6.283185307179586"},
		{"math.clamp(math.abs(-5), 0, 3)", "3"},

		// non-literal operands stay
		{"q.anim_time + 5", "(+ (. q anim_time) 5)"},
		{"q.anim_time + 2 * 3", "(+ (. q anim_time) 6)"},
		{"v.a * (1 + 1)", "(* (. v a) 2)"},
		{"[1 + 1, q.a]", "([] 2 (. q a))"},
		{"q.f(1 + 1)", "(call q.f 2)"},

		// short-circuit with a literal left side
		{"0 && q.a", "0"},
		{"1 || q.a", "1"},
		{"1 && q.a", "(&& 1 (. q a))"},
		{"3 ?? q.a", "3"},
		{"0 ?: q.a", "(. q a)"},
		{"2 ?: q.a", "2"},

		// branches with a literal condition
		{"1 ? q.a : q.b", "(. q a)"},
		{"0 ? q.a : q.b", "(. q b)"},
		{"0 ? q.a", "(block)"},
		{"q.c ? 1 + 1 : 2 + 2", "(? (. q c) 2 4)"},
		{"if (1) { v.a = 1; } else { v.a = 2; }", "(block (= (. v a) 1))"},
		{"if (0) { v.a = 1; } else if (q.b) { v.a = 2; }", "(if (. q b) (block (= (. v a) 2)))"},
		{"if (0) { v.a = 1; }", "(block)"},

		// left alone because folding would change behavior
		{"math.sin(1, 2)", "(call m.sin 1 2)"},
		{"math.random(0, 1)", "(call m.random 0 1)"},
		{"math.acos(2)", "(call m.acos 2)"},
		{"math.pow(10, 400)", "(call m.pow 10 400)"},
		{"'a' + 'b'", `(+ "a" "b")`},
		{"math.nope", "(. m nope)"},

		// statements
		{"v.arr[1 + 1] = 2 * 2", "(= ([ (. v arr) 2) 4)"},
		{"loop(1 + 1, { t.a = 2 * 3; })", "(loop 2 (block (= (. t a) 6)))"},
		{"for_each(t.e, [1], { t.s = 1 + 2; })", "(for_each (. t e) ([] 1) (block (= (. t s) 3)))"},
		{"return 1 + 1", "(return 2)"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			root, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.input, err)
			}

			got := Sexpr(Optimize(root.Statements[0]))
			if got != tt.want {
				t.Errorf("Optimize(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestOptimize_DropsInertStatements(t *testing.T) {
	root, err := Parse("1; 'two'; {}; q.a; 3")
	if err != nil {
		t.Fatal(err)
	}

	if got, want := Sexpr(Optimize(root)), "(block (. q a) 3)"; got != want {
		t.Errorf("Optimize = %s, want %s", got, want)
	}
}

func TestOptimize_DoesNotModifyInput(t *testing.T) {
	const src = "v.a = 1 + 2; if (1) { t.b = 2 * q.c; } loop(2 + 2, { t.d = -(3); })"

	root, err := Parse(src)
	if err != nil {
		t.Fatal(err)
	}

	before := Sexpr(root)

	Optimize(root)

	if after := Sexpr(root); after != before {
		t.Errorf("input modified:\nbefore %s\nafter  %s", before, after)
	}
}

func TestIsStatic(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"1 + 2", true},
		{"'a'", true},
		{"math.sin(30)", true},
		{"math.pi", true},
		{"[1, 2][0]", true},
		{"loop(2, { 1; })", false},
		{"loop(2, {})", false},
		{"1; loop(0, {}); 2", false},
		{"return 4", true},
		{"math.random(0, 1)", false},
		{"math.nope(1)", false},
		{"q.a", false},
		{"foo", false},
		{"c.a", false},
		{"v.a", false},
		{"t.a", false},
		{"this", false},
		{"v.a = 1", false},
		{"for_each(t.x, [1], {})", false},
		{"1 + q.a * 2", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			root, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.input, err)
			}

			if got := IsStatic(root); got != tt.want {
				t.Errorf("IsStatic(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewScript_Static(t *testing.T) {
	tests := []struct {
		input  string
		opts   []Option
		static bool
		want   Value
	}{
		{"1 + 2", nil, true, Number(3)},
		{"loop(3, { 1; }); math.floor(2.5)", nil, false, Unset()},
		{"'a'", nil, true, String("a")},
		{"math.acos(2)", nil, false, Unset()},
		{"q.a", nil, false, Unset()},
		{"1 + 2", []Option{WithOptimize(false)}, false, Unset()},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			s, err := NewScript(t.Context(), tt.input, tt.opts...)
			if err != nil {
				t.Fatalf("NewScript(%q) error: %v", tt.input, err)
			}

			if s.IsStatic() != tt.static {
				t.Fatalf("IsStatic() = %v, want %v", s.IsStatic(), tt.static)
			}

			v, ok := s.Constant()
			if ok != tt.static || (ok && !v.Equal(tt.want)) {
				t.Errorf("Constant() = %v, %v; want %v, %v", v, ok, tt.want, tt.static)
			}
		})
	}
}

func TestNewScript_StaticIgnoresEnvironment(t *testing.T) {
	s, err := NewScript(t.Context(), "2 * 3")
	if err != nil {
		t.Fatal(err)
	}

	temps := map[string]Value{"keep": Number(1)}

	v, err := s.Evaluate(t.Context(), NewEnvironment(nil, WithTemps(temps)))
	if err != nil {
		t.Fatal(err)
	}

	if !v.Equal(Number(6)) {
		t.Errorf("result = %v, want 6", v)
	}

	if _, ok := temps["keep"]; !ok {
		t.Errorf("static script cleared temps")
	}
}

func BenchmarkOptimize(b *testing.B) {
	root, err := Parse("math.clamp(math.sin(q.t * 90) * (2 + 3), -1 * 4, 10 / 2) + [1, 2][0]")
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()

	for b.Loop() {
		Optimize(root)
	}
}
