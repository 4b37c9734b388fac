package lang

import (
	"errors"
	"testing"
)

func TestLex_IndividualSymbols(t *testing.T) {
	tests := []struct {
		input string
		kind  TokenKind
	}{
		{"+", TokenOperator},
		{"-", TokenOperator},
		{"*", TokenOperator},
		{"/", TokenOperator},
		{"%", TokenOperator},
		{"?", TokenOperator},
		{"??", TokenOperator},
		{"?:", TokenOperator},
		{"==", TokenOperator},
		{"!=", TokenOperator},
		{"<=", TokenOperator},
		{">=", TokenOperator},
		{"&&", TokenOperator},
		{"||", TokenOperator},
		{"!", TokenOperator},
		{"=", TokenOperator},
		{",", TokenPunct},
		{";", TokenPunct},
		{":", TokenPunct},
		{"(", TokenPunct},
		{")", TokenPunct},
		{"{", TokenPunct},
		{"}", TokenPunct},
		{"[", TokenPunct},
		{"]", TokenPunct},
		{"123", TokenNumber},
		{"123.", TokenNumber},
		{"123.456", TokenNumber},
		{"-5", TokenNumber},
		{"abc", TokenIdent},
		{"aBc", TokenIdent},
		{"aBc1", TokenIdent},
		{"_x", TokenIdent},
		{"variable.foo", TokenIdent},
		{"q.bar_baz", TokenIdent},
		{"for_each", TokenKeyword},
		{"this", TokenKeyword},
		{"true", TokenKeyword},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			toks, err := Lex(tt.input)
			if err != nil {
				t.Fatalf("Lex(%q) error: %v", tt.input, err)
			}

			if len(toks) != 2 {
				t.Fatalf("Lex(%q) = %d tokens, want 2 (token + EOF)", tt.input, len(toks))
			}

			if toks[0].Kind != tt.kind {
				t.Errorf("kind = %v, want %v", toks[0].Kind, tt.kind)
			}

			if toks[0].Text != tt.input {
				t.Errorf("text = %q, want %q", toks[0].Text, tt.input)
			}

			if toks[1].Kind != TokenEOF {
				t.Errorf("last token = %v, want EOF", toks[1].Kind)
			}
		})
	}
}

func TestLex_Sequences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"binary minus", "1-2", []string{"1", "-", "2"}},
		{"signed after operator", "1 - -2", []string{"1", "-", "-2"}},
		{"signed at start", "-2 * 3", []string{"-2", "*", "3"}},
		{"signed after paren", "(-2)", []string{"(", "-2", ")"}},
		{"signed after comma", "f(1, -2)", []string{"f", "(", "1", ",", "-2", ")"}},
		{"signed after return", "return -1", []string{"return", "-1"}},
		{"minus after identifier", "v.x-1", []string{"v.x", "-", "1"}},
		{"minus after this", "this -1", []string{"this", "-", "1"}},
		{"minus after bracket", "a[0]-1", []string{"a", "[", "0", "]", "-", "1"}},
		{"elvis", "a ?: b", []string{"a", "?:", "b"}},
		{"ternary", "a ? b : c", []string{"a", "?", "b", ":", "c"}},
		{"line comment", "1 // two\n+ 3", []string{"1", "+", "3"}},
		{"block comment", "1 /* two\n */ + 3", []string{"1", "+", "3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, err := Lex(tt.input)
			if err != nil {
				t.Fatalf("Lex(%q) error: %v", tt.input, err)
			}

			got := make([]string, 0, len(toks))
			for _, tok := range toks[:len(toks)-1] {
				got = append(got, tok.Text)
			}

			if len(got) != len(tt.want) {
				t.Fatalf("Lex(%q) = %q, want %q", tt.input, got, tt.want)
			}

			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("Lex(%q) = %q, want %q", tt.input, got, tt.want)
				}
			}
		})
	}
}

func TestLex_Strings(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`"hello"`, "hello"},
		{`'hello'`, "hello"},
		{`"a\"b"`, `a"b`},
		{`'it\'s'`, "it's"},
		{`"tab\tnew\nline"`, "tab\tnew\nline"},
		{`"back\\slash"`, `back\slash`},
		{`"ünïcödé"`, "ünïcödé"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			toks, err := Lex(tt.input)
			if err != nil {
				t.Fatalf("Lex(%s) error: %v", tt.input, err)
			}

			if toks[0].Kind != TokenString || toks[0].Text != tt.want {
				t.Errorf("token = %v %q, want string %q", toks[0].Kind, toks[0].Text, tt.want)
			}
		})
	}
}

func TestLex_Positions(t *testing.T) {
	toks, err := Lex("a +\n  b")
	if err != nil {
		t.Fatal(err)
	}

	want := []Position{
		{Offset: 0, Line: 1, Column: 1},
		{Offset: 2, Line: 1, Column: 3},
		{Offset: 6, Line: 2, Column: 3},
		{Offset: 7, Line: 2, Column: 4},
	}

	for i, pos := range want {
		if toks[i].Pos != pos {
			t.Errorf("token %d (%s) pos = %+v, want %+v", i, toks[i], toks[i].Pos, pos)
		}
	}
}

func TestLex_Errors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		offset int
	}{
		{"unterminated string", `1 + "abc`, 4},
		{"unterminated block comment", "1 /* never closed", 2},
		{"unexpected character", "1 # 2", 2},
		{"single ampersand", "a & b", 2},
		{"single pipe", "a | b", 2},
		{"dot before digit", "v.a.1", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Lex(tt.input)
			if !errors.Is(err, ErrLex) {
				t.Fatalf("Lex(%q) error = %v, want ErrLex", tt.input, err)
			}

			var e *Error
			if !errors.As(err, &e) {
				t.Fatalf("error is %T, want *Error", err)
			}

			pos, ok := e.Position()
			if !ok || pos.Offset != tt.offset {
				t.Errorf("position = %+v (ok=%v), want offset %d", pos, ok, tt.offset)
			}
		})
	}
}

func TestLexer_Peek(t *testing.T) {
	l := NewLexer("a b")

	p1, _ := l.Peek()
	p2, _ := l.Peek()

	if p1 != p2 {
		t.Fatalf("Peek not idempotent: %v != %v", p1, p2)
	}

	n1, _ := l.Next()
	if n1 != p1 {
		t.Fatalf("Next = %v, want peeked %v", n1, p1)
	}

	n2, _ := l.Next()
	if n2.Text != "b" {
		t.Fatalf("second token = %q, want b", n2.Text)
	}

	eof, _ := l.Next()
	if eof.Kind != TokenEOF {
		t.Fatalf("third token = %v, want EOF", eof.Kind)
	}
}

func FuzzLex(f *testing.F) {
	for _, seed := range []string{
		"",
		"1 + 2",
		`v.x = "str"; t.y = 'a\'b';`,
		"loop(10, { t.i = t.i + 1; });",
		"/* c */ q.a ?? -1 // d",
	} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, src string) {
		toks, err := Lex(src)
		if err != nil {
			if !errors.Is(err, ErrLex) {
				t.Fatalf("unexpected error kind: %v", err)
			}

			return
		}

		if len(toks) == 0 || toks[len(toks)-1].Kind != TokenEOF {
			t.Fatalf("token stream not terminated by EOF")
		}

		for i := 1; i < len(toks); i++ {
			if toks[i].Pos.Offset < toks[i-1].Pos.Offset {
				t.Fatalf("positions not monotonic at %d", i)
			}
		}
	})
}
