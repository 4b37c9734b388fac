package lang

import "strconv"

// TokenKind classifies a lexical token.
type TokenKind uint8

const (
	TokenEOF      TokenKind = iota // EOF
	TokenNumber                    // number
	TokenString                    // string
	TokenIdent                     // identifier
	TokenKeyword                   // keyword
	TokenOperator                  // operator
	TokenPunct                     // punctuation
)

var tokenKindNames = [...]string{
	TokenEOF:      "EOF",
	TokenNumber:   "number",
	TokenString:   "string",
	TokenIdent:    "identifier",
	TokenKeyword:  "keyword",
	TokenOperator: "operator",
	TokenPunct:    "punctuation",
}

func (k TokenKind) String() string {
	if int(k) < len(tokenKindNames) {
		return tokenKindNames[k]
	}

	return "TokenKind(" + strconv.Itoa(int(k)) + ")"
}

// Token is a single lexeme produced by [Lexer].
//
// For string tokens, Text holds the decoded contents without quotes.
// For every other kind, Text is the exact source lexeme.
type Token struct {
	Kind TokenKind
	Text string
	Pos  Position
}

// Is reports whether the token has the given kind and text.
func (t Token) Is(kind TokenKind, text string) bool {
	return t.Kind == kind && t.Text == text
}

// String returns a short human-readable description used in diagnostics.
func (t Token) String() string {
	switch t.Kind {
	case TokenEOF:
		return "end of input"
	case TokenString:
		return strconv.Quote(t.Text)
	default:
		return "'" + t.Text + "'"
	}
}

var keywords = map[string]struct{}{
	"true":     {},
	"false":    {},
	"this":     {},
	"return":   {},
	"break":    {},
	"continue": {},
	"loop":     {},
	"for_each": {},
	"if":       {},
	"else":     {},
}

// IsKeyword reports whether s is a reserved word.
func IsKeyword(s string) bool {
	_, ok := keywords[s]

	return ok
}
