package lang

import (
	"iter"
	"log/slog"
	"strings"
	"unicode/utf8"
)

// Lexer splits Molang source into tokens.
//
// It makes a single forward pass over the input and holds at most one token
// of lookahead. Whitespace and comments are discarded.
type Lexer struct {
	src  string
	off  int
	line int
	col  int

	prev    Token
	hasPrev bool

	peek struct {
		tok Token
		err error
		ok  bool
	}
}

// NewLexer returns a Lexer positioned at the start of src.
func NewLexer(src string) *Lexer {
	return &Lexer{src: src, line: 1, col: 1}
}

// Lex returns every token in src, terminated by a [TokenEOF] token.
func Lex(src string) ([]Token, error) {
	var toks []Token

	for tok, err := range Tokens(src) {
		if err != nil {
			return nil, err
		}

		toks = append(toks, tok)
	}

	return toks, nil
}

// Tokens returns an iterator over the tokens in src. The final token yielded
// on success has kind [TokenEOF]. Iteration stops after the first error.
func Tokens(src string) iter.Seq2[Token, error] {
	return func(yield func(Token, error) bool) {
		l := NewLexer(src)

		for {
			tok, err := l.Next()
			if !yield(tok, err) || err != nil || tok.Kind == TokenEOF {
				return
			}
		}
	}
}

// Peek returns the next token without consuming it.
func (l *Lexer) Peek() (Token, error) {
	if !l.peek.ok {
		l.peek.tok, l.peek.err = l.scan()
		l.peek.ok = true
	}

	return l.peek.tok, l.peek.err
}

// Next consumes and returns the next token.
func (l *Lexer) Next() (Token, error) {
	if l.peek.ok {
		l.peek.ok = false

		return l.peek.tok, l.peek.err
	}

	return l.scan()
}

func (l *Lexer) position() Position {
	return Position{Offset: l.off, Line: l.line, Column: l.col}
}

func (l *Lexer) eof() bool { return l.off >= len(l.src) }

// at returns the byte n positions ahead, or 0 past the end of input.
func (l *Lexer) at(n int) byte {
	if l.off+n < len(l.src) {
		return l.src[l.off+n]
	}

	return 0
}

// advance consumes one rune, tracking line and column.
func (l *Lexer) advance() {
	if l.eof() {
		return
	}

	r, size := utf8.DecodeRuneInString(l.src[l.off:])
	l.off += size

	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
}

func (l *Lexer) advanceN(n int) {
	for range n {
		l.advance()
	}
}

func (l *Lexer) emit(kind TokenKind, text string, pos Position) (Token, error) {
	tok := Token{Kind: kind, Text: text, Pos: pos}
	l.prev, l.hasPrev = tok, true

	return tok, nil
}

func (l *Lexer) scan() (Token, error) {
	if err := l.skipSpaceAndComments(); err != nil {
		return Token{}, err
	}

	pos := l.position()

	if l.eof() {
		return Token{Kind: TokenEOF, Pos: pos}, nil
	}

	c := l.at(0)

	switch {
	case isDigit(c):
		return l.scanNumber(pos)

	case c == '-' && isDigit(l.at(1)) && l.signAllowed():
		return l.scanNumber(pos)

	case isIdentStart(c):
		return l.scanIdent(pos)

	case c == '"' || c == '\'':
		return l.scanString(pos)
	}

	if op := matchOperator(l.src[l.off:]); op != "" {
		l.advanceN(len(op))

		return l.emit(TokenOperator, op, pos)
	}

	if strings.IndexByte("(){}[],;:", c) >= 0 {
		l.advance()

		return l.emit(TokenPunct, string(c), pos)
	}

	r, _ := utf8.DecodeRuneInString(l.src[l.off:])

	return Token{}, ErrLex.WithPosition(pos).WithSource(l.src).
		With(slog.String("unexpected", string(r)))
}

// signAllowed reports whether a '-' directly before a digit belongs to a
// number literal rather than a binary operator.
func (l *Lexer) signAllowed() bool {
	if !l.hasPrev {
		return true
	}

	switch l.prev.Kind {
	case TokenOperator:
		return true

	case TokenPunct:
		return strings.Contains("([{,;:", l.prev.Text)

	case TokenKeyword:
		switch l.prev.Text {
		case "true", "false", "this":
			return false
		}

		return true

	default:
		return false
	}
}

func (l *Lexer) skipSpaceAndComments() error {
	for !l.eof() {
		c := l.at(0)

		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			l.advance()

		case c == '/' && l.at(1) == '/':
			for !l.eof() && l.at(0) != '\n' {
				l.advance()
			}

		case c == '/' && l.at(1) == '*':
			pos := l.position()

			l.advanceN(2)

			for {
				if l.eof() {
					return ErrLex.WithPosition(pos).WithSource(l.src).
						With(slog.String("issue", "unterminated block comment"))
				}

				if l.at(0) == '*' && l.at(1) == '/' {
					l.advanceN(2)

					break
				}

				l.advance()
			}

		default:
			return nil
		}
	}

	return nil
}

func (l *Lexer) scanNumber(pos Position) (Token, error) {
	start := l.off

	if l.at(0) == '-' {
		l.advance()
	}

	for isDigit(l.at(0)) {
		l.advance()
	}

	if l.at(0) == '.' {
		l.advance()

		for isDigit(l.at(0)) {
			l.advance()
		}
	}

	return l.emit(TokenNumber, l.src[start:l.off], pos)
}

func (l *Lexer) scanIdent(pos Position) (Token, error) {
	start := l.off

	for {
		c := l.at(0)

		switch {
		case isIdentPart(c):
			l.advance()

			continue

		case c == '.' && isIdentStart(l.at(1)):
			l.advance()

			continue
		}

		break
	}

	text := l.src[start:l.off]

	if IsKeyword(text) {
		return l.emit(TokenKeyword, text, pos)
	}

	return l.emit(TokenIdent, text, pos)
}

func (l *Lexer) scanString(pos Position) (Token, error) {
	quote := l.at(0)
	l.advance()

	var sb strings.Builder

	for {
		if l.eof() {
			return Token{}, ErrLex.WithPosition(pos).WithSource(l.src).
				With(slog.String("issue", "unterminated string"))
		}

		c := l.at(0)

		if c == quote {
			l.advance()

			break
		}

		if c == '\\' {
			switch e := l.at(1); e {
			case '"', '\'', '\\':
				sb.WriteByte(e)
				l.advanceN(2)

				continue

			case 'n':
				sb.WriteByte('\n')
				l.advanceN(2)

				continue

			case 't':
				sb.WriteByte('\t')
				l.advanceN(2)

				continue

			case 'r':
				sb.WriteByte('\r')
				l.advanceN(2)

				continue
			}
		}

		_, size := utf8.DecodeRuneInString(l.src[l.off:])
		sb.WriteString(l.src[l.off : l.off+size])
		l.advance()
	}

	return l.emit(TokenString, sb.String(), pos)
}

// operators is ordered so that longer lexemes are matched first.
var operators = []string{
	"==", "!=", "<=", ">=", "&&", "||", "??", "?:",
	"+", "-", "*", "/", "%", "=", "<", ">", "!", "?",
}

func matchOperator(s string) string {
	for _, op := range operators {
		if strings.HasPrefix(s, op) {
			return op
		}
	}

	return ""
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) }
