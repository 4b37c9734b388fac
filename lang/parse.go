package lang

import (
	"log/slog"
	"strconv"
	"strings"
)

// Parse parses src into the root [Block] of a script.
//
// Statements are separated by ';'. The separator may be omitted after the
// final statement and after a statement that ends with '}'.
func Parse(src string) (*Block, error) {
	p := &parser{lex: NewLexer(src), src: src}

	if err := p.advance(); err != nil {
		return nil, err
	}

	stmts, err := p.parseStatements(false)
	if err != nil {
		return nil, err
	}

	return &Block{
		base:       base{Position{Offset: 0, Line: 1, Column: 1}},
		Statements: stmts,
	}, nil
}

// parser holds the parser state.
type parser struct {
	lex   *Lexer
	src   string
	tok   Token // current, not yet consumed
	last  Token // most recently consumed
	loops int   // lexical loop nesting depth
}

func (p *parser) advance() error {
	p.last = p.tok

	tok, err := p.lex.Next()
	if err != nil {
		return err
	}

	p.tok = tok

	return nil
}

func (p *parser) fail(pos Position, attrs ...slog.Attr) *Error {
	return ErrParse.WithPosition(pos).WithSource(p.src).With(attrs...)
}

// unexpected reports the current token as a syntax error.
func (p *parser) unexpected(expected string) *Error {
	return p.fail(p.tok.Pos,
		slog.String("unexpected", p.tok.String()),
		slog.String("expected", expected),
	)
}

func (p *parser) expect(punct string) error {
	if !p.tok.Is(TokenPunct, punct) {
		return p.unexpected("'" + punct + "'")
	}

	return p.advance()
}

func (p *parser) atPunct(punct string) bool { return p.tok.Is(TokenPunct, punct) }

func (p *parser) atKeyword(kw string) bool { return p.tok.Is(TokenKeyword, kw) }

// parseStatements parses statements until EOF, or until '}' when inBlock.
// The closing brace is left for the caller.
func (p *parser) parseStatements(inBlock bool) ([]Node, error) {
	stmts := make([]Node, 0)

	for {
		for p.atPunct(";") {
			if err := p.advance(); err != nil {
				return nil, err
			}
		}

		if p.tok.Kind == TokenEOF {
			if inBlock {
				return nil, p.unexpected("'}'")
			}

			return stmts, nil
		}

		if inBlock && p.atPunct("}") {
			return stmts, nil
		}

		stmt, err := p.parseExpression()
		if err != nil {
			return nil, err
		}

		stmts = append(stmts, stmt)

		switch {
		case p.atPunct(";"):
			if err := p.advance(); err != nil {
				return nil, err
			}

		case p.tok.Kind == TokenEOF, inBlock && p.atPunct("}"):

		case p.last.Is(TokenPunct, "}"):

		default:
			return nil, p.unexpected("';'")
		}
	}
}

func (p *parser) parseBlock() (*Block, error) {
	pos := p.tok.Pos

	if err := p.expect("{"); err != nil {
		return nil, err
	}

	stmts, err := p.parseStatements(true)
	if err != nil {
		return nil, err
	}

	if err := p.expect("}"); err != nil {
		return nil, err
	}

	return &Block{base: base{pos}, Statements: stmts}, nil
}

func (p *parser) parseExpression() (Node, error) {
	return p.parseAssignment()
}

// parseAssignment parses: Ternary ('=' Assignment)?.
func (p *parser) parseAssignment() (Node, error) {
	left, err := p.parseTernary()
	if err != nil {
		return nil, err
	}

	if !p.tok.Is(TokenOperator, "=") {
		return left, nil
	}

	if !assignable(left) {
		return nil, p.fail(left.Pos(),
			slog.String("issue", "invalid assignment target"))
	}

	if err := p.advance(); err != nil {
		return nil, err
	}

	right, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}

	return &Assignment{base: base{left.Pos()}, Target: left, Value: right}, nil
}

func assignable(n Node) bool {
	switch n := n.(type) {
	case *Identifier:
		switch n.Scope {
		case ScopeVariable, ScopeTemp, ScopeQuery, ScopeContext:
			return true
		}
	case *Index:
		return assignable(n.Target)
	}

	return false
}

// parseTernary parses the conditional forms:
//
//	Or '??' Ternary
//	Or '?:' Ternary
//	Or '?' Assignment (':' Ternary)?
func (p *parser) parseTernary() (Node, error) {
	cond, err := p.parseBinary(0)
	if err != nil {
		return nil, err
	}

	switch {
	case p.tok.Is(TokenOperator, "??"), p.tok.Is(TokenOperator, "?:"):
		op := OpCoalesce
		if p.tok.Text == "?:" {
			op = OpElvis
		}

		if err := p.advance(); err != nil {
			return nil, err
		}

		right, err := p.parseTernary()
		if err != nil {
			return nil, err
		}

		return &BinaryOp{base: base{cond.Pos()}, Op: op, Left: cond, Right: right}, nil

	case p.tok.Is(TokenOperator, "?"):
		if err := p.advance(); err != nil {
			return nil, err
		}

		then, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}

		n := &Ternary{base: base{cond.Pos()}, Cond: cond, Then: then}

		if p.atPunct(":") {
			if err := p.advance(); err != nil {
				return nil, err
			}

			if n.Else, err = p.parseTernary(); err != nil {
				return nil, err
			}
		}

		return n, nil
	}

	return cond, nil
}

// binaryLevels lists the left-associative binary operators from loosest to
// tightest binding.
var binaryLevels = []map[string]Operator{
	{"||": OpOr},
	{"&&": OpAnd},
	{"==": OpEq, "!=": OpNe},
	{"<": OpLt, "<=": OpLe, ">": OpGt, ">=": OpGe},
	{"+": OpAdd, "-": OpSub},
	{"*": OpMul, "/": OpDiv, "%": OpMod},
}

func (p *parser) parseBinary(level int) (Node, error) {
	if level >= len(binaryLevels) {
		return p.parseUnary()
	}

	left, err := p.parseBinary(level + 1)
	if err != nil {
		return nil, err
	}

	for p.tok.Kind == TokenOperator {
		op, ok := binaryLevels[level][p.tok.Text]
		if !ok {
			break
		}

		if err := p.advance(); err != nil {
			return nil, err
		}

		right, err := p.parseBinary(level + 1)
		if err != nil {
			return nil, err
		}

		left = &BinaryOp{base: base{left.Pos()}, Op: op, Left: left, Right: right}
	}

	return left, nil
}

func (p *parser) parseUnary() (Node, error) {
	var op Operator

	switch {
	case p.tok.Is(TokenOperator, "-"):
		op = OpNeg
	case p.tok.Is(TokenOperator, "!"):
		op = OpNot
	default:
		return p.parsePostfix()
	}

	pos := p.tok.Pos

	if err := p.advance(); err != nil {
		return nil, err
	}

	operand, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	return &UnaryOp{base: base{pos}, Op: op, Operand: operand}, nil
}

func (p *parser) parsePostfix() (Node, error) {
	n, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	// A brace-terminated primary ends the statement, so a following '(' or
	// '[' starts the next one.
	for !p.last.Is(TokenPunct, "}") {
		switch {
		case p.atPunct("("):
			id, ok := n.(*Identifier)
			if !ok || (id.Scope != ScopeNone && id.Scope != ScopeQuery &&
				id.Scope != ScopeMath) {
				return nil, p.fail(p.tok.Pos,
					slog.String("issue", "expression is not callable"))
			}

			args, err := p.parseList("(", ")")
			if err != nil {
				return nil, err
			}

			n = &Call{base: base{id.pos}, Scope: id.Scope, Name: id.Name, Args: args}

		case p.atPunct("["):
			if err := p.advance(); err != nil {
				return nil, err
			}

			idx, err := p.parseExpression()
			if err != nil {
				return nil, err
			}

			if err := p.expect("]"); err != nil {
				return nil, err
			}

			n = &Index{base: base{n.Pos()}, Target: n, Index: idx}

		default:
			return n, nil
		}
	}

	return n, nil
}

// parseList parses a comma-separated expression list between the given
// delimiters. A trailing comma is permitted.
func (p *parser) parseList(opening, closing string) ([]Node, error) {
	if err := p.expect(opening); err != nil {
		return nil, err
	}

	list := make([]Node, 0)

	for !p.atPunct(closing) {
		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}

		list = append(list, e)

		if !p.atPunct(",") {
			break
		}

		if err := p.advance(); err != nil {
			return nil, err
		}
	}

	if err := p.expect(closing); err != nil {
		return nil, err
	}

	return list, nil
}

func (p *parser) parsePrimary() (Node, error) {
	tok := p.tok

	switch tok.Kind {
	case TokenNumber:
		f, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil {
			return nil, p.fail(tok.Pos, slog.String("number", tok.Text)).Wrap(err)
		}

		return &NumberLiteral{base: base{tok.Pos}, Value: f}, p.advance()

	case TokenString:
		return &StringLiteral{base: base{tok.Pos}, Value: tok.Text}, p.advance()

	case TokenIdent:
		return identifier(tok), p.advance()

	case TokenKeyword:
		return p.parseKeyword()

	case TokenPunct:
		switch tok.Text {
		case "(":
			if err := p.advance(); err != nil {
				return nil, err
			}

			e, err := p.parseExpression()
			if err != nil {
				return nil, err
			}

			return e, p.expect(")")

		case "[":
			elems, err := p.parseList("[", "]")
			if err != nil {
				return nil, err
			}

			return &ArrayLiteral{base: base{tok.Pos}, Elements: elems}, nil

		case "{":
			return p.parseBlock()
		}
	}

	return nil, p.unexpected("expression")
}

// identifier splits a dotted name into its scope and member.
// Names whose first segment is not a scope prefix are unscoped.
func identifier(tok Token) *Identifier {
	prefix, rest, dotted := strings.Cut(tok.Text, ".")
	if dotted {
		if scope, ok := ParseScope(prefix); ok {
			return &Identifier{base: base{tok.Pos}, Scope: scope, Name: rest}
		}
	}

	return &Identifier{base: base{tok.Pos}, Scope: ScopeNone, Name: tok.Text}
}

func (p *parser) parseKeyword() (Node, error) {
	tok := p.tok

	switch tok.Text {
	case "true", "false":
		v := 0.0
		if tok.Text == "true" {
			v = 1
		}

		return &NumberLiteral{base: base{tok.Pos}, Value: v}, p.advance()

	case "this":
		return &Identifier{base: base{tok.Pos}, Scope: ScopeThis}, p.advance()

	case "if":
		return p.parseIf()

	case "loop":
		return p.parseLoop()

	case "for_each":
		return p.parseForEach()

	case "return":
		return p.parseReturn()

	case "break", "continue":
		if p.loops == 0 {
			return nil, p.fail(tok.Pos,
				slog.String("issue", tok.Text+" outside of loop"))
		}

		if tok.Text == "break" {
			return &Break{base{tok.Pos}}, p.advance()
		}

		return &Continue{base{tok.Pos}}, p.advance()
	}

	return nil, p.unexpected("expression")
}

// parseIf parses: 'if' '(' Expr ')' Block ('else' (If | Block))?.
func (p *parser) parseIf() (Node, error) {
	pos := p.tok.Pos

	if err := p.advance(); err != nil {
		return nil, err
	}

	if err := p.expect("("); err != nil {
		return nil, err
	}

	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if err := p.expect(")"); err != nil {
		return nil, err
	}

	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	n := &Conditional{base: base{pos}, Cond: cond, Then: then}

	if !p.atKeyword("else") {
		return n, nil
	}

	if err := p.advance(); err != nil {
		return nil, err
	}

	if p.atKeyword("if") {
		n.Else, err = p.parseIf()
	} else {
		n.Else, err = p.parseBlock()
	}

	if err != nil {
		return nil, err
	}

	return n, nil
}

// parseLoop parses: 'loop' '(' Expr ',' Block ')'.
func (p *parser) parseLoop() (Node, error) {
	pos := p.tok.Pos

	if err := p.advance(); err != nil {
		return nil, err
	}

	if err := p.expect("("); err != nil {
		return nil, err
	}

	count, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if err := p.expect(","); err != nil {
		return nil, err
	}

	body, err := p.parseLoopBody()
	if err != nil {
		return nil, err
	}

	return &Loop{base: base{pos}, Count: count, Body: body}, p.expect(")")
}

// parseForEach parses: 'for_each' '(' Identifier ',' Expr ',' Block ')'.
func (p *parser) parseForEach() (Node, error) {
	pos := p.tok.Pos

	if err := p.advance(); err != nil {
		return nil, err
	}

	if err := p.expect("("); err != nil {
		return nil, err
	}

	target, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	item, ok := target.(*Identifier)
	if !ok || !item.Scope.Writable() {
		return nil, p.fail(target.Pos(),
			slog.String("issue", "for_each item must be a variable or temp"))
	}

	if err := p.expect(","); err != nil {
		return nil, err
	}

	coll, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if err := p.expect(","); err != nil {
		return nil, err
	}

	body, err := p.parseLoopBody()
	if err != nil {
		return nil, err
	}

	return &ForEach{base: base{pos}, Item: item, Collection: coll, Body: body},
		p.expect(")")
}

func (p *parser) parseLoopBody() (*Block, error) {
	p.loops++
	defer func() { p.loops-- }()

	return p.parseBlock()
}

func (p *parser) parseReturn() (Node, error) {
	pos := p.tok.Pos

	if err := p.advance(); err != nil {
		return nil, err
	}

	n := &Return{base: base{pos}}

	switch {
	case p.tok.Kind == TokenEOF:
		return n, nil
	case p.tok.Kind == TokenPunct && strings.Contains(";})],:", p.tok.Text):
		return n, nil
	}

	v, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	n.Value = v

	return n, nil
}
