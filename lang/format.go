package lang

import (
	"io"
	"strconv"
	"strings"
)

// Format writes n as canonical Molang source. Parsing the output yields a
// tree that formats to the same text.
func Format(w io.Writer, n Node) error {
	_, err := io.WriteString(w, FormatString(n))

	return err
}

// FormatString returns n as canonical Molang source.
func FormatString(n Node) string {
	var f formatter

	if b, ok := n.(*Block); ok {
		f.statements(b.Statements)
	} else {
		f.node(n)
	}

	return f.sb.String()
}

type formatter struct {
	sb     strings.Builder
	indent int
}

// precedence levels, loosest first.
const (
	precAssign = iota + 1
	precTernary
	precOr
	precAnd
	precEquality
	precRelational
	precAdditive
	precMultiplicative
	precUnary
	precPostfix
	precPrimary
)

func precedence(n Node) int {
	switch n := n.(type) {
	case *Assignment:
		return precAssign
	case *Ternary:
		return precTernary
	case *BinaryOp:
		return binaryPrecedence(n.Op)
	case *UnaryOp:
		return precUnary
	case *NumberLiteral:
		if n.Value < 0 {
			return precUnary
		}

		return precPrimary
	case *Index, *Call:
		return precPostfix
	case *Return:
		return precAssign
	default:
		return precPrimary
	}
}

func binaryPrecedence(op Operator) int {
	switch op {
	case OpCoalesce, OpElvis:
		return precTernary
	case OpOr:
		return precOr
	case OpAnd:
		return precAnd
	case OpEq, OpNe:
		return precEquality
	case OpLt, OpLe, OpGt, OpGe:
		return precRelational
	case OpAdd, OpSub:
		return precAdditive
	default:
		return precMultiplicative
	}
}

func (f *formatter) write(s ...string) {
	for _, x := range s {
		f.sb.WriteString(x)
	}
}

func (f *formatter) newline() {
	f.sb.WriteByte('\n')
	f.sb.WriteString(strings.Repeat("\t", f.indent))
}

// operand writes n, parenthesized when it binds looser than min.
func (f *formatter) operand(n Node, minPrec int) {
	if precedence(n) < minPrec {
		f.write("(")
		f.node(n)
		f.write(")")

		return
	}

	f.node(n)
}

func (f *formatter) statements(stmts []Node) {
	for i, s := range stmts {
		if i > 0 {
			f.newline()
		}

		f.node(s)
		f.write(";")
	}
}

func (f *formatter) block(b *Block) {
	if len(b.Statements) == 0 {
		f.write("{}")

		return
	}

	f.write("{")
	f.indent++
	f.newline()
	f.statements(b.Statements)
	f.indent--
	f.newline()
	f.write("}")
}

func (f *formatter) list(ns []Node) {
	for i, n := range ns {
		if i > 0 {
			f.write(", ")
		}

		f.node(n)
	}
}

func (f *formatter) node(n Node) {
	switch n := n.(type) {
	case *NumberLiteral:
		f.write(strconv.FormatFloat(n.Value, 'f', -1, 64))

	case *StringLiteral:
		f.write(quote(n.Value))

	case *Identifier:
		f.write(n.QualifiedName())

	case *BinaryOp:
		p := binaryPrecedence(n.Op)
		if p == precTernary {
			// right-associative
			f.operand(n.Left, p+1)
			f.write(" ", n.Op.String(), " ")
			f.operand(n.Right, p)
		} else {
			f.operand(n.Left, p)
			f.write(" ", n.Op.String(), " ")
			f.operand(n.Right, p+1)
		}

	case *UnaryOp:
		f.write(n.Op.String())
		// keep "- -x" from lexing as a signed literal
		f.operand(n.Operand, precPostfix)

	case *Ternary:
		f.operand(n.Cond, precOr)
		f.write(" ? ")
		f.operand(n.Then, precAssign)

		if n.Else != nil {
			f.write(" : ")
			f.operand(n.Else, precTernary)
		}

	case *Assignment:
		f.node(n.Target)
		f.write(" = ")
		f.operand(n.Value, precAssign)

	case *Conditional:
		f.write("if (")
		f.node(n.Cond)
		f.write(") ")
		f.block(n.Then)

		if n.Else != nil {
			f.write(" else ")

			if b, ok := n.Else.(*Block); ok {
				f.block(b)
			} else {
				f.node(n.Else)
			}
		}

	case *Loop:
		f.write("loop(")
		f.node(n.Count)
		f.write(", ")
		f.block(n.Body)
		f.write(")")

	case *ForEach:
		f.write("for_each(")
		f.node(n.Item)
		f.write(", ")
		f.node(n.Collection)
		f.write(", ")
		f.block(n.Body)
		f.write(")")

	case *ArrayLiteral:
		f.write("[")
		f.list(n.Elements)
		f.write("]")

	case *Index:
		f.operand(n.Target, precPostfix)
		f.write("[")
		f.node(n.Index)
		f.write("]")

	case *Call:
		f.write(n.QualifiedName(), "(")
		f.list(n.Args)
		f.write(")")

	case *Block:
		f.block(n)

	case *Return:
		f.write("return")

		if n.Value != nil {
			f.write(" ")
			f.node(n.Value)
		}

	case *Break:
		f.write("break")

	case *Continue:
		f.write("continue")
	}
}

var quoteReplacer = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\t", `\t`,
	"\r", `\r`,
)

func quote(s string) string {
	return `"` + quoteReplacer.Replace(s) + `"`
}

// Sexpr renders n as a parenthesized prefix expression, for example
// "(+ (. q anim_time) 5)". It is intended for tests and debugging.
func Sexpr(n Node) string {
	var sb strings.Builder

	sexpr(&sb, n)

	return sb.String()
}

func sexpr(sb *strings.Builder, n Node) {
	open := func(head string, children ...Node) {
		sb.WriteString("(")
		sb.WriteString(head)

		for _, c := range children {
			sb.WriteByte(' ')

			if c == nil || isNilNode(c) {
				sb.WriteString("nil")
			} else {
				sexpr(sb, c)
			}
		}

		sb.WriteString(")")
	}

	switch n := n.(type) {
	case *NumberLiteral:
		sb.WriteString(formatNumber(n.Value))

	case *StringLiteral:
		sb.WriteString(strconv.Quote(n.Value))

	case *Identifier:
		switch n.Scope {
		case ScopeNone:
			sb.WriteString(n.Name)
		case ScopeThis:
			sb.WriteString("this")
		default:
			sb.WriteString("(. " + n.Scope.Short() + " " + n.Name + ")")
		}

	case *BinaryOp:
		open(n.Op.String(), n.Left, n.Right)

	case *UnaryOp:
		open(n.Op.String(), n.Operand)

	case *Ternary:
		if n.Else == nil {
			open("?", n.Cond, n.Then)
		} else {
			open("?", n.Cond, n.Then, n.Else)
		}

	case *Assignment:
		open("=", n.Target, n.Value)

	case *Conditional:
		if n.Else == nil {
			open("if", n.Cond, n.Then)
		} else {
			open("if", n.Cond, n.Then, n.Else)
		}

	case *Loop:
		open("loop", n.Count, n.Body)

	case *ForEach:
		open("for_each", n.Item, n.Collection, n.Body)

	case *ArrayLiteral:
		open("[]", n.Elements...)

	case *Index:
		open("[", n.Target, n.Index)

	case *Call:
		callee := n.Name
		if n.Scope != ScopeNone {
			callee = n.Scope.Short() + "." + n.Name
		}

		open("call "+callee, n.Args...)

	case *Block:
		open("block", n.Statements...)

	case *Return:
		if n.Value == nil {
			sb.WriteString("(return)")
		} else {
			open("return", n.Value)
		}

	case *Break:
		sb.WriteString("break")

	case *Continue:
		sb.WriteString("continue")
	}
}
