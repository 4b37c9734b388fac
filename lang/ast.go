package lang

import "strconv"

// Node is an element of a parsed script. The set of implementations is
// closed: every node type is defined in this package.
//
// Nodes are immutable once constructed; a compiled [Script] shares its tree
// across goroutines.
type Node interface {
	Pos() Position
	node()
}

type base struct{ pos Position }

// Pos returns the source position where the node begins.
func (b base) Pos() Position { return b.pos }

func (base) node() {}

// Scope selects the binding table an identifier or call resolves against.
type Scope uint8

const (
	ScopeNone     Scope = iota // unscoped
	ScopeQuery                 // query
	ScopeContext               // context
	ScopeVariable              // variable
	ScopeTemp                  // temp
	ScopeThis                  // this
	ScopeMath                  // math
)

var scopeNames = [...]string{
	ScopeNone:     "",
	ScopeQuery:    "query",
	ScopeContext:  "context",
	ScopeVariable: "variable",
	ScopeTemp:     "temp",
	ScopeThis:     "this",
	ScopeMath:     "math",
}

// String returns the canonical (long) scope prefix.
func (s Scope) String() string {
	if int(s) < len(scopeNames) {
		return scopeNames[s]
	}

	return "Scope(" + strconv.Itoa(int(s)) + ")"
}

// Short returns the abbreviated scope prefix, if one exists.
func (s Scope) Short() string {
	switch s {
	case ScopeQuery:
		return "q"
	case ScopeContext:
		return "c"
	case ScopeVariable:
		return "v"
	case ScopeTemp:
		return "t"
	case ScopeMath:
		return "m"
	default:
		return s.String()
	}
}

// Writable reports whether assignments may target the scope at runtime.
func (s Scope) Writable() bool {
	return s == ScopeVariable || s == ScopeTemp
}

// ParseScope maps a scope prefix, long or abbreviated, to its Scope.
func ParseScope(prefix string) (Scope, bool) {
	switch prefix {
	case "query", "q":
		return ScopeQuery, true
	case "context", "c":
		return ScopeContext, true
	case "variable", "v":
		return ScopeVariable, true
	case "temp", "t":
		return ScopeTemp, true
	case "math", "m":
		return ScopeMath, true
	default:
		return ScopeNone, false
	}
}

// Operator identifies a unary or binary operation.
type Operator uint8

const (
	OpAdd      Operator = iota + 1 // +
	OpSub                          // -
	OpMul                          // *
	OpDiv                          // /
	OpMod                          // %
	OpEq                           // ==
	OpNe                           // !=
	OpLt                           // <
	OpLe                           // <=
	OpGt                           // >
	OpGe                           // >=
	OpAnd                          // &&
	OpOr                           // ||
	OpCoalesce                     // ??
	OpElvis                        // ?:
	OpNeg                          // -
	OpNot                          // !
)

var operatorSymbols = [...]string{
	OpAdd:      "+",
	OpSub:      "-",
	OpMul:      "*",
	OpDiv:      "/",
	OpMod:      "%",
	OpEq:       "==",
	OpNe:       "!=",
	OpLt:       "<",
	OpLe:       "<=",
	OpGt:       ">",
	OpGe:       ">=",
	OpAnd:      "&&",
	OpOr:       "||",
	OpCoalesce: "??",
	OpElvis:    "?:",
	OpNeg:      "-",
	OpNot:      "!",
}

// String returns the operator's source symbol.
func (op Operator) String() string {
	if int(op) < len(operatorSymbols) && operatorSymbols[op] != "" {
		return operatorSymbols[op]
	}

	return "Operator(" + strconv.Itoa(int(op)) + ")"
}

// ShortCircuit reports whether the right operand may be skipped.
func (op Operator) ShortCircuit() bool {
	switch op {
	case OpAnd, OpOr, OpCoalesce, OpElvis:
		return true
	default:
		return false
	}
}

type (
	// NumberLiteral is a numeric constant. The keywords true and false
	// parse to 1 and 0.
	NumberLiteral struct {
		base
		Value float64
	}

	// StringLiteral is a quoted string constant.
	StringLiteral struct {
		base
		Value string
	}

	// Identifier names a binding. Scope is [ScopeThis] with an empty Name for
	// the this keyword.
	Identifier struct {
		base
		Scope Scope
		Name  string
	}

	// BinaryOp applies Op to Left and Right.
	BinaryOp struct {
		base
		Op    Operator
		Left  Node
		Right Node
	}

	// UnaryOp applies Op ([OpNeg] or [OpNot]) to Operand.
	UnaryOp struct {
		base
		Op      Operator
		Operand Node
	}

	// Ternary is cond ? then : else. Else is nil for the binary conditional
	// form cond ? then, which yields unset when cond is false.
	Ternary struct {
		base
		Cond Node
		Then Node
		Else Node
	}

	// Assignment stores the result of Value into Target, which is either an
	// *Identifier or an *Index.
	Assignment struct {
		base
		Target Node
		Value  Node
	}

	// Conditional is an if statement. Else is nil, a *Block, or a nested
	// *Conditional for else-if chains.
	Conditional struct {
		base
		Cond Node
		Then *Block
		Else Node
	}

	// Loop runs Body Count times.
	Loop struct {
		base
		Count Node
		Body  *Block
	}

	// ForEach runs Body once per element of Collection, binding the element
	// to Item.
	ForEach struct {
		base
		Item       *Identifier
		Collection Node
		Body       *Block
	}

	// ArrayLiteral builds an array from its element expressions.
	ArrayLiteral struct {
		base
		Elements []Node
	}

	// Index reads element Index of Target.
	Index struct {
		base
		Target Node
		Index  Node
	}

	// Call invokes the named function with Args.
	Call struct {
		base
		Scope Scope
		Name  string
		Args  []Node
	}

	// Block is a sequence of statements evaluated in order.
	Block struct {
		base
		Statements []Node
	}

	// Return ends evaluation of the script. Value may be nil.
	Return struct {
		base
		Value Node
	}

	// Break exits the innermost loop.
	Break struct{ base }

	// Continue skips to the next iteration of the innermost loop.
	Continue struct{ base }
)

// QualifiedName returns the identifier with its canonical scope prefix.
func (n *Identifier) QualifiedName() string {
	switch n.Scope {
	case ScopeNone:
		return n.Name
	case ScopeThis:
		return "this"
	default:
		return n.Scope.String() + "." + n.Name
	}
}

// QualifiedName returns the callee with its canonical scope prefix.
func (n *Call) QualifiedName() string {
	if n.Scope == ScopeNone {
		return n.Name
	}

	return n.Scope.String() + "." + n.Name
}

// Children returns the direct child nodes of n in evaluation order.
// Nil optional children are omitted.
func Children(n Node) []Node {
	var out []Node

	add := func(ns ...Node) {
		for _, c := range ns {
			if c != nil && !isNilNode(c) {
				out = append(out, c)
			}
		}
	}

	switch n := n.(type) {
	case *BinaryOp:
		add(n.Left, n.Right)
	case *UnaryOp:
		add(n.Operand)
	case *Ternary:
		add(n.Cond, n.Then, n.Else)
	case *Assignment:
		add(n.Target, n.Value)
	case *Conditional:
		add(n.Cond, n.Then, n.Else)
	case *Loop:
		add(n.Count, n.Body)
	case *ForEach:
		add(n.Item, n.Collection, n.Body)
	case *ArrayLiteral:
		add(n.Elements...)
	case *Index:
		add(n.Target, n.Index)
	case *Call:
		add(n.Args...)
	case *Block:
		add(n.Statements...)
	case *Return:
		add(n.Value)
	}

	return out
}

// isNilNode catches typed nil pointers stored in a Node interface, such as a
// nil *Block in Conditional.Then.
func isNilNode(n Node) bool {
	switch n := n.(type) {
	case *Block:
		return n == nil
	case *Conditional:
		return n == nil
	case *Identifier:
		return n == nil
	default:
		return false
	}
}

// Walk traverses the tree rooted at n in depth-first order, calling fn for
// each node. Children are skipped when fn returns false.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || isNilNode(n) || !fn(n) {
		return
	}

	for _, c := range Children(n) {
		Walk(c, fn)
	}
}
