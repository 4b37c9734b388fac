package lang

import "math"

// Optimize returns a simplified copy of the tree rooted at n. The input is
// never modified; unchanged subtrees are shared with the result.
//
// The rewrites preserve evaluation results and errors:
//   - unary and binary operators over literals are folded
//   - '&&', '||', '??' and '?:' with a literal left operand short-circuit
//   - ternaries and if statements with a literal condition keep only the
//     taken branch
//   - pure math functions called with literal arguments are folded
//   - literal statements that are not the last in a block are dropped
func Optimize(n Node) Node {
	return optimize(n)
}

func optimize(n Node) Node {
	switch n := n.(type) {
	case *Block:
		return optimizeBlock(n)

	case *UnaryOp:
		operand := optimize(n.Operand)

		if v, ok := literal(operand); ok {
			if r, err := applyUnary(n.Op, v); err == nil {
				if lit, ok := literalNode(r, n.pos); ok {
					return lit
				}
			}
		}

		return &UnaryOp{base: n.base, Op: n.Op, Operand: operand}

	case *BinaryOp:
		return optimizeBinary(n)

	case *Ternary:
		cond := optimize(n.Cond)

		if v, ok := literal(cond); ok {
			switch {
			case v.Truthy():
				return optimize(n.Then)
			case n.Else != nil:
				return optimize(n.Else)
			default:
				return &Block{base: n.base}
			}
		}

		t := &Ternary{base: n.base, Cond: cond, Then: optimize(n.Then)}
		if n.Else != nil {
			t.Else = optimize(n.Else)
		}

		return t

	case *Conditional:
		cond := optimize(n.Cond)

		if v, ok := literal(cond); ok {
			switch {
			case v.Truthy():
				return optimizeBlock(n.Then)
			case n.Else != nil:
				return optimize(n.Else)
			default:
				return &Block{base: n.base}
			}
		}

		c := &Conditional{base: n.base, Cond: cond, Then: optimizeBlock(n.Then)}
		if n.Else != nil {
			c.Else = optimize(n.Else)
		}

		return c

	case *Assignment:
		return &Assignment{
			base:   n.base,
			Target: optimizeTarget(n.Target),
			Value:  optimize(n.Value),
		}

	case *Loop:
		return &Loop{base: n.base, Count: optimize(n.Count), Body: optimizeBlock(n.Body)}

	case *ForEach:
		return &ForEach{
			base:       n.base,
			Item:       n.Item,
			Collection: optimize(n.Collection),
			Body:       optimizeBlock(n.Body),
		}

	case *ArrayLiteral:
		return &ArrayLiteral{base: n.base, Elements: optimizeAll(n.Elements)}

	case *Index:
		return &Index{base: n.base, Target: optimize(n.Target), Index: optimize(n.Index)}

	case *Call:
		return optimizeCall(n)

	case *Identifier:
		if n.Scope == ScopeMath && IsPure(n.Name) && mathLibrary[n.Name].Arity == 0 {
			if v, err := mathLibrary[n.Name].Call(nil); err == nil {
				if lit, ok := literalNode(v, n.pos); ok {
					return lit
				}
			}
		}

		return n

	case *Return:
		if n.Value == nil {
			return n
		}

		return &Return{base: n.base, Value: optimize(n.Value)}
	}

	return n
}

func optimizeBlock(b *Block) *Block {
	out := &Block{base: b.base, Statements: make([]Node, 0, len(b.Statements))}

	for i, stmt := range b.Statements {
		s := optimize(stmt)

		if i < len(b.Statements)-1 && inert(s) {
			continue
		}

		out.Statements = append(out.Statements, s)
	}

	return out
}

// inert reports whether evaluating n has no effect beyond its result.
func inert(n Node) bool {
	switch n := n.(type) {
	case *NumberLiteral, *StringLiteral:
		return true
	case *Block:
		return len(n.Statements) == 0
	default:
		return false
	}
}

func optimizeAll(ns []Node) []Node {
	out := make([]Node, len(ns))
	for i, n := range ns {
		out[i] = optimize(n)
	}

	return out
}

// optimizeTarget simplifies the index expressions of an assignment target
// while keeping its shape.
func optimizeTarget(n Node) Node {
	if idx, ok := n.(*Index); ok {
		return &Index{
			base:   idx.base,
			Target: optimizeTarget(idx.Target),
			Index:  optimize(idx.Index),
		}
	}

	return n
}

func optimizeBinary(n *BinaryOp) Node {
	l := optimize(n.Left)
	r := optimize(n.Right)

	lv, lok := literal(l)

	if lok {
		switch n.Op {
		case OpAnd:
			if !lv.Truthy() {
				return &NumberLiteral{base: n.base, Value: 0}
			}

		case OpOr:
			if lv.Truthy() {
				return &NumberLiteral{base: n.base, Value: 1}
			}

		case OpCoalesce:
			// literals are never unset
			return l

		case OpElvis:
			if lv.Truthy() {
				return l
			}

			return r
		}
	}

	if rv, rok := literal(r); lok && rok {
		if v, err := applyBinary(n.Op, lv, rv); err == nil {
			if lit, ok := literalNode(v, n.pos); ok {
				return lit
			}
		}
	}

	return &BinaryOp{base: n.base, Op: n.Op, Left: l, Right: r}
}

func optimizeCall(n *Call) Node {
	args := optimizeAll(n.Args)
	out := &Call{base: n.base, Scope: n.Scope, Name: n.Name, Args: args}

	if n.Scope != ScopeMath || !IsPure(n.Name) {
		return out
	}

	fn := mathLibrary[n.Name]
	if fn.Arity != Variadic && fn.Arity != len(args) {
		return out
	}

	vals := make([]Value, len(args))

	for i, a := range args {
		v, ok := literal(a)
		if !ok {
			return out
		}

		vals[i] = v
	}

	v, err := fn.Call(vals)
	if err != nil {
		return out
	}

	if lit, ok := literalNode(v, n.pos); ok {
		return lit
	}

	return out
}

// literal returns the constant value of a literal node.
func literal(n Node) (Value, bool) {
	switch n := n.(type) {
	case *NumberLiteral:
		return Number(n.Value), true
	case *StringLiteral:
		return String(n.Value), true
	default:
		return Value{}, false
	}
}

// literalNode converts a folded value back into a literal node. Values that
// have no literal form, such as arrays or non-finite numbers, are rejected.
func literalNode(v Value, pos Position) (Node, bool) {
	switch v.Kind() {
	case KindNumber:
		f, _ := v.Float()
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return nil, false
		}

		return &NumberLiteral{base: base{pos}, Value: f}, true

	case KindString:
		return &StringLiteral{base: base{pos}, Value: v.Str()}, true

	default:
		return nil, false
	}
}
