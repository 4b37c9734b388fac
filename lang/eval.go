package lang

import (
	"context"
	"errors"
	"log/slog"
	"math"
)

// signal is the control-flow outcome of evaluating a node.
type signal uint8

const (
	sigNone signal = iota
	sigBreak
	sigContinue
	sigReturn
)

// Eval compiles source through [DefaultCache] and evaluates it against env.
func Eval(ctx context.Context, source string, env *Environment) (Value, error) {
	s, err := Compile(ctx, source)
	if err != nil {
		return Value{}, err
	}

	return s.Evaluate(ctx, env)
}

// Evaluate is the function form of [Script.Evaluate].
func Evaluate(ctx context.Context, s *Script, env *Environment) (Value, error) {
	return s.Evaluate(ctx, env)
}

// Evaluate runs the script against env and returns the value of its last
// statement, or of the first return statement reached.
//
// A nil env evaluates against an empty environment holding only the math
// library. Writes to env.Variable and env.Temp made before a failing
// statement are kept.
func (s *Script) Evaluate(ctx context.Context, env *Environment) (Value, error) {
	if s.static {
		return s.value, nil
	}

	if env == nil {
		env = NewEnvironment(nil)
	}

	v, err := s.run(env)
	if err != nil {
		s.logger.DebugContext(ctx, "evaluate failed", slog.Any("error", err))

		return Value{}, err
	}

	return v, nil
}

func (s *Script) run(env *Environment) (Value, error) {
	if env.TempPolicy == TempReset {
		clear(env.Temp)
	}

	ev := evaluator{
		env:    env,
		source: s.source,
		budget: env.maxIterations(),
		this:   env.This,
	}

	v, _, err := ev.evalBlock(s.root)

	return v, err
}

// evaluator holds the state of a single evaluation.
type evaluator struct {
	env    *Environment
	source string
	budget int     // loop iterations remaining
	this   Value   // current value of the this keyword
	args   []Value // argument stack shared by nested calls
	each   int     // for_each nesting depth
}

func (ev *evaluator) fail(kind *Error, n Node, attrs ...slog.Attr) *Error {
	return kind.WithPosition(n.Pos()).WithSource(ev.source).With(attrs...)
}

func (ev *evaluator) eval(n Node) (Value, signal, error) {
	switch n := n.(type) {
	case *NumberLiteral:
		return Number(n.Value), sigNone, nil

	case *StringLiteral:
		return String(n.Value), sigNone, nil

	case *Identifier:
		v, err := ev.identifier(n, false)

		return v, sigNone, err

	case *BinaryOp:
		return ev.binary(n)

	case *UnaryOp:
		v, sig, err := ev.eval(n.Operand)
		if err != nil || sig != sigNone {
			return v, sig, err
		}

		r, err := applyUnary(n.Op, v)
		if err != nil {
			return Value{}, sigNone, ev.locate(err, n)
		}

		return r, sigNone, nil

	case *Ternary:
		c, sig, err := ev.eval(n.Cond)
		if err != nil || sig != sigNone {
			return c, sig, err
		}

		switch {
		case c.Truthy():
			return ev.eval(n.Then)
		case n.Else != nil:
			return ev.eval(n.Else)
		default:
			return Value{}, sigNone, nil
		}

	case *Conditional:
		c, sig, err := ev.eval(n.Cond)
		if err != nil || sig != sigNone {
			return c, sig, err
		}

		switch {
		case c.Truthy():
			return ev.evalBlock(n.Then)
		case n.Else != nil:
			return ev.eval(n.Else)
		default:
			return Value{}, sigNone, nil
		}

	case *Assignment:
		return ev.assign(n)

	case *Loop:
		return ev.loop(n)

	case *ForEach:
		return ev.forEach(n)

	case *ArrayLiteral:
		elems := make([]Value, len(n.Elements))

		for i, e := range n.Elements {
			v, sig, err := ev.eval(e)
			if err != nil || sig != sigNone {
				return v, sig, err
			}

			elems[i] = v
		}

		return Array(elems...), sigNone, nil

	case *Index:
		t, sig, err := ev.eval(n.Target)
		if err != nil || sig != sigNone {
			return t, sig, err
		}

		iv, sig, err := ev.eval(n.Index)
		if err != nil || sig != sigNone {
			return iv, sig, err
		}

		i, err := ev.index(n.Index, iv)
		if err != nil {
			return Value{}, sigNone, err
		}

		switch t.Kind() {
		case KindArray, KindUnset:
			return t.At(i), sigNone, nil
		default:
			return Value{}, sigNone, ev.fail(ErrTypeMismatch, n,
				slog.String("issue", "cannot index "+t.Kind().String()))
		}

	case *Call:
		return ev.call(n)

	case *Block:
		return ev.evalBlock(n)

	case *Return:
		if n.Value == nil {
			return Value{}, sigReturn, nil
		}

		v, sig, err := ev.eval(n.Value)
		if err != nil || sig != sigNone {
			return v, sig, err
		}

		return v, sigReturn, nil

	case *Break:
		return Value{}, sigBreak, nil

	case *Continue:
		return Value{}, sigContinue, nil
	}

	return Value{}, sigNone, ev.fail(ErrTypeMismatch, n,
		slog.String("issue", "unsupported node"))
}

func (ev *evaluator) evalBlock(b *Block) (Value, signal, error) {
	var last Value

	for _, stmt := range b.Statements {
		v, sig, err := ev.eval(stmt)
		if err != nil || sig != sigNone {
			return v, sig, err
		}

		last = v
	}

	return last, sigNone, nil
}

// locate attaches the position of n to an error raised by a value operation.
func (ev *evaluator) locate(err error, n Node) error {
	var e *Error
	if errors.As(err, &e) {
		if _, ok := e.Position(); !ok {
			return e.WithPosition(n.Pos()).WithSource(ev.source)
		}
	}

	return err
}

func (ev *evaluator) binary(n *BinaryOp) (Value, signal, error) {
	var (
		l   Value
		sig signal
		err error
	)

	if n.Op == OpCoalesce {
		l, sig, err = ev.coalesceOperand(n.Left)
	} else {
		l, sig, err = ev.eval(n.Left)
	}

	if err != nil || sig != sigNone {
		return l, sig, err
	}

	switch n.Op {
	case OpAnd:
		if !l.Truthy() {
			return Bool(false), sigNone, nil
		}

	case OpOr:
		if l.Truthy() {
			return Bool(true), sigNone, nil
		}

	case OpCoalesce:
		if !l.IsUnset() {
			return l, sigNone, nil
		}

		return ev.eval(n.Right)

	case OpElvis:
		if l.Truthy() {
			return l, sigNone, nil
		}

		return ev.eval(n.Right)
	}

	r, sig, err := ev.eval(n.Right)
	if err != nil || sig != sigNone {
		return r, sig, err
	}

	v, err := applyBinary(n.Op, l, r)
	if err != nil {
		return Value{}, sigNone, ev.locate(err, n)
	}

	return v, sigNone, nil
}

// coalesceOperand evaluates the left side of '??', where a missing query or
// context binding reads as unset instead of failing.
func (ev *evaluator) coalesceOperand(n Node) (Value, signal, error) {
	if id, ok := n.(*Identifier); ok {
		v, err := ev.identifier(id, true)

		return v, sigNone, err
	}

	return ev.eval(n)
}

// applyUnary implements the unary operators for both the evaluator and the
// optimizer.
func applyUnary(op Operator, v Value) (Value, error) {
	switch op {
	case OpNot:
		return Bool(!v.Truthy()), nil

	case OpNeg:
		f, ok := v.Float()
		if !ok {
			return Value{}, ErrTypeMismatch.With(
				slog.String("operator", op.String()),
				slog.String("operand", v.Kind().String()),
			)
		}

		return Number(-f), nil
	}

	return Value{}, ErrTypeMismatch.With(slog.String("operator", op.String()))
}

// applyBinary implements the binary operators for both the evaluator and the
// optimizer. Short-circuit operators are applied to already evaluated
// operands.
func applyBinary(op Operator, l, r Value) (Value, error) {
	switch op {
	case OpEq:
		return Bool(l.Equal(r)), nil
	case OpNe:
		return Bool(!l.Equal(r)), nil
	case OpAnd:
		return Bool(l.Truthy() && r.Truthy()), nil
	case OpOr:
		return Bool(l.Truthy() || r.Truthy()), nil
	case OpCoalesce:
		if !l.IsUnset() {
			return l, nil
		}

		return r, nil
	case OpElvis:
		if l.Truthy() {
			return l, nil
		}

		return r, nil
	}

	a, aok := l.Float()
	b, bok := r.Float()

	if !aok || !bok {
		return Value{}, ErrTypeMismatch.With(
			slog.String("operator", op.String()),
			slog.String("left", l.Kind().String()),
			slog.String("right", r.Kind().String()),
		)
	}

	switch op {
	case OpAdd:
		return Number(a + b), nil
	case OpSub:
		return Number(a - b), nil
	case OpMul:
		return Number(a * b), nil
	case OpDiv:
		if b == 0 {
			return Number(0), nil
		}

		return Number(a / b), nil
	case OpMod:
		if b == 0 {
			return Number(0), nil
		}

		return Number(math.Mod(a, b)), nil
	case OpLt:
		return Bool(a < b), nil
	case OpLe:
		return Bool(a <= b), nil
	case OpGt:
		return Bool(a > b), nil
	case OpGe:
		return Bool(a >= b), nil
	}

	return Value{}, ErrTypeMismatch.With(slog.String("operator", op.String()))
}

// identifier resolves a scoped name. When lenient is set, missing query and
// context bindings read as unset.
func (ev *evaluator) identifier(n *Identifier, lenient bool) (Value, error) {
	switch n.Scope {
	case ScopeThis:
		return ev.this, nil

	case ScopeVariable, ScopeTemp:
		return ev.env.table(n.Scope, false)[n.Name], nil

	case ScopeContext:
		v, ok := ev.env.Context[n.Name]
		if !ok && !lenient {
			return Value{}, withSuggestion(
				ev.fail(ErrUnknownBinding, n, slog.String("name", n.QualifiedName())),
				n.Name, contextNames(ev.env.Context),
			)
		}

		return v, nil

	case ScopeMath:
		fn, ok := mathLibrary[n.Name]
		if !ok {
			return Value{}, withSuggestion(
				ev.fail(ErrUnknownBinding, n, slog.String("name", n.QualifiedName())),
				n.Name, mathLibrary.Names(),
			)
		}

		return ev.property(n, fn)

	default: // query and unscoped names are zero-argument query calls
		fn, ok := ev.env.Query[n.Name]
		if !ok {
			if lenient {
				return Value{}, nil
			}

			return Value{}, withSuggestion(
				ev.fail(ErrUnknownBinding, n, slog.String("name", n.QualifiedName())),
				n.Name, ev.env.Query.Names(),
			)
		}

		return ev.property(n, fn)
	}
}

// property invokes fn for a name used without an argument list.
func (ev *evaluator) property(n *Identifier, fn Function) (Value, error) {
	if fn.Arity > 0 {
		return Value{}, ev.fail(ErrArityMismatch, n,
			slog.String("function", n.QualifiedName()),
			slog.Int("expected", fn.Arity),
			slog.Int("actual", 0),
		)
	}

	return ev.invoke(n, n.QualifiedName(), fn, nil)
}

func contextNames(m map[string]Value) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}

	return names
}

func (ev *evaluator) call(n *Call) (Value, signal, error) {
	var (
		fn Function
		ok bool
	)

	names := ev.env.Query

	if n.Scope == ScopeMath {
		names = mathLibrary
	}

	if fn, ok = names[n.Name]; !ok {
		return Value{}, sigNone, withSuggestion(
			ev.fail(ErrUnknownFunction, n, slog.String("name", n.QualifiedName())),
			n.Name, names.Names(),
		)
	}

	if fn.Arity != Variadic && fn.Arity != len(n.Args) {
		return Value{}, sigNone, ev.fail(ErrArityMismatch, n,
			slog.String("function", n.QualifiedName()),
			slog.Int("expected", fn.Arity),
			slog.Int("actual", len(n.Args)),
		)
	}

	base := len(ev.args)

	defer func() { ev.args = ev.args[:base] }()

	for _, arg := range n.Args {
		v, sig, err := ev.eval(arg)
		if err != nil || sig != sigNone {
			return v, sig, err
		}

		ev.args = append(ev.args, v)
	}

	v, err := ev.invoke(n, n.QualifiedName(), fn, ev.args[base:])

	return v, sigNone, err
}

func (ev *evaluator) invoke(
	n Node,
	name string,
	fn Function,
	args []Value,
) (Value, error) {
	if fn.Call == nil {
		return Value{}, ev.fail(ErrCall, n,
			slog.String("function", name),
			slog.String("issue", "function has no implementation"))
	}

	v, err := fn.Call(args)
	if err == nil {
		return v, nil
	}

	var e *Error
	if errors.As(err, &e) && e.kind != nil {
		return Value{}, e.With(slog.String("function", name)).
			WithPosition(n.Pos()).WithSource(ev.source)
	}

	return Value{}, ev.fail(ErrCall, n, slog.String("function", name)).Wrap(err)
}

// index converts v, the value of index expression n, to an array index,
// truncating toward zero.
func (ev *evaluator) index(n Node, v Value) (int, error) {
	f, ok := v.Float()
	if !ok {
		return 0, ev.fail(ErrTypeMismatch, n,
			slog.String("issue", "index must be a number, got "+v.Kind().String()))
	}

	switch {
	case math.IsNaN(f), f < 0:
		return 0, nil
	case f > math.MaxInt32:
		return math.MaxInt32, nil
	default:
		return int(f), nil
	}
}

// place is a resolved assignment target.
type place struct {
	root *Identifier
	path []int // evaluated indexes, outermost first
}

func (ev *evaluator) assign(n *Assignment) (Value, signal, error) {
	dst, v, sig, err := ev.lvalue(n.Target)
	if err != nil || sig != sigNone {
		return v, sig, err
	}

	root, path := dst.root, dst.path

	if !root.Scope.Writable() {
		return Value{}, sigNone, ev.fail(ErrReadOnlyScope, root,
			slog.String("name", root.QualifiedName()))
	}

	cur := ev.env.table(root.Scope, false)[root.Name]
	for _, i := range path {
		cur = cur.At(i)
	}

	// Inside for_each, this stays bound to the current element.
	prev := ev.this
	if ev.each == 0 {
		ev.this = cur
	}

	v, sig, err = ev.eval(n.Value)

	ev.this = prev

	if err != nil || sig != sigNone {
		return v, sig, err
	}

	table := ev.env.table(root.Scope, true)
	table[root.Name] = store(table[root.Name], path, v)

	return v, sigNone, nil
}

// lvalue resolves an assignment target. A control signal raised by an index
// expression stops the resolution and is returned with its value.
func (ev *evaluator) lvalue(n Node) (place, Value, signal, error) {
	switch n := n.(type) {
	case *Identifier:
		return place{root: n}, Value{}, sigNone, nil

	case *Index:
		dst, v, sig, err := ev.lvalue(n.Target)
		if err != nil || sig != sigNone {
			return place{}, v, sig, err
		}

		iv, sig, err := ev.eval(n.Index)
		if err != nil || sig != sigNone {
			return place{}, iv, sig, err
		}

		i, err := ev.index(n.Index, iv)
		if err != nil {
			return place{}, Value{}, sigNone, err
		}

		dst.path = append(dst.path, i)

		return dst, Value{}, sigNone, nil
	}

	return place{}, Value{}, sigNone, ev.fail(ErrParse, n,
		slog.String("issue", "invalid assignment target"))
}

// store returns a copy of v with x written at path.
func store(v Value, path []int, x Value) Value {
	if len(path) == 0 {
		return x
	}

	i := min(path[0], v.Len())

	return v.with(i, store(v.At(i), path[1:], x))
}

// tick consumes one iteration from the evaluation budget.
func (ev *evaluator) tick(n Node) error {
	if ev.budget <= 0 {
		return ev.fail(ErrIterationLimit, n,
			slog.Int("limit", ev.env.maxIterations()))
	}

	ev.budget--

	return nil
}

func (ev *evaluator) loop(n *Loop) (Value, signal, error) {
	c, sig, err := ev.eval(n.Count)
	if err != nil || sig != sigNone {
		return c, sig, err
	}

	f, ok := c.Float()
	if !ok {
		return Value{}, sigNone, ev.fail(ErrTypeMismatch, n.Count,
			slog.String("issue", "loop count must be a number, got "+c.Kind().String()))
	}

	count := math.Trunc(f)

	for i := 0.0; i < count; i++ {
		if err := ev.tick(n); err != nil {
			return Value{}, sigNone, err
		}

		v, sig, err := ev.evalBlock(n.Body)
		if err != nil {
			return Value{}, sigNone, err
		}

		switch sig {
		case sigBreak:
			return Value{}, sigNone, nil
		case sigReturn:
			return v, sig, nil
		}
	}

	return Value{}, sigNone, nil
}

func (ev *evaluator) forEach(n *ForEach) (Value, signal, error) {
	coll, sig, err := ev.eval(n.Collection)
	if err != nil || sig != sigNone {
		return coll, sig, err
	}

	if coll.Kind() != KindArray {
		return Value{}, sigNone, ev.fail(ErrTypeMismatch, n.Collection,
			slog.String("issue", "for_each requires an array, got "+coll.Kind().String()))
	}

	prev := ev.this
	ev.each++

	defer func() {
		ev.this = prev
		ev.each--
	}()

	for _, e := range coll.Elements() {
		if err := ev.tick(n); err != nil {
			return Value{}, sigNone, err
		}

		ev.env.table(n.Item.Scope, true)[n.Item.Name] = e
		ev.this = e

		v, sig, err := ev.evalBlock(n.Body)
		if err != nil {
			return Value{}, sigNone, err
		}

		switch sig {
		case sigBreak:
			return Value{}, sigNone, nil
		case sigReturn:
			return v, sig, nil
		}
	}

	return Value{}, sigNone, nil
}
