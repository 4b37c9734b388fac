// Package lang compiles and evaluates Molang, the small expression language
// used to drive per-tick animation and gameplay values from data.
//
// # Pipeline
//
// Source text is split into tokens by [Lexer], parsed by [Parse] into a tree
// of [Node] values rooted at a [Block], simplified by [Optimize], and wrapped
// in an immutable [Script]. A script is evaluated against an [Environment]
// that supplies the host's bindings and produces a [Value].
//
//	s, err := lang.Compile(ctx, "math.sin(q.anim_time * 90) * v.scale")
//	if err != nil {
//		return err
//	}
//
//	env := lang.NewEnvironment(lang.Functions{
//		"anim_time": lang.Constant(lang.Number(0.5)),
//	}, lang.WithVariables(vars))
//
//	v, err := s.Evaluate(ctx, env)
//
// [Compile] consults [DefaultCache], so repeated compilation of the same text
// is cheap and returns the same *Script.
//
// # Scopes
//
// Names are qualified by a scope prefix, long or short:
//
//	query.x   q.x   host function table, read-only (x is a zero-argument call)
//	context.x c.x   host values, read-only
//	variable.x v.x  persistent values, writable
//	temp.x    t.x   per-evaluation values, writable
//	math.x    m.x   builtin math library, degrees for trigonometry
//	this            the for_each element, or the assignment target
//
// Unscoped names resolve like query names.
//
// # Values
//
// A [Value] is unset, a number, a string, or an array. Unset and zero are
// false; every string is true; arrays are true when non-empty. Arithmetic
// treats unset as 0 and parses numeric strings. Division and modulo by zero
// yield 0.
//
// # Control Flow
//
// The value of a script is that of its last statement, or of a return
// statement. loop(n, { ... }) and for_each(v.x, array, { ... }) support break
// and continue. All loops in one evaluation share an iteration budget of
// [DefaultMaxIterations].
//
// # Errors
//
// Every error is an *[Error] that matches one of the package sentinels with
// [errors.Is]. Lex and parse errors carry a [Position] and can render a
// source snippet with [Error.Snippet].
package lang
