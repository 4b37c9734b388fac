package lang

import (
	"maps"
	"slices"
)

// DefaultMaxIterations is the number of loop iterations a single evaluation
// may perform across all loops before it fails with [ErrIterationLimit].
const DefaultMaxIterations = 1024

// Variadic is the [Function.Arity] of a function that accepts any number of
// arguments.
const Variadic = -1

// Function is a native function callable from a script.
//
// Call receives a slice owned by the evaluator that is reused between calls;
// implementations must not retain it.
type Function struct {
	Call func(args []Value) (Value, error)
	// Arity is the exact number of arguments accepted, or [Variadic].
	Arity int
	// Pure functions always return the same result for the same arguments
	// and have no side effects, which allows calls with constant arguments to
	// be folded at compile time.
	Pure bool
}

// Functions maps names to native functions.
type Functions map[string]Function

// Names returns the sorted function names.
func (f Functions) Names() []string {
	return slices.Sorted(maps.Keys(f))
}

// Constant returns a zero-arity pure function yielding v.
func Constant(v Value) Function {
	return Function{
		Arity: 0,
		Pure:  true,
		Call:  func([]Value) (Value, error) { return v, nil },
	}
}

// TempPolicy controls the lifetime of temp.* bindings.
type TempPolicy uint8

const (
	// TempReset clears the temp map at the start of every evaluation.
	TempReset TempPolicy = iota
	// TempKeep leaves temp bindings for the host to clear.
	TempKeep
)

// Environment supplies the bindings a script evaluates against.
//
// Query and Context are read-only from scripts. Variable and Temp are
// written by assignments; nil maps are allocated on first write. An
// Environment is owned by one caller at a time; concurrent evaluations need
// separate environments.
type Environment struct {
	Query    Functions
	Context  map[string]Value
	Variable map[string]Value
	Temp     map[string]Value
	// This is the value of the this keyword outside of for_each and
	// assignment right-hand sides.
	This Value
	// MaxIterations overrides [DefaultMaxIterations] when positive.
	MaxIterations int
	TempPolicy    TempPolicy
}

// EnvOption configures an [Environment].
type EnvOption func(*Environment)

// NewEnvironment returns an environment whose query table holds the math
// library followed by funcs. Entries in funcs replace library functions of
// the same name when called as query.name or name, while math.name always
// refers to the library.
func NewEnvironment(funcs Functions, opts ...EnvOption) *Environment {
	env := &Environment{
		Query:         make(Functions, len(mathLibrary)+len(funcs)),
		MaxIterations: DefaultMaxIterations,
	}

	maps.Copy(env.Query, mathLibrary)
	maps.Copy(env.Query, funcs)

	for _, opt := range opts {
		opt(env)
	}

	return env
}

// WithContext sets the read-only context bindings.
func WithContext(m map[string]Value) EnvOption {
	return func(env *Environment) { env.Context = m }
}

// WithVariables sets the persistent variable bindings.
func WithVariables(m map[string]Value) EnvOption {
	return func(env *Environment) { env.Variable = m }
}

// WithTemps sets the temp bindings.
func WithTemps(m map[string]Value) EnvOption {
	return func(env *Environment) { env.Temp = m }
}

// WithThis sets the initial value of the this keyword.
func WithThis(v Value) EnvOption {
	return func(env *Environment) { env.This = v }
}

// WithMaxIterations sets the per-evaluation loop iteration ceiling.
func WithMaxIterations(n int) EnvOption {
	return func(env *Environment) { env.MaxIterations = n }
}

// WithTempPolicy sets the temp binding lifetime.
func WithTempPolicy(p TempPolicy) EnvOption {
	return func(env *Environment) { env.TempPolicy = p }
}

func (env *Environment) maxIterations() int {
	if env.MaxIterations > 0 {
		return env.MaxIterations
	}

	return DefaultMaxIterations
}

// table returns the binding map of a readable or writable scope, allocating
// writable maps when alloc is set.
func (env *Environment) table(s Scope, alloc bool) map[string]Value {
	switch s {
	case ScopeContext:
		return env.Context

	case ScopeVariable:
		if env.Variable == nil && alloc {
			env.Variable = make(map[string]Value)
		}

		return env.Variable

	case ScopeTemp:
		if env.Temp == nil && alloc {
			env.Temp = make(map[string]Value)
		}

		return env.Temp

	default:
		return nil
	}
}
