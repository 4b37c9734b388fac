package bindings

import (
	"log/slog"
	"maps"

	"github.com/ardnew/molang/lang"
)

var (
	ErrFormat = lang.NewError("unsupported bindings format")
	ErrDecode = lang.NewError("decode bindings")
	ErrAssign = lang.NewError("invalid binding assignment")
)

// Set holds bindings for each scope a host may populate.
type Set struct {
	Query    map[string]lang.Value
	Context  map[string]lang.Value
	Variable map[string]lang.Value
	Temp     map[string]lang.Value
}

// Scopes lists the scopes a Set can bind, in section order.
var Scopes = []lang.Scope{
	lang.ScopeQuery,
	lang.ScopeContext,
	lang.ScopeVariable,
	lang.ScopeTemp,
}

// table returns the map bound to scope, allocating it when alloc is set.
func (s *Set) table(scope lang.Scope, alloc bool) (map[string]lang.Value, bool) {
	var m *map[string]lang.Value

	switch scope {
	case lang.ScopeQuery:
		m = &s.Query
	case lang.ScopeContext:
		m = &s.Context
	case lang.ScopeVariable:
		m = &s.Variable
	case lang.ScopeTemp:
		m = &s.Temp
	default:
		return nil, false
	}

	if *m == nil && alloc {
		*m = make(map[string]lang.Value)
	}

	return *m, true
}

// Bind sets name to v in scope. Only query, context, variable and temp can
// be bound.
func (s *Set) Bind(scope lang.Scope, name string, v lang.Value) error {
	m, ok := s.table(scope, true)
	if !ok {
		return ErrAssign.With(
			slog.String("scope", scope.String()),
			slog.String("name", name),
			slog.String("issue", "scope cannot be bound"),
		)
	}

	m[name] = v

	return nil
}

// Lookup returns the value bound to name in scope.
func (s *Set) Lookup(scope lang.Scope, name string) (lang.Value, bool) {
	m, _ := s.table(scope, false)
	v, ok := m[name]

	return v, ok
}

// Len returns the number of bindings across all scopes.
func (s *Set) Len() int {
	return len(s.Query) + len(s.Context) + len(s.Variable) + len(s.Temp)
}

// Merge copies every binding of o into s, replacing entries of the same
// scope and name.
func (s *Set) Merge(o Set) {
	for _, scope := range Scopes {
		src, _ := o.table(scope, false)
		if len(src) == 0 {
			continue
		}

		dst, _ := s.table(scope, true)
		maps.Copy(dst, src)
	}
}

// Functions returns the query bindings as constant functions.
func (s *Set) Functions() lang.Functions {
	funcs := make(lang.Functions, len(s.Query))
	for name, v := range s.Query {
		funcs[name] = lang.Constant(v)
	}

	return funcs
}

// Environment returns an environment seeded with copies of the bindings.
// Later opts override the bindings.
func (s *Set) Environment(opts ...lang.EnvOption) *lang.Environment {
	base := []lang.EnvOption{
		lang.WithContext(maps.Clone(s.Context)),
		lang.WithVariables(maps.Clone(s.Variable)),
		lang.WithTemps(maps.Clone(s.Temp)),
	}

	return lang.NewEnvironment(s.Functions(), append(base, opts...)...)
}

// document is the decoded shape of a YAML or JSON bindings file.
type document struct {
	Query    map[string]any `json:"query"    yaml:"query"`
	Context  map[string]any `json:"context"  yaml:"context"`
	Variable map[string]any `json:"variable" yaml:"variable"`
	Temp     map[string]any `json:"temp"     yaml:"temp"`
}

func (d document) sections() map[lang.Scope]map[string]any {
	return map[lang.Scope]map[string]any{
		lang.ScopeQuery:    d.Query,
		lang.ScopeContext:  d.Context,
		lang.ScopeVariable: d.Variable,
		lang.ScopeTemp:     d.Temp,
	}
}

// set converts the native sections of d into values.
func (d document) set() (Set, error) {
	var s Set

	for scope, section := range d.sections() {
		for name, x := range section {
			v, err := lang.ValueOf(x)
			if err != nil {
				return Set{}, ErrDecode.Wrap(err).With(
					slog.String("scope", scope.String()),
					slog.String("name", name),
				)
			}

			if err := s.Bind(scope, name, v); err != nil {
				return Set{}, err
			}
		}
	}

	return s, nil
}
