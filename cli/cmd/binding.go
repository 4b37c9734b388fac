package cmd

import (
	"log/slog"

	"github.com/ardnew/molang/cli/bindings"
	"github.com/ardnew/molang/lang"
	"github.com/ardnew/molang/log"
)

// Binding holds the flags that supply host bindings to scripts.
type Binding struct {
	Bindings []string `help:"Load bindings from YAML, JSON or HCL file(s)."               placeholder:"PATH"      short:"b" type:"existingfile"`
	Query    []string `help:"Bind query.NAME to the value of an expr-lang expression."    placeholder:"NAME=EXPR" short:"q" sep:"none"`
	Context  []string `help:"Bind context.NAME to the value of an expr-lang expression."  placeholder:"NAME=EXPR" short:"c" sep:"none"`
	Variable []string `help:"Bind variable.NAME to the value of an expr-lang expression." placeholder:"NAME=EXPR" short:"v" sep:"none"`
	Temp     []string `help:"Bind temp.NAME to the value of an expr-lang expression."     placeholder:"NAME=EXPR" short:"t" sep:"none"`
}

// load reads every bindings file and then applies the assignment flags over
// them.
func (b Binding) load() (bindings.Set, error) {
	var set bindings.Set

	for _, path := range b.Bindings {
		s, err := bindings.Load(path)
		if err != nil {
			return bindings.Set{}, ErrBindings.Wrap(err).With(slog.String("path", path))
		}

		set.Merge(s)
	}

	assignments := []struct {
		scope lang.Scope
		list  []string
	}{
		{lang.ScopeQuery, b.Query},
		{lang.ScopeContext, b.Context},
		{lang.ScopeVariable, b.Variable},
		{lang.ScopeTemp, b.Temp},
	}

	for _, a := range assignments {
		if err := set.AssignAll(a.scope, a.list...); err != nil {
			return bindings.Set{}, ErrBindings.Wrap(err)
		}
	}

	log.Debug("bindings loaded",
		slog.Int("files", len(b.Bindings)),
		slog.Int("bindings", set.Len()),
	)

	return set, nil
}
