package bindings

import (
	"log/slog"
	"os"
	"strings"

	"github.com/expr-lang/expr"

	"github.com/ardnew/molang/lang"
)

// exprEnv is the environment visible to assignment expressions.
//
//nolint:gochecknoglobals
var exprEnv = map[string]any{
	"env": os.Getenv,
}

// Assign parses an assignment of the form name=EXPR, evaluates EXPR with
// expr-lang and binds the result to name in scope.
//
// The expression may call env(NAME) to read the process environment.
func (s *Set) Assign(scope lang.Scope, assignment string) error {
	name, source, ok := strings.Cut(assignment, "=")
	name = strings.TrimSpace(name)

	if !ok || name == "" {
		return ErrAssign.With(
			slog.String("scope", scope.String()),
			slog.String("assignment", assignment),
			slog.String("issue", "expected name=EXPR"),
		)
	}

	v, err := Evaluate(source)
	if err != nil {
		return ErrAssign.Wrap(err).With(
			slog.String("scope", scope.String()),
			slog.String("name", name),
		)
	}

	return s.Bind(scope, name, v)
}

// AssignAll applies [Set.Assign] to each assignment in order.
func (s *Set) AssignAll(scope lang.Scope, assignments ...string) error {
	for _, a := range assignments {
		if err := s.Assign(scope, a); err != nil {
			return err
		}
	}

	return nil
}

// Evaluate evaluates an expr-lang expression to a value. An empty
// expression yields unset.
func Evaluate(source string) (lang.Value, error) {
	if strings.TrimSpace(source) == "" {
		return lang.Unset(), nil
	}

	program, err := expr.Compile(source, expr.Env(exprEnv))
	if err != nil {
		return lang.Value{}, err
	}

	out, err := expr.Run(program, exprEnv)
	if err != nil {
		return lang.Value{}, err
	}

	return lang.ValueOf(out)
}
