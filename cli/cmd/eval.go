package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"maps"

	"github.com/ardnew/molang/cli/bindings"
	"github.com/ardnew/molang/lang"
	"github.com/ardnew/molang/log"
)

// Eval compiles and evaluates scripts against host bindings.
type Eval struct {
	Input `embed:""`

	Binding `embed:""`

	Repeat        int    `default:"1"                help:"Evaluate each script N times, sharing one variable map." placeholder:"N"`
	MaxIterations int    `default:"${maxIterations}" help:"Loop iterations allowed per evaluation."                 placeholder:"N"`
	KeepTemps     bool   `                           help:"Keep temp bindings between repeated evaluations."`
	Optimize      bool   `default:"true"             help:"Fold constant subexpressions when compiling."           negatable:""`
	Output        string `default:"native"           help:"Result encoding (${enum})."                              enum:"native,json,yaml" short:"o"`
	ShowVariables bool   `                           help:"Print the variable map after evaluating."`
}

// result is the outcome of evaluating one script.
type result struct {
	Result   lang.Value            `json:"result"   yaml:"result"`
	Variable map[string]lang.Value `json:"variable" yaml:"variable"`
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context, streams *Streams) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	set, err := e.Binding.load()
	if err != nil {
		return err
	}

	srcs, err := e.sources(streams)
	if err != nil {
		return err
	}

	for _, src := range srcs {
		res, err := e.evaluate(ctx, src, &set)
		if err != nil {
			reportSnippet(streams.Err, src.name, err)

			return err
		}

		if err := e.write(ctx, streams, res); err != nil {
			return err
		}
	}

	return nil
}

func (e *Eval) evaluate(ctx context.Context, src source, set *bindings.Set) (result, error) {
	script, err := lang.NewScript(ctx, src.text,
		lang.WithLogger(log.Default()),
		lang.WithOptimize(e.Optimize),
	)
	if err != nil {
		return result{}, ErrCompile.Wrap(err).With(slog.String("file", src.name))
	}

	// Temps are reseeded from the bindings before each evaluation unless
	// they are kept.
	env := set.Environment(
		lang.WithMaxIterations(e.MaxIterations),
		lang.WithTempPolicy(lang.TempKeep),
	)

	var res result

	for i := range max(e.Repeat, 1) {
		if !e.KeepTemps {
			env.Temp = maps.Clone(set.Temp)
		}

		res.Result, err = script.Evaluate(ctx, env)
		if err != nil {
			return result{}, ErrEvaluate.Wrap(err).With(
				slog.String("file", src.name),
				slog.Int("iteration", i+1),
			)
		}
	}

	log.DebugContext(ctx, "evaluated",
		slog.String("file", src.name),
		slog.Bool("static", script.IsStatic()),
		slog.String("result", res.Result.String()),
	)

	if e.ShowVariables {
		res.Variable = env.Variable
		if res.Variable == nil {
			res.Variable = map[string]lang.Value{}
		}
	}

	return res, nil
}

func (e *Eval) write(ctx context.Context, streams *Streams, res result) error {
	var doc any = res.Result
	if e.ShowVariables {
		doc = res
	}

	switch e.Output {
	case outputJSON:
		return writeJSON(streams.Out, doc, defaultIndent)

	case outputYAML:
		if e.ShowVariables {
			doc = yamlResult(res)
		}

		return writeYAML(ctx, streams.Out, doc, defaultIndent)

	default:
		if _, err := fmt.Fprintln(streams.Out, res.Result); err != nil {
			return ErrWriteOutput.Wrap(err)
		}

		if e.ShowVariables {
			return writeBindings(streams.Out, lang.ScopeVariable, res.Variable)
		}

		return nil
	}
}

// yamlResult orders the variable map of res for YAML output.
func yamlResult(res result) any {
	return struct {
		Result   lang.Value `yaml:"result"`
		Variable any        `yaml:"variable"`
	}{res.Result, ordered(res.Variable)}
}
