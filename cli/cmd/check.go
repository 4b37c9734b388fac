package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ardnew/molang/lang"
	"github.com/ardnew/molang/log"
)

// Check compiles scripts without evaluating them and reports whether each
// is static.
type Check struct {
	Input `embed:""`

	Optimize bool `default:"true" help:"Fold constant subexpressions when compiling." negatable:""`
}

// Run executes the check command. Every script is checked; the errors of
// all scripts that fail to compile are returned together.
func (c *Check) Run(ctx context.Context, streams *Streams) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	srcs, err := c.sources(streams)
	if err != nil {
		return err
	}

	var errs []error

	for _, src := range srcs {
		script, err := lang.NewScript(ctx, src.text,
			lang.WithLogger(log.Default()),
			lang.WithOptimize(c.Optimize),
		)
		if err != nil {
			reportSnippet(streams.Err, src.name, err)
			errs = append(errs, ErrCompile.Wrap(err).With(slog.String("file", src.name)))

			continue
		}

		status := "dynamic"
		if v, ok := script.Constant(); ok {
			status = "static " + v.String()
		}

		if _, err := fmt.Fprintf(streams.Out, "%s: %s\n", src.name, status); err != nil {
			return ErrWriteOutput.Wrap(err)
		}
	}

	return errors.Join(errs...)
}
