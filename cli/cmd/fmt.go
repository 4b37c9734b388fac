package cmd

import (
	"context"
	"io"
	"log/slog"

	"github.com/ardnew/molang/lang"
	"github.com/ardnew/molang/log"
)

// Fmt parses scripts and prints their syntax trees in the chosen format.
type Fmt struct {
	Native Native `cmd:"" default:"withargs" help:"Format as canonical Molang source (default)."`
	Sexpr  Sexpr  `cmd:""                    help:"Format as an s-expression."`
	JSON   JSON   `cmd:""                    help:"Format the syntax tree as JSON."`
	YAML   YAML   `cmd:""                    help:"Format the syntax tree as YAML."`
}

// Tree holds the flags shared by every fmt subcommand.
type Tree struct {
	Input `embed:""`

	Optimize bool `help:"Fold constant subexpressions before formatting." negatable:""`
}

// each parses every script selected by t and passes its root to fn.
func (t *Tree) each(
	ctx context.Context,
	streams *Streams,
	format string,
	fn func(root lang.Node) error,
) (err error) {
	_, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	srcs, err := t.sources(streams)
	if err != nil {
		return err
	}

	for _, src := range srcs {
		var root lang.Node

		root, err = lang.Parse(src.text)
		if err != nil {
			reportSnippet(streams.Err, src.name, err)

			return ErrCompile.Wrap(err).With(
				slog.String("file", src.name),
				slog.String("format", format),
			)
		}

		if t.Optimize {
			root = lang.Optimize(root)
		}

		log.TraceContext(ctx, "formatting",
			slog.String("file", src.name),
			slog.String("format", format),
		)

		if err = fn(root); err != nil {
			return err
		}
	}

	return nil
}

// Native formats scripts as canonical Molang source.
type Native struct {
	Tree `embed:""`
}

// Run executes the native command.
func (n *Native) Run(ctx context.Context, streams *Streams) error {
	return n.each(ctx, streams, "native", func(root lang.Node) error {
		return writeLine(streams.Out, lang.FormatString(root))
	})
}

// Sexpr formats scripts as s-expressions.
type Sexpr struct {
	Tree `embed:""`
}

// Run executes the sexpr command.
func (s *Sexpr) Run(ctx context.Context, streams *Streams) error {
	return s.each(ctx, streams, "sexpr", func(root lang.Node) error {
		return writeLine(streams.Out, lang.Sexpr(root))
	})
}

// JSON formats syntax trees as JSON.
type JSON struct {
	Tree `embed:""`

	Indent int `default:"${defaultIndent}" help:"Indent width for JSON output." short:"i"`
}

// Run executes the json command.
func (j *JSON) Run(ctx context.Context, streams *Streams) error {
	return j.each(ctx, streams, "json", func(root lang.Node) error {
		return writeJSON(streams.Out, lang.Dump(root), j.Indent)
	})
}

// YAML formats syntax trees as YAML.
type YAML struct {
	Tree `embed:""`

	Indent int `default:"${defaultIndent}" help:"Indent width for YAML output." short:"i"`
}

// Run executes the yaml command.
func (y *YAML) Run(ctx context.Context, streams *Streams) error {
	return y.each(ctx, streams, "yaml", func(root lang.Node) error {
		return writeYAML(ctx, streams.Out, lang.Dump(root), y.Indent)
	})
}

func writeLine(w io.Writer, s string) error {
	if _, err := io.WriteString(w, s+"\n"); err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}
