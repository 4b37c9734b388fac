package cmd

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/ardnew/molang/cli/cmd/repl"
	"github.com/ardnew/molang/lang"
	"github.com/ardnew/molang/log"
)

// Repl starts an interactive session that evaluates one script per line.
type Repl struct {
	Binding `embed:""`

	MaxIterations int  `default:"${maxIterations}" help:"Loop iterations allowed per evaluation." placeholder:"N"`
	NoHistory     bool `                           help:"Keep line history in memory only."`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	set, err := r.load()
	if err != nil {
		return err
	}

	env := set.Environment(lang.WithMaxIterations(r.MaxIterations))

	return repl.Run(ctx, env, r.historyPath(ctx), log.Default())
}

// historyPath returns the history file in the cache directory, or "" when
// history is not persisted.
func (r *Repl) historyPath(ctx context.Context) string {
	if r.NoHistory {
		return ""
	}

	ktx := kongContextFrom(ctx)
	if ktx == nil {
		return ""
	}

	dir, ok := ktx.Model.Vars()[CacheIdentifier]
	if !ok || dir == "" {
		log.WarnContext(ctx, "cache directory undefined; history not saved")

		return ""
	}

	path := filepath.Join(dir, repl.HistoryFile)
	log.TraceContext(ctx, "repl history", slog.String("path", path))

	return path
}
