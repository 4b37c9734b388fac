// Package log wraps [log/slog] with a trace level, typed attributes, and
// functional configuration.
//
// # Usage
//
//	logger := log.Make(os.Stderr, log.WithLevel(log.LevelDebug))
//	logger.Info("compiled", slog.String("source", src))
//
// The zero [Logger] discards every record, so libraries can hold a Logger
// field without requiring callers to configure one.
//
// # Package logger
//
// The package-level functions ([Info], [Error], ...) write through a
// default Logger that targets standard error. [Config] rebuilds it with
// new options; [Default] returns it for handing to other packages.
//
// # Output
//
// Records are encoded as [FormatText] or [FormatJSON]. With [WithPretty]
// both encodings are rendered by a handler that colorizes keys, values and
// levels when, and only when, the output is a terminal. Timestamps follow
// [WithTimeLayout]; an empty layout omits them.
package log
