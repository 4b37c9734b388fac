// Package cli contains the command line interface for molang.
//
// # Usage
//
// Scripts are evaluated by default, so the eval command name may be
// omitted:
//
//	molang 'math.clamp(q.speed * 2, 0, 1)' -q speed=0.75
//	molang eval -f walk.molang -b entity.yaml --output json
//	molang check -f walk.molang
//	molang fmt sexpr 'v.x = 1 + 2 * 3'
//	molang repl -c scale=2
//
// # Bindings
//
// The --query, --context, --variable and --temp flags bind one name each
// to the value of an expr-lang expression, e.g. -v 'speed=1.5' or
// -c 'tags=["idle", "walk"]'. The --bindings flag loads whole scopes from
// YAML, JSON or HCL files. Flags are applied over files in command-line
// order. See package [github.com/ardnew/molang/cli/bindings].
//
// # Configuration
//
// Flag defaults are read from config.yaml in the per-user configuration
// directory. The init command writes that file from the current flag values.
// See [loadYAML] for the accepted keys.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (text, json)
//   - --log-time: Set timestamp format (stampmilli, rfc3339, kitchen, none, ...)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize log output on terminals
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o molang .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default:
//     ~/.cache/molang/pprof)
package cli
