// Package profile starts optional runtime profiling backed by
// [github.com/pkg/profile].
//
// Profiling is compiled in only with the pprof build tag:
//
//	go build -tags pprof .
//	molang --pprof-mode cpu eval 'math.sin(q.anim_time * 360)'
//
// Without the tag, [Modes] is empty and [Config.Start] returns a no-op
// stopper, so callers need no build constraints of their own.
//
// Profiles are written to the configured path, by default the pprof
// directory under the user cache directory. Inspect them with
//
//	go tool pprof -http=: ~/.cache/molang/pprof/cpu.pprof
package profile

// Tag is the build tag required to enable profiling. It also names the
// default output subdirectory.
const Tag = `pprof`
