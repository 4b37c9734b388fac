// Package cmd implements the molang subcommands: eval, check, fmt, repl and
// init.
//
// Every command reads Molang scripts named by an [Input] and writes to the
// [Streams] bound by the caller, so commands can run against buffers in
// tests as well as the process's standard streams.
package cmd

import (
	"strconv"

	"github.com/alecthomas/kong"

	"github.com/ardnew/molang/lang"
)

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the configuration file.
	ConfigIdentifier = "config"
)

// Vars returns the kong variables referenced by command flag defaults.
func Vars() kong.Vars {
	return kong.Vars{
		"maxIterations": strconv.Itoa(lang.DefaultMaxIterations),
		"defaultIndent": strconv.Itoa(defaultIndent),
	}
}
