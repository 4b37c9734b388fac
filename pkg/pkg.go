//nolint:gochecknoglobals
package pkg

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var version string

// Version is the semantic version of the module, embedded at build time from
// the VERSION file.
var Version = strings.TrimSpace(version)

const (
	// Name is the command name. It also names the configuration and cache
	// directories when the executable name cannot be used.
	Name = "molang"
	// Description summarizes the command in help output.
	Description = "Compile, format and evaluate Molang expressions"
)

// AuthorInfo identifies one author.
type AuthorInfo struct {
	Name  string
	Email string
}

// Author lists the primary author(s) of the project.
var Author = []AuthorInfo{
	{"ardnew", "andrew@ardnew.com"},
}
