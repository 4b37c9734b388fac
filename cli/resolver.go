package cli

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

// loadYAML is a [kong.ConfigurationLoader] that reads the YAML
// configuration file written by the init command.
//
// Keys name flags without their leading dashes. Nested mappings are
// flattened by joining keys with "-", so both of these set --log-level:
//
//	log-level: debug
//
//	log:
//	  level: debug
//
// Underscores may be used in place of hyphens. A key prefixed by a command
// path applies only to that command's flags:
//
//	eval:
//	  output: json
//	fmt-json-indent: 4
//
// Sequences set repeatable flags. Command-line flags override the file.
func loadYAML(r io.Reader) (kong.Resolver, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	cfg := config{}

	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	cfg.flatten("", doc)

	return cfg, nil
}

// config implements [kong.Resolver] over flattened configuration keys.
type config map[string]any

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver]. A command-scoped key takes precedence
// over a global one.
func (c config) Resolve(
	_ *kong.Context,
	parent *kong.Path,
	flag *kong.Flag,
) (any, error) {
	if parent != nil && parent.Command != nil {
		scoped := append(commandPath(parent.Command), flag.Name)
		if v, ok := c[key(scoped...)]; ok {
			return v, nil
		}
	}

	if v, ok := c[key(flag.Name)]; ok {
		return v, nil
	}

	return nil, nil
}

// commandPath returns the names of n and its parent commands, outermost
// first.
func commandPath(n *kong.Node) []string {
	var names []string

	for ; n != nil && n.Type == kong.CommandNode; n = n.Parent {
		names = append([]string{n.Name}, names...)
	}

	return names
}

// flatten adds the leaves of m to c under keys qualified by prefix.
func (c config) flatten(prefix string, m map[string]any) {
	for k, v := range m {
		k = key(prefix, k)

		switch v := v.(type) {
		case map[string]any:
			c.flatten(k, v)

		case []any:
			list := make([]any, 0, len(v))
			for _, e := range v {
				if s, ok := scalar(e); ok {
					list = append(list, s)
				}
			}

			c[k] = list

		default:
			if s, ok := scalar(v); ok {
				c[k] = s
			}
		}
	}
}

// key joins the non-empty parts with "-" using hyphens for underscores.
func key(parts ...string) string {
	var b strings.Builder

	for _, p := range parts {
		if p == "" {
			continue
		}

		if b.Len() > 0 {
			b.WriteByte('-')
		}

		b.WriteString(strings.ReplaceAll(p, "_", "-"))
	}

	return b.String()
}

// scalar formats v as a flag value. Kong parses numbers and booleans from
// their text, and YAML null leaves the flag unset.
func scalar(v any) (string, bool) {
	switch v := v.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case uint64:
		return strconv.FormatUint(v, 10), true
	default:
		return fmt.Sprint(v), true
	}
}
