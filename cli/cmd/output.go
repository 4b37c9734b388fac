package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/molang/lang"
)

// defaultIndent is the indent width of JSON and YAML output.
const defaultIndent = 2

// Output encodings.
const (
	outputNative = "native"
	outputJSON   = "json"
	outputYAML   = "yaml"
)

// writeJSON writes v as JSON followed by a newline. A non-positive indent
// writes compact JSON.
func writeJSON(w io.Writer, v any, indent int) error {
	var (
		data []byte
		err  error
	)

	if indent > 0 {
		data, err = json.MarshalIndent(v, "", strings.Repeat(" ", indent))
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return ErrJSONMarshal.Wrap(err)
	}

	if _, err = fmt.Fprintln(w, string(data)); err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}

// writeYAML writes v as a YAML document. A non-positive indent writes flow
// style.
func writeYAML(ctx context.Context, w io.Writer, v any, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	data, err := yaml.MarshalContext(ctx, v, opts...)
	if err != nil {
		return ErrYAMLMarshal.Wrap(err)
	}

	if _, err = w.Write(data); err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}

// ordered returns the bindings of m sorted by name, so YAML output is
// stable.
func ordered(m map[string]lang.Value) yaml.MapSlice {
	out := make(yaml.MapSlice, 0, len(m))
	for _, k := range slices.Sorted(maps.Keys(m)) {
		out = append(out, yaml.MapItem{Key: k, Value: m[k]})
	}

	return out
}

// writeBindings writes each binding of m as "scope.name = value", sorted by
// name.
func writeBindings(w io.Writer, scope lang.Scope, m map[string]lang.Value) error {
	for _, k := range slices.Sorted(maps.Keys(m)) {
		if _, err := fmt.Fprintf(w, "%s.%s = %s\n", scope, k, m[k]); err != nil {
			return ErrWriteOutput.Wrap(err)
		}
	}

	return nil
}
