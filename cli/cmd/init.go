package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/molang/log"
	"github.com/ardnew/molang/pkg"
	"github.com/ardnew/molang/profile"
)

// Init generates a default configuration file with current flag values.
type Init struct {
	Force bool `help:"Overwrite existing configuration file" short:"f"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context, streams *Streams) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)
	if ktx == nil {
		panic("internal error: kong context undefined")
	}

	confPath, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok {
		panic("internal error: config path undefined")
	}

	// Check if file exists and force not set
	_, err = os.Stat(confPath)
	if err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			With(slog.Bool("exists", true)).
			Wrap(ErrFileExists)
	}

	data, err := i.document(ctx, ktx)
	if err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}

	if err = os.WriteFile(confPath, data, 0o600); err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}

	log.DebugContext(ctx,
		"initialized configuration file",
		slog.String("path", confPath),
	)

	_, err = fmt.Fprintln(streams.Out, confPath)

	return err
}

// document renders the configuration file from the current values of the
// application's flags.
func (i *Init) document(ctx context.Context, ktx *kong.Context) ([]byte, error) {
	var entries yaml.MapSlice

	prefixIgnore := []string{"help", profile.Tag}

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || slices.ContainsFunc(prefixIgnore, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		val := flagValue(ktx, flag)
		if val != nil {
			entries = append(entries, yaml.MapItem{Key: flag.Name, Value: val})
		}
	}

	body, err := yaml.MarshalContext(ctx, entries, yaml.Indent(defaultIndent))
	if err != nil {
		return nil, ErrYAMLMarshal.Wrap(err)
	}

	header := fmt.Sprintf("# %s %s configuration\n#\n"+
		"# Command-line flags override the values in this file.\n",
		pkg.Name, pkg.Version)

	return append([]byte(header), body...), nil
}

// flagValue returns the current value of flag, or nil if it is unset.
func flagValue(ktx *kong.Context, flag *kong.Flag) any {
	val := ktx.FlagValue(flag)

	switch v := val.(type) {
	case nil:
		return nil

	case string:
		if v == "" {
			return nil
		}

		return v

	case []string:
		if len(v) == 0 {
			return nil
		}

		return v

	case bool, int, int64, uint, uint64, float64:
		return v

	case fmt.Stringer:
		return v.String()

	default:
		return fmt.Sprint(v)
	}
}
