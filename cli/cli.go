package cli

import (
	"context"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/ardnew/molang/cli/cmd"
	"github.com/ardnew/molang/log"
	"github.com/ardnew/molang/pkg"
)

// ConfigFile is the name of the configuration file in the configuration
// directory.
const ConfigFile = "config.yaml"

// CLI is the top-level command-line interface for molang.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Init  cmd.Init  `cmd:"" help:"Initialize configuration file."`
	Eval  cmd.Eval  `cmd:"" help:"Evaluate scripts."                          default:"withargs"`
	Check cmd.Check `cmd:"" help:"Compile scripts and report whether they are static."`
	Fmt   cmd.Fmt   `cmd:"" help:"Print the syntax tree of scripts."`
	Repl  cmd.Repl  `cmd:"" help:"Evaluate scripts interactively."`
}

// Run executes the molang CLI with the given context and arguments using the
// process's standard streams. The exit function is called with the
// appropriate exit code when parsing terminates the program, e.g., --help.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	if err := pkg.MkdirAll(); err != nil {
		return err
	}

	return run(ctx, cmd.StdStreams(), configPath(), exit, args...)
}

// configPath returns the path of the configuration file.
func configPath() string {
	return filepath.Join(pkg.ConfigDir(), ConfigFile)
}

func run(
	ctx context.Context,
	streams *cmd.Streams,
	configFile string,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	vars := kong.Vars{
		cmd.ConfigIdentifier: configFile,
		cmd.CacheIdentifier:  pkg.CacheDir(),
	}.
		CloneWith(cmd.Vars()).
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	log.Config(log.WithOutput(streams.Err))

	// Pre-scan for logger flags so that the logger is configured before
	// parsing regardless of flag position.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.Writers(streams.Out, streams.Err),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.Bind(streams),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(loadYAML, configFile),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)

	cli.Log.start(ctx)

	// [pprofConfig.start] is a no-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx)()

	return ktx.Run()
}
