package lang

import (
	"context"
	"io"
	"log/slog"

	"github.com/klauspost/readahead"

	"github.com/ardnew/molang/log"
)

// Script is a compiled Molang program.
//
// A Script is immutable and safe for concurrent use by multiple goroutines,
// each evaluating against its own [Environment].
type Script struct {
	value  Value // result of a static script
	root   *Block
	source string
	logger log.Logger
	static bool
}

// Source returns the text the script was compiled from.
func (s *Script) Source() string { return s.source }

// Root returns the compiled syntax tree. It must not be modified.
func (s *Script) Root() *Block { return s.root }

// IsStatic reports whether the script's result was computed at compile time.
func (s *Script) IsStatic() bool { return s.static }

// Constant returns the precomputed result of a static script.
func (s *Script) Constant() (Value, bool) { return s.value, s.static }

// NewScript compiles source without consulting a cache.
func NewScript(ctx context.Context, source string, opts ...Option) (*Script, error) {
	cfg := makeConfig(opts...)

	root, err := Parse(source)
	if err != nil {
		cfg.logger.DebugContext(ctx, "compile failed",
			slog.Int("source_bytes", len(source)),
			slog.Any("error", err),
		)

		return nil, err
	}

	s := &Script{source: source, root: root, logger: cfg.logger}

	if cfg.optimize {
		s.root = optimizeBlock(root)

		if IsStatic(s.root) {
			// A static script that fails is evaluated at runtime so that every
			// evaluation reports the error.
			if v, err := s.run(NewEnvironment(nil)); err == nil {
				s.value, s.static = v, true
			}
		}
	}

	cfg.logger.TraceContext(ctx, "compile",
		slog.Int("source_bytes", len(source)),
		slog.Int("statements", len(s.root.Statements)),
		slog.Bool("optimize", cfg.optimize),
		slog.Bool("static", s.static),
	)

	return s, nil
}

// NewScriptReader compiles the contents of r without consulting a cache.
func NewScriptReader(
	ctx context.Context,
	r io.Reader,
	opts ...Option,
) (*Script, error) {
	source, err := ReadSource(r)
	if err != nil {
		return nil, err
	}

	return NewScript(ctx, source, opts...)
}

// ReadSource reads all script text from r using asynchronous read-ahead.
func ReadSource(r io.Reader) (string, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return "", ErrReadInput.Wrap(err)
	}

	return string(data), nil
}

// IsStatic reports whether the tree rooted at n yields the same result in
// every environment: it reads no query, context, variable, temp, or this
// binding, calls only pure math functions, and performs no assignment. Loops
// draw from the environment's iteration budget, so they are never static.
func IsStatic(n Node) bool {
	static := true

	Walk(n, func(c Node) bool {
		if !static {
			return false
		}

		switch c := c.(type) {
		case *Identifier:
			static = c.Scope == ScopeMath && IsPure(c.Name)
		case *Call:
			static = c.Scope == ScopeMath && IsPure(c.Name)
		case *Assignment, *Loop, *ForEach:
			static = false
		}

		return static
	})

	return static
}

// Option configures compilation and caching.
type Option func(config) config

type config struct {
	logger   log.Logger
	shards   int
	optimize bool
}

// DefaultShards is the number of lock stripes in a [Cache].
const DefaultShards = 64

func makeConfig(opts ...Option) config {
	cfg := config{shards: DefaultShards, optimize: true}

	for _, opt := range opts {
		cfg = opt(cfg)
	}

	return cfg
}

// WithLogger sets the logger used for compile and evaluation diagnostics.
// The zero [log.Logger] discards everything.
func WithLogger(logger log.Logger) Option {
	return func(c config) config {
		c.logger = logger

		return c
	}
}

// WithOptimize enables or disables constant folding and static evaluation.
// Optimization is enabled by default.
func WithOptimize(enable bool) Option {
	return func(c config) config {
		c.optimize = enable

		return c
	}
}

// WithShards sets the number of lock stripes used by [NewCache].
func WithShards(n int) Option {
	return func(c config) config {
		if n > 0 {
			c.shards = n
		}

		return c
	}
}
