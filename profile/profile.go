package profile

// Stopper ends a profiling session and flushes its output.
type Stopper interface{ Stop() }

// Config returns the profiler settings: mode selects what to profile (one of
// [Modes], or empty to disable), path is the output directory, and quiet
// suppresses the profiler's own log lines.
type Config func() (mode, path string, quiet bool)

// Make returns a disabled Config modified by opts.
func Make(opts ...func(Config) Config) Config {
	c := Config(func() (string, string, bool) { return "", "", false })

	for _, opt := range opts {
		c = opt(c)
	}

	return c
}

// Start begins profiling. The result is always safe to Stop; it is a no-op
// when the mode is empty or unsupported, or profiling was not compiled in.
func (c Config) Start() Stopper {
	if c == nil {
		return ignore{}
	}

	mode, path, quiet := c()
	if mode == "" {
		return ignore{}
	}

	return start(mode, path, quiet)
}

// WithMode sets the profiling mode.
func WithMode(mode string) func(Config) Config {
	return func(c Config) Config {
		_, path, quiet := c()

		return func() (string, string, bool) { return mode, path, quiet }
	}
}

// WithPath sets the output directory.
func WithPath(path string) func(Config) Config {
	return func(c Config) Config {
		mode, _, quiet := c()

		return func() (string, string, bool) { return mode, path, quiet }
	}
}

// WithQuiet silences the profiler's start and stop messages.
func WithQuiet(quiet bool) func(Config) Config {
	return func(c Config) Config {
		mode, path, _ := c()

		return func() (string, string, bool) { return mode, path, quiet }
	}
}

type ignore struct{}

func (ignore) Stop() {}
