package log

import "io"

// Option applies a configuration option to config.
type Option func(config) config

// apply applies multiple options to a config.
func apply(cfg config, opts ...Option) config {
	for _, opt := range opts {
		cfg = opt(cfg)
	}

	return cfg
}

// WithDefaults returns an option that resets the configuration to its
// defaults with the given output writer.
func WithDefaults(w io.Writer) Option {
	return func(c config) config {
		c.output = w
		c.level = DefaultLevel
		c.format = DefaultFormat
		c.timeLayout = "RFC3339"
		c.caller = false
		c.pretty = false

		return c
	}
}

// WithOutput sets the log output writer.
func WithOutput(w io.Writer) Option {
	return func(c config) config {
		c.output = w

		return c
	}
}

// WithLevel sets the minimum log level.
func WithLevel(level Level) Option {
	return func(c config) config {
		c.level = level

		return c
	}
}

// WithFormat sets the log output format.
func WithFormat(format Format) Option {
	return func(c config) config {
		c.format = format

		return c
	}
}

// WithTimeLayout sets the timestamp layout by name or literal layout.
func WithTimeLayout(layout string) Option {
	return func(c config) config {
		c.timeLayout = layout

		return c
	}
}

// WithCaller enables or disables caller information in log output.
func WithCaller(enable bool) Option {
	return func(c config) config {
		c.caller = enable

		return c
	}
}

// WithPretty enables or disables colorized pretty printing.
func WithPretty(enable bool) Option {
	return func(c config) config {
		c.pretty = enable

		return c
	}
}
