package cli

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/yakaboskic/meta-sanity/log"
)

// logFormat configures the logger format as a side effect of parsing via
// encoding.TextUnmarshaler, so the format takes effect early enough to
// shape error messages emitted during parsing itself.
type logFormat string

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *logFormat) UnmarshalText(text []byte) error {
	*f = logFormat(text)
	log.Config(log.WithFormat(log.ParseFormat(string(*f))))

	return nil
}

// logLevel configures the logger level as a side effect of parsing via
// encoding.TextUnmarshaler.
type logLevel string

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *logLevel) UnmarshalText(text []byte) error {
	*l = logLevel(text)
	log.Config(log.WithLevel(log.ParseLevel(string(*l))))

	return nil
}

type logConfig struct {
	Level      logLevel  `default:"info" enum:"debug,info,warn,error" help:"Set log level."`
	Format     logFormat `default:"text" enum:"json,text"             help:"Set log format."`
	TimeLayout string    `default:"RFC3339"                           help:"Set timestamp format."`
	Caller     bool      `default:"false"                             help:"Include caller information."       negatable:""`
	Pretty     bool      `default:"true"                              help:"Enable colorized pretty printing." negatable:""`
}

func (*logConfig) vars() kong.Vars {
	return kong.Vars{}
}

func (*logConfig) group() kong.Group {
	var group kong.Group

	group.Key = "log"
	group.Title = "Logging options"

	return group
}

func (f *logConfig) start(ctx context.Context) {
	log.Config(
		log.WithLevel(log.ParseLevel(string(f.Level))),
		log.WithFormat(log.ParseFormat(string(f.Format))),
		log.WithTimeLayout(f.TimeLayout),
		log.WithCaller(f.Caller),
		log.WithPretty(f.Pretty),
	)

	log.DebugContext(ctx, "logger initialized",
		slog.String("level", string(f.Level)),
		slog.String("format", string(f.Format)),
		slog.String("time", f.TimeLayout),
		slog.Bool("caller", f.Caller),
		slog.Bool("pretty", f.Pretty),
	)
}

// scan performs an early pass over the raw arguments so that logger
// flags apply before Kong begins parsing, regardless of flag position.
// The TextUnmarshaler types above handle the value flags; the boolean
// flags have no such hook and are recognized here directly.
func (f *logConfig) scan(args []string) {
	for i := 0; i < len(args); i++ {
		arg := args[i]

		if !strings.HasPrefix(arg, "--log-") && !strings.HasPrefix(arg, "--no-log-") {
			continue
		}

		name, value, assigned := strings.Cut(arg, "=")

		// Value flags may carry their value in the next argument.
		takesValue := name == "--log-level" || name == "--log-format"
		if takesValue && !assigned && i+1 < len(args) &&
			len(args[i+1]) > 0 && args[i+1][0] != '-' {
			value = args[i+1]
			i++
		}

		switch name {
		case "--log-level":
			_ = f.Level.UnmarshalText([]byte(value))

		case "--log-format":
			_ = f.Format.UnmarshalText([]byte(value))

		case "--log-pretty", "--no-log-pretty":
			v := boolFlag(name, value, assigned, "--log-pretty")
			f.Pretty = v

			log.Config(log.WithPretty(v))

		case "--log-caller", "--no-log-caller":
			v := boolFlag(name, value, assigned, "--log-caller")
			f.Caller = v

			log.Config(log.WithCaller(v))
		}
	}
}

// boolFlag resolves a possibly negated boolean flag to its value.
func boolFlag(name, value string, assigned bool, positive string) bool {
	v := true

	if assigned {
		if parsed, err := strconv.ParseBool(value); err == nil {
			v = parsed
		}
	}

	if name != positive {
		v = !v
	}

	return v
}
