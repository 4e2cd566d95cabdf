package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Options selects the adapter's destination and encoding. The zero value
// writes JSON to stdout, the format machine consumers expect; the console
// encoding is for interactive CLI runs.
type Options struct {
	// Console switches to the human-readable console writer.
	Console bool
	// Writer overrides the destination. Defaults to stdout.
	Writer io.Writer
}

// ZerologLogger implements Logger using rs/zerolog. Every line carries the
// component tag; formulation runs add their structured build fields through
// Debugw.
type ZerologLogger struct {
	log zerolog.Logger
}

// NewZerologLogger creates a component-tagged adapter.
func NewZerologLogger(component string, opts Options) Logger {
	var out io.Writer = os.Stdout
	if opts.Writer != nil {
		out = opts.Writer
	}
	if opts.Console {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	z := zerolog.New(out).With().Timestamp().Str("component", component).Logger()
	return &ZerologLogger{log: z}
}

func (l *ZerologLogger) Debugf(format string, args ...any) {
	l.log.Debug().Msgf(format, args...)
}

func (l *ZerologLogger) Debugw(msg string, fields map[string]any) {
	l.log.Debug().Fields(fields).Msg(msg)
}

func (l *ZerologLogger) Infof(format string, args ...any) {
	l.log.Info().Msgf(format, args...)
}

func (l *ZerologLogger) Warnf(format string, args ...any) {
	l.log.Warn().Msgf(format, args...)
}

func (l *ZerologLogger) Errorf(format string, args ...any) {
	l.log.Error().Msgf(format, args...)
}
