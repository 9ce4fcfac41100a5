package logging

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog with the verbose helpers the engine uses. The zero
// value discards everything.
type Logger struct {
	z       *zerolog.Logger
	Verbose bool
}

func New(writer io.Writer, level zerolog.Level, verbose bool) Logger {
	if verbose && level > zerolog.DebugLevel {
		level = zerolog.DebugLevel
	}
	z := zerolog.New(zerolog.ConsoleWriter{Out: writer, TimeFormat: time.RFC3339}).
		Level(level).
		With().
		Timestamp().
		Logger()
	return Logger{z: &z, Verbose: verbose}
}

// Nop returns a logger that writes nowhere.
func Nop() Logger {
	z := zerolog.Nop()
	return Logger{z: &z}
}

// Z exposes the underlying zerolog logger for structured events.
func (l Logger) Z() *zerolog.Logger {
	if l.z == nil {
		nop := zerolog.Nop()
		return &nop
	}
	return l.z
}

func (l Logger) Infof(format string, args ...any) {
	l.Z().Info().Msgf(format, args...)
}

func (l Logger) Warnf(format string, args ...any) {
	l.Z().Warn().Msgf(format, args...)
}

func (l Logger) Verbosef(format string, args ...any) {
	if !l.Verbose {
		return
	}
	l.Z().Debug().Msgf(format, args...)
}

// Measure returns a stop function that logs the elapsed time when called.
func (l Logger) Measure(label string) func() {
	if !l.Verbose {
		return func() {}
	}
	start := time.Now()
	return func() {
		l.Z().Debug().
			Dur("elapsed", time.Since(start).Round(time.Millisecond)).
			Msgf("%s done", label)
	}
}

// ParseLevel accepts zerolog level names and falls back to info for "".
func ParseLevel(name string) (zerolog.Level, error) {
	if name == "" {
		return zerolog.InfoLevel, nil
	}
	return zerolog.ParseLevel(name)
}
