package log

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var Logger zerolog.Logger

func init() {
	Logger = New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	log.Logger = Logger
}

// New builds a console logger writing to out at info level.
func New(out io.Writer) zerolog.Logger {
	return zerolog.New(out).
		Level(zerolog.InfoLevel).
		With().
		Timestamp().
		Logger()
}

// SetLevel parses a zerolog level name; unknown names leave the level unchanged.
func SetLevel(name string) error {
	lvl, err := zerolog.ParseLevel(name)
	if err != nil {
		return fmt.Errorf("log level %q: %w", name, err)
	}
	Logger = Logger.Level(lvl)
	log.Logger = Logger
	return nil
}

// SetOutput redirects the package logger, keeping its level.
func SetOutput(out io.Writer) {
	Logger = Logger.Output(out)
	log.Logger = Logger
}

func Info() *zerolog.Event  { return Logger.Info() }
func Error() *zerolog.Event { return Logger.Error() }
func Warn() *zerolog.Event  { return Logger.Warn() }
func Debug() *zerolog.Event { return Logger.Debug() }
func Fatal() *zerolog.Event { return Logger.Fatal() }

// Printf logs a preformatted info line. It matches engine.LogFunc.
func Printf(format string, args ...any) {
	Logger.Info().Msgf(format, args...)
}
