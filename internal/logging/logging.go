package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

var log zerolog.Logger

// Init configures the global logger. Verbose enables debug level with a
// human-friendly console writer; otherwise only warnings and above reach
// stderr so normal command output stays clean.
func Init(verbose bool) {
	var writer io.Writer
	level := zerolog.WarnLevel
	if verbose {
		writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
		level = zerolog.DebugLevel
	} else {
		writer = os.Stderr
	}

	log = zerolog.New(writer).
		Level(level).
		With().
		Timestamp().
		Logger()
}

func init() {
	Init(false)
}

func Debug() *zerolog.Event { return log.Debug() }
func Info() *zerolog.Event  { return log.Info() }
func Warn() *zerolog.Event  { return log.Warn() }
func Error() *zerolog.Event { return log.Error() }

// Get returns the underlying zerolog.Logger.
func Get() zerolog.Logger {
	return log
}
