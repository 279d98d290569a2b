package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var log = zerolog.Nop()

// Init initializes the global logger writing to stdout
func Init(level string, pretty bool) {
	var output io.Writer = os.Stdout

	if pretty {
		output = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
	}

	InitWithWriter(output, level)
}

// InitWithWriter initializes the global logger on an arbitrary writer
func InitWithWriter(output io.Writer, level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	log = zerolog.New(output).
		Level(lvl).
		With().
		Timestamp().
		Str("service", "grse-dashboard").
		Logger()
}

// Get returns the global logger
func Get() *zerolog.Logger {
	return &log
}

// Debug logs debug level message
func Debug() *zerolog.Event {
	return log.Debug()
}

// Info logs info level message
func Info() *zerolog.Event {
	return log.Info()
}

// Warn logs warning level message
func Warn() *zerolog.Event {
	return log.Warn()
}

// Error logs error level message
func Error() *zerolog.Event {
	return log.Error()
}

// Fatal logs fatal level message and exits
func Fatal() *zerolog.Event {
	return log.Fatal()
}
