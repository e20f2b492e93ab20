// Package logging builds the process logger.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/1broseidon/clockwidget/internal/config"
	"github.com/rs/zerolog"
	"golang.org/x/term"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New builds the root logger for opts. Output goes to stderr, human readable
// when stderr is a terminal and JSON lines otherwise, and is also written to
// a rotating file when opts.File is set. The returned closer releases the
// file.
func New(opts config.Logging) (zerolog.Logger, io.Closer) {
	return newLogger(os.Stderr, term.IsTerminal(int(os.Stderr.Fd())), opts)
}

func newLogger(stderr io.Writer, tty bool, opts config.Logging) (zerolog.Logger, io.Closer) {
	out := stderr
	if tty {
		out = zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.TimeOnly}
	}

	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		file := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
		out = zerolog.MultiLevelWriter(out, file)
		closer = file
	}

	logger := zerolog.New(out).
		Level(ParseLevel(opts.Level)).
		With().
		Timestamp().
		Logger()
	return logger, closer
}

// ParseLevel maps debug, info, warn (or warning) and error to zerolog
// levels. Anything else is info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Component returns a child logger tagged with a component field.
func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
