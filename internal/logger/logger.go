package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Options struct {
	Level string
	File  string
}

// New builds the service logger. Outside production the console gets a
// human-readable writer; a non-empty File adds a rotating JSON sink.
func New(env string, opts ...Options) zerolog.Logger {
	var opt Options
	if len(opts) > 0 {
		opt = opts[0]
	}

	var console io.Writer = os.Stdout
	if env != "production" {
		console = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	out := console
	if opt.File != "" {
		out = zerolog.MultiLevelWriter(console, &lumberjack.Logger{
			Filename:   opt.File,
			MaxSize:    50,
			MaxBackups: 5,
			MaxAge:     30,
			Compress:   true,
		})
	}

	level := zerolog.InfoLevel
	if env != "production" {
		level = zerolog.DebugLevel
	}
	if opt.Level != "" {
		if parsed, err := zerolog.ParseLevel(opt.Level); err == nil {
			level = parsed
		}
	}

	return zerolog.New(out).Level(level).With().Timestamp().Str("service", "crime-dashboard").Logger()
}
