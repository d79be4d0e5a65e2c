// Package logger configures the process-wide zerolog logger from
// FLOWKIT_LOG_LEVEL and whether stdout is a terminal.
package logger

import (
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures the global zerolog logger and returns it. levelName
// is one of zerolog's level names ("debug", "info", "warn", "error"); an
// unknown or empty value defaults to "info". When stdout is a terminal,
// output goes through zerolog's ConsoleWriter; otherwise it stays
// newline-delimited JSON, which is what a cluster job's redirected log
// file receives.
func Setup(levelName string) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(levelName))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var logger zerolog.Logger
	if isatty.IsTerminal(os.Stdout.Fd()) {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}).With().Timestamp().Logger()
	} else {
		logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	log.Logger = logger
	return logger
}

// Logger returns a default info-level logger without mutating the
// global zerolog logger, for callers that want an instance without
// Setup's process-wide side effect.
func Logger() zerolog.Logger {
	return zerolog.New(os.Stdout).Level(zerolog.InfoLevel).With().Timestamp().Logger()
}
