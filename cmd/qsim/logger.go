package main

import (
	"io"

	"github.com/charmbracelet/log"
)

func newLogger(w io.Writer, level string) *log.Logger {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}

	logger := log.NewWithOptions(w, log.Options{
		Prefix:          "qsim",
		ReportTimestamp: true,
		Level:           lvl,
	})

	if err != nil {
		logger.Warn("unknown log level, using info", "level", level)
	}

	return logger
}
