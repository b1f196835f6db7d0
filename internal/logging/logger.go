package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// New builds the process logger. level is one of debug, info, warn or error
// (default info). format "json", or ENVIRONMENT=production, selects the JSON
// formatter; anything else prints text with full timestamps.
func New(service, level, format string) *logrus.Entry {
	return NewWithOutput(os.Stderr, service, level, format)
}

// NewWithOutput is New with an explicit destination.
func NewWithOutput(out io.Writer, service, level, format string) *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(out)

	switch strings.ToLower(level) {
	case "debug":
		logger.SetLevel(logrus.DebugLevel)
	case "warn", "warning":
		logger.SetLevel(logrus.WarnLevel)
	case "error":
		logger.SetLevel(logrus.ErrorLevel)
	default:
		logger.SetLevel(logrus.InfoLevel)
	}

	if strings.EqualFold(format, "json") || os.Getenv("ENVIRONMENT") == "production" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return logger.WithField("service", service)
}

// Discard returns a logger that drops everything; handy in tests.
func Discard() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logrus.NewEntry(logger)
}
