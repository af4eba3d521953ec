// Copyright (c) 2024-present ZenTask, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is a minimal logging interface that can be satisfied by the
// logrus-backed implementation used in production and by test fakes.
type Logger interface {
	Debug(msg string, keyValuePairs ...any)
	Info(msg string, keyValuePairs ...any)
	Warn(msg string, keyValuePairs ...any)
	Error(msg string, keyValuePairs ...any)
	Flush() error
}

// logrusAdapter adapts logrus.Logger to our minimal Logger interface
type logrusAdapter struct {
	logger *logrus.Logger
	file   *os.File
}

// New creates a Logger that wraps an already configured logrus.Logger
func New(logger *logrus.Logger) Logger {
	return &logrusAdapter{logger: logger}
}

func (a *logrusAdapter) Debug(msg string, keyValuePairs ...any) {
	a.logger.WithFields(keyValuePairsToFields(keyValuePairs)).Debug(msg)
}

func (a *logrusAdapter) Info(msg string, keyValuePairs ...any) {
	a.logger.WithFields(keyValuePairsToFields(keyValuePairs)).Info(msg)
}

func (a *logrusAdapter) Warn(msg string, keyValuePairs ...any) {
	a.logger.WithFields(keyValuePairsToFields(keyValuePairs)).Warn(msg)
}

func (a *logrusAdapter) Error(msg string, keyValuePairs ...any) {
	a.logger.WithFields(keyValuePairsToFields(keyValuePairs)).Error(msg)
}

func (a *logrusAdapter) Flush() error {
	if a.file != nil {
		return a.file.Sync()
	}
	return nil
}

// keyValuePairsToFields converts key-value pairs to logrus.Fields, skipping
// entries whose key is not a string
func keyValuePairsToFields(keyValuePairs []any) logrus.Fields {
	fields := make(logrus.Fields, len(keyValuePairs)/2)
	for i := 0; i < len(keyValuePairs)-1; i += 2 {
		key, ok := keyValuePairs[i].(string)
		if !ok {
			continue
		}
		fields[key] = keyValuePairs[i+1]
	}
	return fields
}

// fileHook mirrors every entry into a log file as JSON, which is easier to
// parse than the console format
type fileHook struct {
	file      *os.File
	formatter logrus.Formatter
}

func (h *fileHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *fileHook) Fire(entry *logrus.Entry) error {
	line, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}
	_, err = h.file.Write(line)
	return err
}

// CreateDefaultLogger creates a logger with sensible defaults: info level and
// above, plain text on stderr
func CreateDefaultLogger() (Logger, error) {
	return CreateLoggerWithOptions(false, "")
}

// CreateLoggerWithOptions creates a logger with debug and file logging
// options. Console output goes to stderr in plain text; the optional log file
// receives the same entries as JSON.
func CreateLoggerWithOptions(enableDebug bool, logFile string) (Logger, error) {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
		DisableColors:   true,
	})

	l.SetLevel(logrus.InfoLevel)
	if enableDebug {
		l.SetLevel(logrus.DebugLevel)
	}

	adapter := &logrusAdapter{logger: l}

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		l.AddHook(&fileHook{file: f, formatter: &logrus.JSONFormatter{}})
		adapter.file = f
	}

	return adapter, nil
}

// NewNop returns a Logger that discards everything. Intended for tests.
func NewNop() Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return &logrusAdapter{logger: l}
}
