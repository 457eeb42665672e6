// Package observability provides the structured logging used across the
// pipeline orchestrator, curation store, and graph writer. It is grounded
// directly on common/logger.go and common/logging.go's ContextLogger /
// OutputSplitter pair, generalized away from EVE's service/version
// fields to Minerva's run_uuid/journal_uuid/stage fields.
package observability

import (
	"bytes"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// OutputSplitter routes error-level log lines to stderr and everything
// else to stdout, matching common/logging.go's container-friendly
// stream separation.
type OutputSplitter struct{}

func (OutputSplitter) Write(p []byte) (int, error) {
	if bytes.Contains(p, []byte("level=error")) {
		return os.Stderr.Write(p)
	}
	return os.Stdout.Write(p)
}

// NewLogger builds a logrus.Logger configured for the given level/format
// ("json" or "text"), with the output splitter installed.
func NewLogger(level, format string) *logrus.Logger {
	logger := logrus.New()

	switch level {
	case "debug":
		logger.SetLevel(logrus.DebugLevel)
	case "warn":
		logger.SetLevel(logrus.WarnLevel)
	case "error":
		logger.SetLevel(logrus.ErrorLevel)
	default:
		logger.SetLevel(logrus.InfoLevel)
	}

	if format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{TimestampFormat: time.RFC3339, FullTimestamp: true})
	}

	logger.SetOutput(OutputSplitter{})
	return logger
}

// ContextLogger carries a fixed set of fields (run_uuid, journal_uuid,
// stage, …) through a run's lifetime, the same pattern
// common/logger.go's ContextLogger uses for request_id/service.
type ContextLogger struct {
	logger *logrus.Logger
	fields logrus.Fields
}

// NewContextLogger wraps logger with an initial field set.
func NewContextLogger(logger *logrus.Logger, fields map[string]interface{}) *ContextLogger {
	base := make(logrus.Fields, len(fields))
	for k, v := range fields {
		base[k] = v
	}
	return &ContextLogger{logger: logger, fields: base}
}

// WithField returns a copy carrying one additional field.
func (cl *ContextLogger) WithField(key string, value interface{}) *ContextLogger {
	next := make(logrus.Fields, len(cl.fields)+1)
	for k, v := range cl.fields {
		next[k] = v
	}
	next[key] = value
	return &ContextLogger{logger: cl.logger, fields: next}
}

// WithError returns a copy carrying the error's message.
func (cl *ContextLogger) WithError(err error) *ContextLogger {
	return cl.WithField("error", err.Error())
}

func (cl *ContextLogger) Debug(msg string) { cl.logger.WithFields(cl.fields).Debug(msg) }
func (cl *ContextLogger) Info(msg string)  { cl.logger.WithFields(cl.fields).Info(msg) }
func (cl *ContextLogger) Warn(msg string)  { cl.logger.WithFields(cl.fields).Warn(msg) }
func (cl *ContextLogger) Error(msg string) { cl.logger.WithFields(cl.fields).Error(msg) }

// RunLogger pre-fields a logger for a single pipeline run, used at every
// stage transition and activity call.
func RunLogger(base *logrus.Logger, runUUID, journalUUID string) *ContextLogger {
	return NewContextLogger(base, map[string]interface{}{
		"run_uuid":     runUUID,
		"journal_uuid": journalUUID,
	})
}
