// Package logging carries a logrus logger on the context.
package logging

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type loggerContextKey string
type outputLoggerContextKey string

const loggerContextKeyVal = loggerContextKey("logrus.FieldLogger")
const outputLoggerContextKeyVal = outputLoggerContextKey("logrus.FieldLogger")

// Logger returns the logger for the current context
func Logger(ctx context.Context) logrus.FieldLogger {
	val := ctx.Value(loggerContextKeyVal)
	if val != nil {
		if logger, ok := val.(logrus.FieldLogger); ok {
			return logger
		}
	}
	return logrus.StandardLogger()
}

// OutputLogger returns the logger that echoes script output, if one is set
func OutputLogger(ctx context.Context) (logrus.FieldLogger, bool) {
	val := ctx.Value(outputLoggerContextKeyVal)
	if val != nil {
		if logger, ok := val.(logrus.FieldLogger); ok {
			return logger, true
		}
	}
	return nil, false
}

// WithLogger adds a value to the context for the logger
func WithLogger(ctx context.Context, logger logrus.FieldLogger) context.Context {
	return context.WithValue(ctx, loggerContextKeyVal, logger)
}

// WithOutputLogger sets the logger that receives every line a script prints
func WithOutputLogger(ctx context.Context, logger logrus.FieldLogger) context.Context {
	return context.WithValue(ctx, outputLoggerContextKeyVal, logger)
}

// New builds a text logger writing to out at the named level ("info", "debug", ...).
func New(out io.Writer, level string) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if level == "" {
		level = "warn"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid log level %q", level)
	}
	logger.SetLevel(lvl)
	return logger, nil
}
