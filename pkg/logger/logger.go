// Package logger builds the service's logrus logger and carries request-scoped
// entries through context.Context.
package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// Config selects level and output format.
type Config struct {
	Level  string
	Format string // "json" or "text"
	Output io.Writer
}

type ctxKeyLog struct{}

// New creates a logger. JSON output uses the field names log collectors
// expect: timestamp, severity, message.
func New(cfg Config) *logrus.Logger {
	log := logrus.New()

	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	log.Out = out

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.Level = level

	if cfg.Format == "text" {
		log.Formatter = &logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		}
		return log
	}

	log.Formatter = &logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "severity",
			logrus.FieldKeyMsg:   "message",
		},
		TimestampFormat: time.RFC3339Nano,
	}
	return log
}

// WithContext returns a copy of ctx carrying entry.
func WithContext(ctx context.Context, entry *logrus.Entry) context.Context {
	return context.WithValue(ctx, ctxKeyLog{}, entry)
}

// FromContext returns the entry stored by WithContext, or one on the
// standard logger.
func FromContext(ctx context.Context) *logrus.Entry {
	if ctx != nil {
		if entry, ok := ctx.Value(ctxKeyLog{}).(*logrus.Entry); ok {
			return entry
		}
	}
	return logrus.NewEntry(logrus.StandardLogger())
}
