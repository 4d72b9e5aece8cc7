package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/natefinch/lumberjack"
	"github.com/sirupsen/logrus"

	"github.com/zsiec/rasterize/internal/config"
	"github.com/zsiec/rasterize/pkg/version"
)

// Fields is a convenience alias so callers do not import logrus directly.
type Fields = logrus.Fields

// New builds the service logger from configuration. Every entry carries the
// service name and build version so log aggregation can tell deployments
// apart.
func New(cfg *config.LoggingConfig) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	sink, err := openSink(cfg)
	if err != nil {
		return nil, err
	}

	log := logrus.New()
	log.SetLevel(level)
	log.SetFormatter(newFormatter(cfg.Format))
	log.SetOutput(sink)
	log.AddHook(buildStamp{
		service: "rasterize",
		version: version.Get().Short(),
	})

	return log, nil
}

// buildStamp injects the service identity into every entry.
type buildStamp struct {
	service string
	version string
}

func (h buildStamp) Levels() []logrus.Level { return logrus.AllLevels }

func (h buildStamp) Fire(e *logrus.Entry) error {
	if _, ok := e.Data["service"]; !ok {
		e.Data["service"] = h.service
	}
	if _, ok := e.Data["version"]; !ok {
		e.Data["version"] = h.version
	}
	return nil
}

func newFormatter(format string) logrus.Formatter {
	if format == "json" {
		return &logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		}
	}
	return &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	}
}

// openSink resolves the configured output. Anything other than the stdio
// names is treated as a file path with size-based rotation.
func openSink(cfg *config.LoggingConfig) (io.Writer, error) {
	switch cfg.Output {
	case "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Output), 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	return &lumberjack.Logger{
		Filename:   cfg.Output,
		MaxSize:    cfg.MaxSize, // megabytes
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge, // days
		Compress:   true,
	}, nil
}

// ForOperation returns the request-scoped logger tagged with the conversion
// operation being served ("convert" or "probe").
func ForOperation(entry *logrus.Entry, operation string) *logrus.Entry {
	return entry.WithField("operation", operation)
}

// WithContainer tags an entry with the output container a conversion
// produced.
func WithContainer(entry *logrus.Entry, container string, frames int) *logrus.Entry {
	return entry.WithFields(Fields{
		"container": container,
		"frames":    frames,
	})
}
