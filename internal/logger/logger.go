// Package logger builds the logrus logger shared by the combat packages.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Config controls level and output format
type Config struct {
	Level  string
	Format string
	Output io.Writer
}

// New creates a configured logger. Unknown levels fall back to info and any
// format other than "json" uses the text formatter.
func New(cfg *Config) *logrus.Logger {
	log := logrus.New()
	if cfg == nil {
		cfg = &Config{}
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if strings.ToLower(cfg.Format) == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	if cfg.Output != nil {
		log.SetOutput(cfg.Output)
	} else {
		log.SetOutput(os.Stdout)
	}

	return log
}

// FromEnv reads LOG_LEVEL and LOG_FORMAT
func FromEnv() *logrus.Logger {
	return New(&Config{
		Level:  os.Getenv("LOG_LEVEL"),
		Format: os.Getenv("LOG_FORMAT"),
	})
}

// Discard returns a logger that drops everything; components use it when no
// logger is configured.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// OrDiscard returns l, or a discarding logger when l is nil
func OrDiscard(l logrus.FieldLogger) logrus.FieldLogger {
	if l == nil {
		return Discard()
	}
	return l
}
