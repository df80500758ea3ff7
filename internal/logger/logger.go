// internal/logger/logger.go
package logger

import (
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	base     *logrus.Logger
	initOnce sync.Once
)

// NewLogger returns the process-wide logrus logger.
// Packages keep it in a package-level variable; Configure adjusts it once config is loaded.
func NewLogger() *logrus.Logger {
	initOnce.Do(func() {
		base = logrus.New()
		base.SetOutput(os.Stdout)
		base.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
		base.SetLevel(logrus.InfoLevel)
	})
	return base
}

// Configure applies level ("debug", "info", "warn", "error") and format ("text" or "json").
// Unknown levels keep the current level.
func Configure(level, format string) {
	log := NewLogger()

	if lvl, err := logrus.ParseLevel(strings.TrimSpace(level)); err == nil {
		log.SetLevel(lvl)
	} else if level != "" {
		log.Warnf("Unknown log level '%s', keeping '%s'", level, log.GetLevel())
	}

	if strings.EqualFold(strings.TrimSpace(format), "json") {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})
	}
}
