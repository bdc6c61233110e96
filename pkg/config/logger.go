package config

import (
	"os"

	"github.com/sirupsen/logrus"
)

var logger = logrus.New()

// InitLogger configures the shared logger: JSON outside development, text otherwise
func InitLogger(cfg *Config) *logrus.Logger {
	logger.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.IsProduction() {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}

// LogWithContext returns an entry tagged with the service and operation
func LogWithContext(service, operation string) *logrus.Entry {
	return logger.WithFields(logrus.Fields{
		"service":   service,
		"operation": operation,
	})
}
