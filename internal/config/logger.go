package config

import (
    "os"

    "github.com/sirupsen/logrus"
)

// NewLogger builds the process logger.  Production logs are JSON for the
// collector; everything else uses the text formatter.
func NewLogger(cfg Config) *logrus.Logger {
    log := logrus.New()
    log.SetOutput(os.Stdout)
    if cfg.IsProduction() {
        log.SetFormatter(&logrus.JSONFormatter{})
    } else {
        log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
    }
    level, err := logrus.ParseLevel(cfg.LogLevel)
    if err != nil {
        level = logrus.InfoLevel
    }
    log.SetLevel(level)
    return log
}
