package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/nhle/fintrack/internal/model"
)

// Logger is the process-wide logger. It writes to stderr until Init is
// called.
var Logger = logrus.New()

// Init points Logger at a rotating log file. The terminal UI owns
// stdout, so nothing is written to the console after Init.
func Init(cfg model.LogConfig) error {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("parsing log level %q: %w", cfg.Level, err)
	}

	if cfg.File == "" {
		Logger.SetLevel(level)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o700); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}

	Logger.SetOutput(&lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	})
	Logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		DisableColors:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	Logger.SetLevel(level)

	return nil
}

// For returns a logger tagged with the given component name.
func For(component string) logrus.FieldLogger {
	return Logger.WithField("component", component)
}
