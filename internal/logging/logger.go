package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"sheetscribe/internal/config"
)

// NewLogger creates and configures a new logrus.Logger based on the provided settings.
// The TUI owns the terminal, so output goes to the log file only; io.Discard is
// used when no file is configured.
func NewLogger(cfg *config.LogSettings) (*logrus.Logger, error) {
	logger := logrus.New()

	logLevel := logrus.InfoLevel
	if cfg.Level != "" {
		if lv, err := logrus.ParseLevel(strings.ToLower(cfg.Level)); err == nil {
			logLevel = lv
		}
	}
	logger.SetLevel(logLevel)

	var output io.Writer = io.Discard
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		output = f
	}
	logger.SetOutput(output)

	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
		DisableColors: true,
	})

	return logger, nil
}
