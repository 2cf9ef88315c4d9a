package logging

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LevelFromEnv reads JOBDESK_LOG_LEVEL (debug|info|warn|error); empty means
// info.
func LevelFromEnv() (zapcore.Level, error) {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv("JOBDESK_LOG_LEVEL")))
	if raw == "" {
		return zapcore.InfoLevel, nil
	}
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return zapcore.InfoLevel, fmt.Errorf("logging: invalid JOBDESK_LOG_LEVEL %q", raw)
	}
	return level, nil
}

// NewFromEnv builds a production JSON logger writing to stderr.
func NewFromEnv() (*zap.Logger, error) {
	level, err := LevelFromEnv()
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}
