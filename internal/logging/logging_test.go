package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestLevelFromEnv(t *testing.T) {
	cases := []struct {
		in      string
		want    zapcore.Level
		wantErr bool
	}{
		{in: "", want: zapcore.InfoLevel},
		{in: "debug", want: zapcore.DebugLevel},
		{in: " WARN ", want: zapcore.WarnLevel},
		{in: "error", want: zapcore.ErrorLevel},
		{in: "loud", want: zapcore.InfoLevel, wantErr: true},
	}
	for _, tc := range cases {
		t.Setenv("JOBDESK_LOG_LEVEL", tc.in)
		got, err := LevelFromEnv()
		if (err != nil) != tc.wantErr {
			t.Fatalf("in=%q err=%v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("in=%q level=%v", tc.in, got)
		}
	}
}

func TestNewFromEnv(t *testing.T) {
	t.Setenv("JOBDESK_LOG_LEVEL", "debug")
	logger, err := NewFromEnv()
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if !logger.Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("expected debug enabled")
	}

	t.Setenv("JOBDESK_LOG_LEVEL", "nope")
	if _, err := NewFromEnv(); err == nil {
		t.Fatal("expected error")
	}
}
