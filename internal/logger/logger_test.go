package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelWarn, "")

	l.Debug("debug msg")
	l.Info("info msg")
	l.Warn("warn msg")
	l.Error("error msg")

	out := buf.String()
	if strings.Contains(out, "debug msg") || strings.Contains(out, "info msg") {
		t.Errorf("below-threshold messages were logged: %s", out)
	}
	if !strings.Contains(out, "warn msg") || !strings.Contains(out, "error msg") {
		t.Errorf("expected warn and error messages, got: %s", out)
	}
}

func TestPrefix(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelDebug, "AGENT")

	l.Info("hello")

	if !strings.Contains(buf.String(), "[AGENT] hello") {
		t.Errorf("expected prefixed output, got: %s", buf.String())
	}
}

func TestLevelString(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.expected {
			t.Errorf("Level(%d).String() = %s, want %s", tt.level, got, tt.expected)
		}
	}
}

func TestFormatting(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelDebug, "")

	l.Info("count=%d name=%s", 3, "repo")

	if !strings.Contains(buf.String(), "count=3 name=repo") {
		t.Errorf("expected formatted message, got: %s", buf.String())
	}
}
