package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestLogLevelString(t *testing.T) {
	cases := map[LogLevel]string{
		LogLevelTrace: "TRACE",
		LogLevelDebug: "DEBUG",
		LogLevelInfo:  "INFO",
		LogLevelWarn:  "WARN",
		LogLevelError: "ERROR",
		LogLevelFatal: "FATAL",
		LogLevel(99):  "UNKNOWN",
	}
	for level, want := range cases {
		if got := level.String(); got != want {
			t.Errorf("LogLevel(%d).String() = %q, want %q", level, got, want)
		}
	}
}

func TestConsoleLoggerOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithOptions(&buf, LogLevelInfo)

	logger.Info("client registered", Field{Key: "name", Value: "default"})

	out := buf.String()
	if !strings.Contains(out, "INFO") || !strings.Contains(out, "client registered") {
		t.Fatalf("unexpected output: %q", out)
	}
	if !strings.Contains(out, "name=default") {
		t.Fatalf("fields missing from output: %q", out)
	}
}

func TestMinimumLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithOptions(&buf, LogLevelWarn)

	logger.Info("should be dropped")
	logger.Warn("should pass")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Fatalf("info log should have been filtered: %q", out)
	}
	if !strings.Contains(out, "should pass") {
		t.Fatalf("warn log missing: %q", out)
	}
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithOptions(&buf, LogLevelInfo).
		WithFields(Field{Key: "component", Value: "redis"})

	logger.Info("connected")

	if !strings.Contains(buf.String(), "component=redis") {
		t.Fatalf("inherited fields missing: %q", buf.String())
	}
}

func TestNopLogger(t *testing.T) {
	logger := NewNopLogger()
	// 不 panic 即可
	logger.Info("ignored")
	logger.WithFields(Field{Key: "k", Value: "v"}).Error("ignored")
}
