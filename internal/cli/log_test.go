package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevelFilter(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		want    bool
	}{
		{"info passes at info", log.InfoLevel, func(l *log.Logger) { l.Info("fetching campaign") }, true},
		{"debug filtered at info", log.InfoLevel, func(l *log.Logger) { l.Debug("cache key") }, false},
		{"debug passes at debug", log.DebugLevel, func(l *log.Logger) { l.Debug("cache key") }, true},
		{"warn passes at info", log.InfoLevel, func(l *log.Logger) { l.Warn("product missing") }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.want {
				t.Errorf("wrote output = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProgressDoneReportsElapsed(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)

	prog := newProgress(logger)
	time.Sleep(5 * time.Millisecond)
	prog.done("Exported 3 pages")

	out := buf.String()
	if !strings.Contains(out, "Exported 3 pages") {
		t.Errorf("output %q missing the message", out)
	}
	if !strings.Contains(out, "ms") && !strings.Contains(out, "s)") {
		t.Errorf("output %q missing an elapsed duration", out)
	}
}

func TestLoggerContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)

	ctx := withLogger(context.Background(), logger)
	got := loggerFromContext(ctx)
	if got != logger {
		t.Fatal("loggerFromContext returned a different logger")
	}

	got.Info("round trip")
	if buf.Len() == 0 {
		t.Error("retrieved logger did not write to the original buffer")
	}
}

func TestLoggerFromContextFallsBack(t *testing.T) {
	if loggerFromContext(context.Background()) == nil {
		t.Error("want the default logger when none is attached")
	}
}
