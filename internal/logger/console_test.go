package logger

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsoleLoggerLevelFiltering(t *testing.T) {
	tests := []struct {
		name      string
		logLevel  string
		logFunc   func(*ConsoleLogger)
		wantMatch string
		wantEmpty bool
	}{
		{
			name:      "info passes at info level",
			logLevel:  "info",
			logFunc:   func(cl *ConsoleLogger) { cl.LogInfo("capturing mobile") },
			wantMatch: "[INFO] capturing mobile",
		},
		{
			name:      "debug filtered at info level",
			logLevel:  "info",
			logFunc:   func(cl *ConsoleLogger) { cl.LogDebug("raw response length 1024") },
			wantEmpty: true,
		},
		{
			name:      "warn passes at info level",
			logLevel:  "info",
			logFunc:   func(cl *ConsoleLogger) { cl.LogWarn("navigation timed out") },
			wantMatch: "[WARN] navigation timed out",
		},
		{
			name:      "trace passes at trace level",
			logLevel:  "trace",
			logFunc:   func(cl *ConsoleLogger) { cl.LogTrace("stream event tool-call-started") },
			wantMatch: "[TRACE] stream event tool-call-started",
		},
		{
			name:      "info filtered at error level",
			logLevel:  "error",
			logFunc:   func(cl *ConsoleLogger) { cl.LogInfo("run complete") },
			wantEmpty: true,
		},
		{
			name:      "invalid level defaults to info",
			logLevel:  "bogus",
			logFunc:   func(cl *ConsoleLogger) { cl.LogDebug("should be hidden") },
			wantEmpty: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			cl := NewConsoleLogger(&buf, tt.logLevel)
			tt.logFunc(cl)

			out := buf.String()
			if tt.wantEmpty {
				assert.Empty(t, out)
				return
			}
			assert.Contains(t, out, tt.wantMatch)
			// Timestamp prefix: "[HH:MM:SS] "
			assert.Regexp(t, `^\[\d{2}:\d{2}:\d{2}\] `, out)
		})
	}
}

func TestConsoleLoggerNilWriter(t *testing.T) {
	cl := NewConsoleLogger(nil, "info")
	// Must not panic.
	cl.LogInfo("discarded")
	cl.LogError("discarded")
}

func TestConsoleLoggerConcurrentWrites(t *testing.T) {
	var buf bytes.Buffer
	cl := NewConsoleLogger(&buf, "info")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cl.LogInfo("line")
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 20)
	for _, line := range lines {
		assert.Contains(t, line, "[INFO] line")
	}
}

func TestNoOpLogger(t *testing.T) {
	n := NewNoOpLogger()
	n.LogTrace("a")
	n.LogDebug("b")
	n.LogInfo("c")
	n.LogWarn("d")
	n.LogError("e")
}
