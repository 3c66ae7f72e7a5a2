package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func decodeLines(t *testing.T, data string) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(data), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("invalid JSON line %q: %v", line, err)
		}
		out = append(out, entry)
	}
	return out
}

func TestNewLogger(t *testing.T) {
	t.Run("creates log file at path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "debug.json")

		logger, err := NewLogger(path, LevelDebug, DefaultRotationConfig())
		if err != nil {
			t.Fatalf("NewLogger failed: %v", err)
		}
		logger.Info("hello")
		if err := logger.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}

		content, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read log file: %v", err)
		}
		entries := decodeLines(t, string(content))
		if len(entries) != 1 || entries[0]["msg"] != "hello" {
			t.Errorf("unexpected entries: %v", entries)
		}
	})

	t.Run("writes to stderr when path is empty", func(t *testing.T) {
		logger, err := NewLogger("", LevelInfo, DefaultRotationConfig())
		if err != nil {
			t.Fatalf("NewLogger failed: %v", err)
		}
		if logger.closer != nil {
			t.Error("expected no closer when path is empty")
		}
		if err := logger.Close(); err != nil {
			t.Errorf("Close() = %v", err)
		}
	})
}

func TestLogLevelFiltering(t *testing.T) {
	tests := []struct {
		level string
		want  int
	}{
		{LevelDebug, 4},
		{LevelInfo, 3},
		{LevelWarn, 2},
		{LevelError, 1},
		{"bogus", 3},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewWriterLogger(&buf, tt.level)

			logger.Debug("d")
			logger.Info("i")
			logger.Warn("w")
			logger.Error("e")

			if got := len(decodeLines(t, buf.String())); got != tt.want {
				t.Errorf("got %d lines, want %d", got, tt.want)
			}
		})
	}
}

func TestChildLoggers(t *testing.T) {
	var buf bytes.Buffer
	root := NewWriterLogger(&buf, LevelDebug)

	root.WithRun("seed-7").WithComponent("sim").WithWorker(3).Info("assigned", "cycle", 12)

	entries := decodeLines(t, buf.String())
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e["run"] != "seed-7" {
		t.Errorf("run = %v", e["run"])
	}
	if e["component"] != "sim" {
		t.Errorf("component = %v", e["component"])
	}
	if e["worker_id"] != float64(3) {
		t.Errorf("worker_id = %v", e["worker_id"])
	}
	if e["cycle"] != float64(12) {
		t.Errorf("cycle = %v", e["cycle"])
	}
}

func TestChildDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	root := NewWriterLogger(&buf, LevelDebug)
	_ = root.WithComponent("sim")

	root.Info("plain")

	entries := decodeLines(t, buf.String())
	if _, ok := entries[0]["component"]; ok {
		t.Error("parent logger picked up child attribute")
	}
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(&buf, LevelDebug)

	if logger.With() != logger {
		t.Error("With() with no args should return the same logger")
	}

	logger.With("action", "scale_up", 42, "ignored", "delta", 1).Info("scaled")

	e := decodeLines(t, buf.String())[0]
	if e["action"] != "scale_up" {
		t.Errorf("action = %v", e["action"])
	}
	if e["delta"] != float64(1) {
		t.Errorf("delta = %v", e["delta"])
	}
}

func TestEnabled(t *testing.T) {
	logger := NewWriterLogger(&bytes.Buffer{}, LevelWarn)
	if logger.Enabled(LevelInfo) {
		t.Error("INFO should be disabled at WARN")
	}
	if !logger.Enabled(LevelError) {
		t.Error("ERROR should be enabled at WARN")
	}
}

func TestNopLogger(t *testing.T) {
	logger := NopLogger()
	logger.Error("discarded")
	if err := logger.Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]string{
		"debug": LevelDebug,
		"Info":  LevelInfo,
		"WARN":  LevelWarn,
		"error": LevelError,
		"":      LevelInfo,
		"trace": LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValidLevels(t *testing.T) {
	if got := ValidLevels(); len(got) != 4 {
		t.Errorf("ValidLevels() = %v", got)
	}
}

func TestCloseIsShared(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.json")
	logger, err := NewLogger(path, LevelDebug, DefaultRotationConfig())
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	child := logger.WithComponent("sim")

	if err := child.Close(); err != nil {
		t.Fatalf("child Close failed: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("second Close should be a no-op, got %v", err)
	}
}

func TestConcurrentWrites(t *testing.T) {
	var mu sync.Mutex
	var buf bytes.Buffer
	logger := NewWriterLogger(&lockedWriter{mu: &mu, w: &buf}, LevelDebug)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			l := logger.WithWorker(id)
			for j := 0; j < 20; j++ {
				l.Debug("tick", "n", j)
			}
		}(i + 1)
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if got := len(decodeLines(t, buf.String())); got != 200 {
		t.Errorf("got %d lines, want 200", got)
	}
}

type lockedWriter struct {
	mu *sync.Mutex
	w  *bytes.Buffer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
