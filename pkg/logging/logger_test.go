package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	line, err := buf.ReadString('\n')
	if err != nil {
		t.Fatalf("failed to read log line: %v", err)
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v\n%s", err, line)
	}
	return entry
}

func TestJSONLogger_Basic(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	logger.Info("trace complete", Int("pipes", 12), Direction("upstream"))

	entry := decodeLine(t, &buf)
	if entry["level"] != "INFO" || entry["msg"] != "trace complete" {
		t.Errorf("unexpected entry: %v", entry)
	}
	fields := entry["fields"].(map[string]any)
	if fields["pipes"] != float64(12) || fields["direction"] != "upstream" {
		t.Errorf("unexpected fields: %v", fields)
	}
}

func TestJSONLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, WarnLevel)

	logger.Debug("hidden")
	logger.Info("hidden")
	logger.Warn("shown")

	if got := strings.Count(buf.String(), "\n"); got != 1 {
		t.Errorf("expected 1 line, got %d:\n%s", got, buf.String())
	}

	logger.SetLevel(DebugLevel)
	logger.Debug("now shown")
	if got := strings.Count(buf.String(), "\n"); got != 2 {
		t.Errorf("expected 2 lines after SetLevel, got %d", got)
	}
}

func TestJSONLogger_With(t *testing.T) {
	var buf bytes.Buffer
	base := NewJSONLogger(&buf, InfoLevel)
	child := base.With(Component("tracer"), TraceID("t-1"))

	child.Info("seed expanded", PipeID("A"))

	entry := decodeLine(t, &buf)
	fields := entry["fields"].(map[string]any)
	if fields["component"] != "tracer" || fields["trace_id"] != "t-1" || fields["pipe_id"] != "A" {
		t.Errorf("child fields missing: %v", fields)
	}

	// Parent is unaffected by the child's pre-set fields
	base.Info("bare")
	entry = decodeLine(t, &buf)
	if _, ok := entry["fields"]; ok {
		t.Errorf("parent gained fields: %v", entry)
	}
}

func TestJSONLogger_ErrorField(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	logger.Error("load failed", Error(errors.New("boom")))

	entry := decodeLine(t, &buf)
	fields := entry["fields"].(map[string]any)
	if fields["error"] != "boom" {
		t.Errorf("unexpected error field: %v", fields)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   DebugLevel,
		"INFO":    InfoLevel,
		"warning": WarnLevel,
		"ERROR":   ErrorLevel,
		"bogus":   InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNopLogger(t *testing.T) {
	logger := NewNopLogger()
	logger.Info("ignored", String("k", "v"))
	if child := logger.With(Component("x")); child == nil {
		t.Error("With returned nil")
	}
}
