package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(nil)
	defer SetLevel(LevelNone)

	SetLevel(LevelWarning)
	Debug("hidden %d", 1)
	Info("hidden %d", 2)
	Warning("shown %d", 3)
	Error("shown %d", 4)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines but got %d: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "[warn ] shown 3") {
		t.Errorf("Unexpected warning line: %s", lines[0])
	}
	if !strings.Contains(lines[1], "[error] shown 4") {
		t.Errorf("Unexpected error line: %s", lines[1])
	}
}

func TestLevelNoneIsSilent(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(nil)

	SetLevel(LevelNone)
	Error("nothing")
	if buf.Len() != 0 {
		t.Errorf("Expected no output, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name  string
		level Level
		ok    bool
	}{
		{"debug", LevelDebug, true},
		{" INFO ", LevelInfo, true},
		{"warn", LevelWarning, true},
		{"warning", LevelWarning, true},
		{"error", LevelError, true},
		{"off", LevelNone, true},
		{"verbose", LevelNone, false},
	}
	for _, test := range tests {
		level, err := ParseLevel(test.name)
		if (err == nil) != test.ok {
			t.Errorf("ParseLevel(%q) error = %v", test.name, err)
			continue
		}
		if level != test.level {
			t.Errorf("ParseLevel(%q) = %d, want %d", test.name, level, test.level)
		}
	}
}
