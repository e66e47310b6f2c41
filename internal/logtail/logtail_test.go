package logtail

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestRead(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "blogen.log")

	var content strings.Builder
	var expectedAll []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		if i == 5 {
			content.WriteString("\n")
		}
		expectedAll = append(expectedAll, line)
	}
	if err := os.WriteFile(logPath, []byte(content.String()), 0o644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{name: "zero", maxLines: 0, expected: nil},
		{name: "negative", maxLines: -1, expected: nil},
		{name: "partial", maxLines: 5, expected: expectedAll[5:]},
		{name: "exact", maxLines: 10, expected: expectedAll},
		{name: "more than exists", maxLines: 20, expected: expectedAll},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, tt.maxLines)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if len(got) != len(tt.expected) {
				t.Fatalf("Read() returned %d entries, want %d", len(got), len(tt.expected))
			}
			for i := range got {
				if got[i].Raw != tt.expected[i] {
					t.Fatalf("Read()[%d].Raw = %q, want %q", i, got[i].Raw, tt.expected[i])
				}
			}
		})
	}
}

func TestReadMissingFile(t *testing.T) {
	got, err := Read(filepath.Join(t.TempDir(), "absent.log"), 10)
	if err != nil || got != nil {
		t.Fatalf("Read(missing) = %v, %v; want nil, nil", got, err)
	}
	got, err = Read("", 10)
	if err != nil || got != nil {
		t.Fatalf("Read(\"\") = %v, %v; want nil, nil", got, err)
	}
}

func TestParse(t *testing.T) {
	wantTime := time.Date(2025, 10, 8, 21, 1, 5, 123e6, time.UTC)

	tests := []struct {
		name      string
		line      string
		level     string
		component string
		message   string
		timed     bool
	}{
		{
			name:      "json",
			line:      `{"level":"warn","ts":"2025-10-08T21:01:05.123Z","caller":"actions/actions.go:391","msg":"request failed","component":"actions","op":"list posts"}`,
			level:     "WARN",
			component: "actions",
			message:   "request failed",
			timed:     true,
		},
		{
			name:      "console with caller",
			line:      "2025-10-08T21:01:05.123Z\tINFO\tsession/session.go:148\tlogged in\t{\"component\": \"session\", \"user\": \"alice\"}",
			level:     "INFO",
			component: "session",
			message:   "logged in",
			timed:     true,
		},
		{
			name:    "console without fields",
			line:    "2025-10-08T21:01:05.123Z\tDEBUG\tapp/refresher.go:60\tpage refresh recovered",
			level:   "DEBUG",
			message: "page refresh recovered",
			timed:   true,
		},
		{
			name: "stack trace",
			line: "github.com/RachelRYuan/Blogen/internal/actions.(*Actions).fail",
		},
		{
			name: "broken json",
			line: `{"level":`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Parse(tt.line)
			if e.Raw != tt.line {
				t.Fatalf("Raw = %q, want the input line", e.Raw)
			}
			if e.Level != tt.level || e.Component != tt.component || e.Message != tt.message {
				t.Fatalf("Parse() = %+v, want level %q component %q message %q", e, tt.level, tt.component, tt.message)
			}
			if tt.timed && !e.Time.Equal(wantTime) {
				t.Fatalf("Time = %v, want %v", e.Time, wantTime)
			}
			if !tt.timed && !e.Time.IsZero() {
				t.Fatalf("Time = %v, want zero", e.Time)
			}
		})
	}
}
