package logtail

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Entry is one parsed line of the client log.
type Entry struct {
	Time      time.Time
	Level     string
	Component string
	Message   string
	Raw       string
}

// Read returns at most maxLines entries from the end of the log at path,
// oldest first. A missing file yields no entries.
func Read(path string, maxLines int) ([]Entry, error) {
	lines, err := tail(path, maxLines)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		entries = append(entries, Parse(line))
	}
	return entries, nil
}

func tail(path string, maxLines int) ([]string, error) {
	if maxLines <= 0 || strings.TrimSpace(path) == "" {
		return nil, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	ring := make([]string, maxLines)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	count, idx := 0, 0
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		ring[idx] = line
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// consoleTimeLayout matches zap's development encoder.
const consoleTimeLayout = "2006-01-02T15:04:05.000Z0700"

// Parse splits a zap log line. JSON lines come from the production encoder
// and tab separated lines from the development encoder. Anything else,
// such as a stack trace continuation, is returned with only Raw set.
func Parse(line string) Entry {
	e := Entry{Raw: line}
	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, "{") {
		var rec map[string]any
		if json.Unmarshal([]byte(trimmed), &rec) != nil {
			return e
		}
		e.Level = strings.ToUpper(stringField(rec, "level"))
		e.Message = stringField(rec, "msg")
		e.Component = stringField(rec, "component")
		if ts := stringField(rec, "ts"); ts != "" {
			e.Time, _ = time.Parse(consoleTimeLayout, ts)
		}
		return e
	}

	parts := strings.Split(line, "\t")
	if len(parts) < 3 {
		return e
	}
	ts, err := time.Parse(consoleTimeLayout, parts[0])
	if err != nil {
		return e
	}
	e.Time = ts
	e.Level = strings.ToUpper(parts[1])
	rest := parts[2:]
	// The caller column is present when AddCaller is on.
	if len(rest) > 1 && strings.Contains(rest[0], ".go:") {
		rest = rest[1:]
	}
	e.Message = rest[0]
	if len(rest) > 1 {
		var fields map[string]any
		if json.Unmarshal([]byte(rest[1]), &fields) == nil {
			e.Component = stringField(fields, "component")
		}
	}
	return e
}

func stringField(rec map[string]any, key string) string {
	if v, ok := rec[key].(string); ok {
		return v
	}
	return ""
}
