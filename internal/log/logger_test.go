package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid JSON log line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{" warn ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNew_JSONIncludesComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Format: "json", Component: ComponentStorage, Output: &buf})

	logger.Debug("hidden")
	logger.Info("opened", FieldCount, 3)

	lines := decodeLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1 (debug must be filtered)", len(lines))
	}
	if lines[0]["msg"] != "opened" {
		t.Errorf("msg = %v", lines[0]["msg"])
	}
	if lines[0][FieldComponent] != ComponentStorage {
		t.Errorf("component = %v, want %s", lines[0][FieldComponent], ComponentStorage)
	}
	if lines[0][FieldCount] != float64(3) {
		t.Errorf("count = %v, want 3", lines[0][FieldCount])
	}
}

func TestWithComponentKeepsAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Format: "json", Component: ComponentApp, Output: &buf}).
		With(FieldRequestID, "req-1").
		WithComponent(ComponentHTTP)

	logger.Warn("slow")

	lines := decodeLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	if lines[0][FieldRequestID] != "req-1" {
		t.Errorf("request_id = %v", lines[0][FieldRequestID])
	}
	if lines[0][FieldComponent] != ComponentHTTP {
		t.Errorf("component = %v", lines[0][FieldComponent])
	}
	if logger.Component() != ComponentHTTP {
		t.Errorf("Component() = %q", logger.Component())
	}
}

func TestFromContext(t *testing.T) {
	if got := FromContext(context.Background()); got == nil || got.Component() != "unknown" {
		t.Fatalf("FromContext without logger = %+v, want default with unknown component", got)
	}

	logger := New(Config{Component: ComponentTrace, Output: &bytes.Buffer{}})
	ctx := NewContext(context.Background(), logger)
	if got := FromContext(ctx); got != logger {
		t.Error("FromContext did not return the stored logger")
	}
}

func TestLogHTTPEndLevels(t *testing.T) {
	tests := []struct {
		status int
		level  string
	}{
		{200, "INFO"},
		{404, "WARN"},
		{500, "ERROR"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		logger := New(Config{Level: slog.LevelDebug, Format: "json", Component: ComponentHTTP, Output: &buf})
		r := httptest.NewRequest("GET", "/api/expenses?x=1", nil)

		LogHTTPEnd(context.Background(), logger, r, tt.status, 12, "10.0.0.1")

		lines := decodeLines(t, &buf)
		if len(lines) != 1 {
			t.Fatalf("status %d: got %d lines", tt.status, len(lines))
		}
		l := lines[0]
		if l["level"] != tt.level {
			t.Errorf("status %d: level = %v, want %s", tt.status, l["level"], tt.level)
		}
		if l[FieldStatusCode] != float64(tt.status) {
			t.Errorf("status %d: status_code = %v", tt.status, l[FieldStatusCode])
		}
		if l[FieldQuery] != "x=1" || l[FieldClientIP] != "10.0.0.1" {
			t.Errorf("status %d: unexpected fields %v", tt.status, l)
		}
		if l[FieldSuccess] != (tt.status < 400) {
			t.Errorf("status %d: success = %v", tt.status, l[FieldSuccess])
		}
	}
}

func TestFieldsWithError(t *testing.T) {
	f := NewFields().WithError(nil, ErrorTypeDatabase)
	if len(f) != 0 {
		t.Errorf("nil error should add no fields, got %v", f)
	}

	f = NewFields().WithError(errors.New("boom"), ErrorTypeDatabase).WithOperation(OpCreate)
	if f[FieldError] != "boom" || f[FieldErrorType] != ErrorTypeDatabase || f[FieldOperation] != OpCreate {
		t.Errorf("unexpected fields %v", f)
	}
	if got := len(f.ToSlice()); got != 6 {
		t.Errorf("ToSlice length = %d, want 6", got)
	}
}
