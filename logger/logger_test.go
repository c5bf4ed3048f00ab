package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	line := strings.TrimSpace(buf.String())
	if line == "" {
		t.Fatal("expected a log line, got nothing")
	}
	var out map[string]interface{}
	if err := json.Unmarshal([]byte(line), &out); err != nil {
		t.Fatalf("expected JSON log line, got %q: %v", line, err)
	}
	return out
}

func jsonLogger(buf *bytes.Buffer, level string) *Logger {
	return NewWithWriter(&Config{Level: level, Format: FormatJSON}, buf, "rx-test")
}

func TestNewDefault(t *testing.T) {
	l := NewDefault("test-svc")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if l.service != "test-svc" {
		t.Errorf("expected service 'test-svc', got %q", l.service)
	}
}

func TestNewInvalidLevel(t *testing.T) {
	var buf bytes.Buffer
	l := jsonLogger(&buf, "invalid-level")
	l.Info("hello")
	if buf.Len() == 0 {
		t.Fatal("expected info to be written when level falls back to info")
	}
}

func TestNewWithWriter_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	l := jsonLogger(&buf, "debug")
	l.Info("pool started", Fields("workers", 4))

	out := decodeLine(t, &buf)
	if out["message"] != "pool started" {
		t.Errorf("expected message 'pool started', got %v", out["message"])
	}
	if out[FieldService] != "rx-test" {
		t.Errorf("expected service 'rx-test', got %v", out[FieldService])
	}
	if out["workers"] != float64(4) {
		t.Errorf("expected workers=4, got %v", out["workers"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := jsonLogger(&buf, "warn")
	l.Debug("hidden")
	l.Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("expected nothing below warn, got %q", buf.String())
	}
	l.Warn("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("expected warn line, got %q", buf.String())
	}
}

func TestNewFromEnv(t *testing.T) {
	os.Setenv("RX_LOG_LEVEL", "debug")
	os.Setenv("RX_LOG_FORMAT", "json")
	defer os.Unsetenv("RX_LOG_LEVEL")
	defer os.Unsetenv("RX_LOG_FORMAT")

	l := NewFromEnv("env-svc")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	l := jsonLogger(&buf, "info").WithComponent("scheduler")
	if l.service != "rx-test" {
		t.Errorf("service should be preserved, got %q", l.service)
	}
	l.Info("x")
	out := decodeLine(t, &buf)
	if out[FieldComponent] != "scheduler" {
		t.Errorf("expected component=scheduler, got %v", out[FieldComponent])
	}
}

func TestWithContext(t *testing.T) {
	var buf bytes.Buffer
	ctx := ContextWithSubscription(context.Background(), "sub-1")
	ctx = ContextWithTrace(ctx, "abc123")
	jsonLogger(&buf, "info").WithContext(ctx).Info("x")

	out := decodeLine(t, &buf)
	if out[FieldSubscription] != "sub-1" {
		t.Errorf("expected subscription_id=sub-1, got %v", out[FieldSubscription])
	}
	if out[FieldTraceID] != "abc123" {
		t.Errorf("expected trace_id=abc123, got %v", out[FieldTraceID])
	}
}

func TestWithContext_Empty(t *testing.T) {
	var buf bytes.Buffer
	jsonLogger(&buf, "info").WithContext(context.Background()).Info("x")
	out := decodeLine(t, &buf)
	if _, ok := out[FieldSubscription]; ok {
		t.Error("expected no subscription field on a bare context")
	}
}

func TestWithFieldsAndError(t *testing.T) {
	var buf bytes.Buffer
	jsonLogger(&buf, "info").
		WithFields(map[string]interface{}{"scheduler": "io"}).
		WithError(errors.New("boom")).
		Error("task failed")

	out := decodeLine(t, &buf)
	if out["scheduler"] != "io" {
		t.Errorf("expected scheduler=io, got %v", out["scheduler"])
	}
	if out["error"] != "boom" {
		t.Errorf("expected error=boom, got %v", out["error"])
	}
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Error("dropped")
	if l.Enabled(zerolog.ErrorLevel) {
		t.Error("expected a disabled logger")
	}
}

func TestSetGlobalLogger(t *testing.T) {
	original := GetGlobalLogger()
	defer SetGlobalLogger(original)

	var buf bytes.Buffer
	SetGlobalLogger(jsonLogger(&buf, "debug"))
	WithComponent("rx").Debug("subscribed")
	Info("global")

	if !strings.Contains(buf.String(), "subscribed") || !strings.Contains(buf.String(), "global") {
		t.Errorf("expected package-level functions to use the global logger, got %q", buf.String())
	}
}

func TestInit(t *testing.T) {
	original := GetGlobalLogger()
	defer SetGlobalLogger(original)

	Init(Config{ServiceName: "demo", Level: "debug", Format: "json"})
	if GetGlobalLogger().service != "demo" {
		t.Errorf("expected global service 'demo', got %q", GetGlobalLogger().service)
	}
}

func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&Config{Level: "info", Format: FormatConsole, NoColor: true}, &buf, "scheduler")
	l.Info("pool started")
	out := buf.String()
	if !strings.Contains(out, "[SCH][INF]") {
		t.Errorf("expected service and level tags, got %q", out)
	}
	if !strings.Contains(out, "pool started") {
		t.Errorf("expected message, got %q", out)
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.Level != "info" {
		t.Errorf("expected level 'info', got %q", cfg.Level)
	}
	if cfg.Format != FormatConsole {
		t.Errorf("expected format 'console', got %q", cfg.Format)
	}
	if cfg.Output != "stderr" {
		t.Errorf("expected output 'stderr', got %q", cfg.Output)
	}
	if !cfg.Timestamp {
		t.Error("expected timestamp to be enabled")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Level: "info", Format: "json", Output: "stdout"}, false},
		{"bad level", Config{Level: "loud", Format: "json", Output: "stdout"}, true},
		{"bad format", Config{Level: "info", Format: "xml", Output: "stdout"}, true},
		{"bad output", Config{Level: "info", Format: "json", Output: "file"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("expected error=%v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestFields(t *testing.T) {
	m := Fields("a", 1, "b", "two", 3, "ignored", "dangling")
	if len(m) != 2 {
		t.Errorf("expected 2 fields, got %d", len(m))
	}
	if m["a"] != 1 || m["b"] != "two" {
		t.Errorf("unexpected fields: %v", m)
	}
}

func TestErrorAndDurationFields(t *testing.T) {
	ef := ErrorFields("submit", errors.New("closed"))
	if ef[FieldOperation] != "submit" || ef[FieldError] != "closed" {
		t.Errorf("unexpected error fields: %v", ef)
	}
	df := DurationFields("drain", 1500*time.Millisecond)
	if df[FieldDuration] != int64(1500) {
		t.Errorf("expected duration 1500, got %v", df[FieldDuration])
	}
	merged := MergeWithError(nil, errors.New("x"))
	if merged[FieldError] != "x" {
		t.Errorf("expected error x, got %v", merged[FieldError])
	}
}
