package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/bistsignal/backend/pkg/config"
)

// decodeLine parses a single JSON log entry
func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()

	var entry map[string]interface{}
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("Failed to parse log output %q: %v", buf.String(), err)
	}
	return entry
}

func TestNew_SetsGlobalLevel(t *testing.T) {
	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			New(&config.Config{Env: "development", LogLevel: tt.level, LogFormat: "json"})

			if zerolog.GlobalLevel() != tt.want {
				t.Errorf("Expected global level %v, got %v", tt.want, zerolog.GlobalLevel())
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{"WARN", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLogLevel(tt.input); got != tt.want {
				t.Errorf("parseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewLogger_ServiceFields(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, &config.Config{Env: "production", LogLevel: "info", LogFormat: "json"})

	log.Info("Service started")

	entry := decodeLine(t, &buf)
	if entry["env"] != "production" || entry["service"] != "bistsignal" {
		t.Errorf("Expected env and service fields, got %v", entry)
	}
	if entry["level"] != "info" || entry["message"] != "Service started" {
		t.Errorf("Unexpected entry: %v", entry)
	}
}

func TestNewLogger_ConsoleFormat(t *testing.T) {
	for _, format := range []string{"console", "pretty", "CONSOLE"} {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			log := newLogger(&buf, &config.Config{Env: "development", LogLevel: "info", LogFormat: format})

			log.WithSymbol("THYAO").Info("Price series loaded")

			out := buf.String()
			if strings.HasPrefix(out, "{") {
				t.Errorf("Expected console output, got JSON: %s", out)
			}
			if !strings.Contains(out, "Price series loaded") || !strings.Contains(out, "THYAO") {
				t.Errorf("Expected message and symbol in output, got: %s", out)
			}
		})
	}
}

func TestLevels(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	tests := []struct {
		name      string
		logFunc   func(*Logger)
		wantLevel string
	}{
		{"debug", func(l *Logger) { l.Debug("indicator inputs") }, "debug"},
		{"info", func(l *Logger) { l.Info("analysis completed") }, "info"},
		{"warn", func(l *Logger) { l.Warn("macro factor degraded") }, "warn"},
		{"error", func(l *Logger) { l.Error("snapshot write failed") }, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(NewWithWriter(&buf, "debug"))

			entry := decodeLine(t, &buf)
			if entry["level"] != tt.wantLevel {
				t.Errorf("Expected level %s, got %v", tt.wantLevel, entry["level"])
			}
		})
	}
}

func TestDomainFields(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	var buf bytes.Buffer
	NewWithWriter(&buf, "info").
		Module("orchestrator").
		WithSymbol("GARAN").
		WithJob("price_warmup").
		WithFields(map[string]interface{}{"hybrid_score": 59.3, "signal": "AL"}).
		Info("Hybrid analysis completed")

	entry := decodeLine(t, &buf)
	want := map[string]interface{}{
		"module":       "orchestrator",
		"symbol":       "GARAN",
		"job":          "price_warmup",
		"hybrid_score": 59.3,
		"signal":       "AL",
	}
	for k, v := range want {
		if entry[k] != v {
			t.Errorf("Expected %s=%v, got %v", k, v, entry[k])
		}
	}
}

func TestWithFieldDoesNotMutateParent(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	var buf bytes.Buffer
	parent := NewWithWriter(&buf, "info")
	_ = parent.WithField("period", "6mo")

	parent.Info("plain")

	entry := decodeLine(t, &buf)
	if _, ok := entry["period"]; ok {
		t.Errorf("Parent logger gained a child field: %v", entry)
	}
}

func TestWithError(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	var buf bytes.Buffer
	NewWithWriter(&buf, "info").
		WithError(errors.New("yahoo chart request timeout")).
		Error("Failed to fetch price series")

	entry := decodeLine(t, &buf)
	if entry["error"] != "yahoo chart request timeout" {
		t.Errorf("Expected error field, got %v", entry["error"])
	}
	if entry["message"] != "Failed to fetch price series" {
		t.Errorf("Expected message, got %v", entry["message"])
	}
}

func TestNewWithWriter_Level(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	var buf bytes.Buffer
	log := NewWithWriter(&buf, "warn")

	log.Info("dropped")
	log.WithSymbol("THYAO").Warn("kept")

	if strings.Contains(buf.String(), "dropped") {
		t.Errorf("info message should be filtered at warn level: %s", buf.String())
	}

	entry := decodeLine(t, &buf)
	if entry["symbol"] != "THYAO" || entry["message"] != "kept" {
		t.Errorf("unexpected entry: %v", entry)
	}
}

func TestNewNop(t *testing.T) {
	log := NewNop()

	// Must be safe to call with any chain
	log.WithError(errors.New("boom")).Module("scheduler").WithJob("macro_refresh").Error("ignored")
	log.WithFields(map[string]interface{}{"a": 1}).Info("ignored")
}
