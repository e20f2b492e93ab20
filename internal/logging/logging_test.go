package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/1broseidon/clockwidget/internal/config"
	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewLogger_JSONWhenNotATerminal(t *testing.T) {
	var buf bytes.Buffer
	logger, closer := newLogger(&buf, false, config.Logging{Level: "info"})
	defer closer.Close()

	log := Component(logger, "widget")
	log.Info().Int("side", 450).Msg("resized")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if rec["component"] != "widget" || rec["message"] != "resized" || rec["level"] != "info" {
		t.Fatalf("unexpected record: %v", rec)
	}
	if rec["side"] != float64(450) {
		t.Fatalf("side = %v", rec["side"])
	}
	if _, ok := rec["time"]; !ok {
		t.Fatalf("record has no timestamp: %v", rec)
	}
}

func TestNewLogger_ConsoleWhenTerminal(t *testing.T) {
	var buf bytes.Buffer
	logger, closer := newLogger(&buf, true, config.Logging{Level: "info"})
	defer closer.Close()

	logger.Info().Msg("window closed")

	out := buf.String()
	if strings.HasPrefix(out, "{") {
		t.Fatalf("expected console output, got JSON: %s", out)
	}
	if !strings.Contains(out, "window closed") {
		t.Fatalf("message missing: %s", out)
	}
}

func TestNewLogger_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger, closer := newLogger(&buf, false, config.Logging{Level: "warn"})
	defer closer.Close()

	logger.Info().Msg("hidden")
	logger.Debug().Msg("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected nothing below warn, got %s", buf.String())
	}
	logger.Warn().Msg("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Fatalf("warn record missing: %s", buf.String())
	}
}

func TestNewLogger_TeesIntoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "clockwidget.log")
	var buf bytes.Buffer
	logger, closer := newLogger(&buf, false, config.Logging{Level: "info", File: path})

	logger.Info().Msg("started")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"message":"started"`) {
		t.Fatalf("log file content = %s", data)
	}
	if !strings.Contains(buf.String(), "started") {
		t.Fatalf("stderr copy missing: %s", buf.String())
	}
}
