package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/piwi3910/sheetnest/internal/model"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zap.AtomicLevel
	}{
		{"debug", zap.NewAtomicLevelAt(zap.DebugLevel)},
		{"", zap.NewAtomicLevelAt(zap.InfoLevel)},
		{"WARN", zap.NewAtomicLevelAt(zap.WarnLevel)},
		{"error", zap.NewAtomicLevelAt(zap.ErrorLevel)},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if err != nil {
			t.Errorf("ParseLevel(%q) returned error: %v", tt.in, err)
			continue
		}
		if got != tt.want.Level() {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want.Level())
		}
	}

	if _, err := ParseLevel("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestNew_RejectsBadConfig(t *testing.T) {
	cfg := model.DefaultAppConfig().Log
	cfg.Output = "syslog"
	if _, err := New(cfg); err == nil {
		t.Error("expected error for unknown output")
	}
}

func TestNew_WritesFile(t *testing.T) {
	cfg := model.DefaultAppConfig().Log
	cfg.Format = "json"
	cfg.Level = "debug"
	cfg.FilePath = filepath.Join(t.TempDir(), "sheetnest.log")

	logger, err := New(cfg)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Debug("packing material", zap.String("material", "Plywood"))
	_ = logger.Sync()

	data, err := os.ReadFile(cfg.FilePath)
	if err != nil {
		t.Fatalf("log file was not written: %v", err)
	}
	if !strings.Contains(string(data), `"material":"Plywood"`) {
		t.Errorf("log file missing field, got %s", data)
	}
}

func TestNew_FileRespectsLevel(t *testing.T) {
	cfg := model.DefaultAppConfig().Log
	cfg.Level = "warn"
	cfg.FilePath = filepath.Join(t.TempDir(), "sheetnest.log")

	logger, err := New(cfg)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("ignored")
	logger.Warn("kept")
	_ = logger.Sync()

	data, err := os.ReadFile(cfg.FilePath)
	if err != nil {
		t.Fatalf("log file was not written: %v", err)
	}
	if strings.Contains(string(data), "ignored") || !strings.Contains(string(data), "kept") {
		t.Errorf("unexpected log file content %s", data)
	}
}

func TestMustNew_FallsBack(t *testing.T) {
	logger := MustNew(model.LogConfig{Level: "loud"})
	if logger == nil {
		t.Fatal("expected fallback logger")
	}
}
