package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewLogger_WritesJSONToFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	log, err := NewLogger(dir, "debug")
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}

	log.Info("probe_passed")
	_ = log.Sync()

	b, err := os.ReadFile(filepath.Join(dir, fileName))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(b), `"msg":"probe_passed"`) {
		t.Fatalf("log line missing message: %s", b)
	}
	if !strings.Contains(string(b), `"app":"smoketest"`) {
		t.Fatalf("log line missing app field: %s", b)
	}
}

func TestNewLogger_EmptyDirIsNop(t *testing.T) {
	log, err := NewLogger("", "info")
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	// Must not panic or create anything.
	log.Info("ignored")
	if log.Core().Enabled(0) {
		t.Fatal("nop logger should have every level disabled")
	}
}

func TestNewLogger_BadLevelFallsBackToInfo(t *testing.T) {
	dir := t.TempDir()
	log, err := NewLogger(dir, "loud")
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	defer func() { _ = log.Sync() }()

	if log.Core().Enabled(-1) { // debug
		t.Fatal("debug should be disabled after fallback to info")
	}
	if !log.Core().Enabled(0) {
		t.Fatal("info should be enabled")
	}
}
