package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRun_MissingArgumentsIsUsageError(t *testing.T) {
	t.Setenv("SMOKE_LOG_DIR", "")
	var stdout, stderr bytes.Buffer

	code := run([]string{"lb.example.com", "db.example.com"}, &stdout, &stderr)

	if code != exitUsage {
		t.Fatalf("exit code %d want %d", code, exitUsage)
	}
	if stdout.Len() != 0 {
		t.Fatalf("no probe output expected, got %q", stdout.String())
	}
	if !strings.Contains(stderr.String(), "Usage: smoketest") {
		t.Fatalf("usage not printed: %q", stderr.String())
	}
}

func TestRun_UnknownEngineIsUsageError(t *testing.T) {
	t.Setenv("SMOKE_LOG_DIR", "")
	var stdout, stderr bytes.Buffer

	code := run([]string{"--db-engine", "oracle", "lb", "db", "bucket", "pw"}, &stdout, &stderr)

	if code != exitUsage {
		t.Fatalf("exit code %d want %d", code, exitUsage)
	}
	if stdout.Len() != 0 {
		t.Fatalf("no probe output expected, got %q", stdout.String())
	}
}

func TestRun_Help(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := run([]string{"--help"}, &stdout, &stderr)

	if code != 0 {
		t.Fatalf("exit code %d want 0", code)
	}
	if !strings.Contains(stdout.String(), "--db-user") {
		t.Fatalf("help missing flags: %q", stdout.String())
	}
}

func TestRun_UnwritableLogDirIsNotAUsageError(t *testing.T) {
	t.Setenv("SMOKE_LOG_DIR", "")
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	var stdout, stderr bytes.Buffer

	code := run([]string{"--log-dir", filepath.Join(blocker, "logs"), "lb", "db", "bucket", "pw"}, &stdout, &stderr)

	if code != exitFailure {
		t.Fatalf("exit code %d want %d", code, exitFailure)
	}
	if stdout.Len() != 0 {
		t.Fatalf("no probe output expected, got %q", stdout.String())
	}
	if !strings.Contains(stderr.String(), "open log") {
		t.Fatalf("unexpected stderr %q", stderr.String())
	}
}
