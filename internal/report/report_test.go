package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestReporter_PlainMarkers(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, WithoutColor())

	r.Success("db ok")
	r.Error("bucket missing")
	r.Header("=== Running Tests ===")
	r.Plain("just text")

	want := "✓ db ok\n✗ bucket missing\n=== Running Tests ===\njust text\n"
	if got := buf.String(); got != want {
		t.Fatalf("unexpected output:\n%q\nwant\n%q", got, want)
	}
}

func TestReporter_ColoredMarkers(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf)

	r.Success("up")
	r.Error("down")
	r.Header("head")

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("want 3 lines, got %d: %q", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], green+"✓"+reset) {
		t.Fatalf("success line missing green check: %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], red+"✗"+reset) {
		t.Fatalf("error line missing red cross: %q", lines[1])
	}
	if lines[2] != bold+"head"+reset {
		t.Fatalf("header not bold: %q", lines[2])
	}
}

func TestReporter_UnknownStatusIsPlain(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).Log("x", Status(42))
	if buf.String() != "x\n" {
		t.Fatalf("got %q", buf.String())
	}
}

func TestReporter_Colorize(t *testing.T) {
	if got := New(nil, WithoutColor()).Colorize("All tests passed", true); got != "All tests passed" {
		t.Fatalf("plain colorize changed text: %q", got)
	}
	if got := New(nil).Colorize("Some tests failed", false); got != red+"Some tests failed"+reset {
		t.Fatalf("colorize: %q", got)
	}
}

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) { return 0, errors.New("stdout closed") }

func TestReporter_WriteFailurePanics(t *testing.T) {
	defer func() {
		rec := recover()
		if rec == nil {
			t.Fatal("expected panic on write failure")
		}
		err, ok := rec.(error)
		if !ok || !strings.Contains(err.Error(), "stdout closed") {
			t.Fatalf("unexpected panic value: %v", rec)
		}
	}()
	New(brokenWriter{}).Success("never printed")
}
