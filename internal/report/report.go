// Package report prints the operator-facing status lines of a smoke run.
package report

import (
	"fmt"
	"io"
	"os"
)

// Status selects the marker printed in front of a line.
type Status int

const (
	StatusNone Status = iota
	StatusSuccess
	StatusError
	StatusHeader
)

const (
	green = "\033[92m"
	red   = "\033[91m"
	bold  = "\033[1m"
	reset = "\033[0m"
)

type marker struct {
	prefix string
	suffix string
}

var colored = map[Status]marker{
	StatusNone:    {},
	StatusSuccess: {prefix: green + "✓" + reset + " "},
	StatusError:   {prefix: red + "✗" + reset + " "},
	StatusHeader:  {prefix: bold, suffix: reset},
}

var plain = map[Status]marker{
	StatusNone:    {},
	StatusSuccess: {prefix: "✓ "},
	StatusError:   {prefix: "✗ "},
	StatusHeader:  {},
}

// Reporter writes one line per call. It keeps no state between calls.
type Reporter struct {
	w       io.Writer
	markers map[Status]marker
}

type Option func(*Reporter)

// WithoutColor drops ANSI escapes but keeps the glyphs.
func WithoutColor() Option {
	return func(r *Reporter) { r.markers = plain }
}

func New(w io.Writer, opts ...Option) *Reporter {
	if w == nil {
		w = os.Stdout
	}
	r := &Reporter{w: w, markers: colored}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Log prints message with the marker for st. A failed write means stdout is
// gone, so it panics instead of returning an error nobody could report.
func (r *Reporter) Log(message string, st Status) {
	m, ok := r.markers[st]
	if !ok {
		m = r.markers[StatusNone]
	}
	if _, err := fmt.Fprintln(r.w, m.prefix+message+m.suffix); err != nil {
		panic(fmt.Errorf("report: write status line: %w", err))
	}
}

func (r *Reporter) Success(message string) { r.Log(message, StatusSuccess) }
func (r *Reporter) Error(message string)   { r.Log(message, StatusError) }
func (r *Reporter) Header(message string)  { r.Log(message, StatusHeader) }
func (r *Reporter) Plain(message string)   { r.Log(message, StatusNone) }

// Colorize wraps text in the success or error color, for inline verdicts.
// It is a no-op when the reporter was built WithoutColor.
func (r *Reporter) Colorize(text string, ok bool) string {
	if r.markers[StatusHeader].prefix == "" {
		return text
	}
	if ok {
		return green + text + reset
	}
	return red + text + reset
}
