package probe

import (
	"context"
	"time"

	"github.com/hamed0406/deploysmoke/internal/report"
)

// Result is the outcome of a single probe. Probes never return an error or
// panic past Check; every failure ends up here with Success=false.
//
// Fields:
// - Message: the line printed for the operator.
// - Err: the underlying cause on failure, nil on success.
// - StatusCode: HTTP status code when available; 0 for everything else.
type Result struct {
	Name       string
	Success    bool
	Message    string
	LatencyMS  float64
	StatusCode int
	Err        error
}

// Checker performs one check against a target fixed at construction time.
type Checker interface {
	Check(ctx context.Context) Result
}

func passed(name, msg string, start time.Time) Result {
	return Result{Name: name, Success: true, Message: msg, LatencyMS: sinceMS(start)}
}

func failed(name, msg string, err error, start time.Time) Result {
	return Result{Name: name, Success: false, Message: msg, Err: err, LatencyMS: sinceMS(start)}
}

func sinceMS(start time.Time) float64 {
	return time.Since(start).Seconds() * 1000
}

func reporterOr(r *report.Reporter) *report.Reporter {
	if r != nil {
		return r
	}
	return report.New(nil)
}
