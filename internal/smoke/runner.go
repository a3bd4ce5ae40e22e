// Package smoke runs the probes of a deployment smoke test one after another
// and turns their results into a single verdict.
package smoke

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/hamed0406/deploysmoke/internal/notify"
	"github.com/hamed0406/deploysmoke/internal/probe"
	"github.com/hamed0406/deploysmoke/internal/report"
)

// Step is one probe plus the header printed before it runs.
type Step struct {
	Title   string
	Checker probe.Checker
}

// Summary aggregates the results of a run, in step order.
type Summary struct {
	Results []probe.Result
}

func (s Summary) Total() int { return len(s.Results) }

func (s Summary) Passed() int {
	n := 0
	for _, r := range s.Results {
		if r.Success {
			n++
		}
	}
	return n
}

// OK reports whether every probe passed.
func (s Summary) OK() bool { return s.Passed() == s.Total() }

// ExitCode is 0 iff every probe passed, 1 otherwise.
func (s Summary) ExitCode() int {
	if s.OK() {
		return 0
	}
	return 1
}

// FailedNames lists the labels of failed probes.
func (s Summary) FailedNames() []string {
	var names []string
	for _, r := range s.Results {
		if !r.Success {
			names = append(names, r.Name)
		}
	}
	return names
}

// Err combines the causes of every failed probe, or nil.
func (s Summary) Err() error {
	var err error
	for _, r := range s.Results {
		if r.Success {
			continue
		}
		cause := r.Err
		if cause == nil {
			cause = fmt.Errorf("%s", r.Message)
		}
		err = multierr.Append(err, fmt.Errorf("%s: %w", r.Name, cause))
	}
	return err
}

func (s Summary) Verdict() string {
	if s.OK() {
		return "All tests passed"
	}
	return "Some tests failed"
}

func (s Summary) Counts() string {
	return fmt.Sprintf("%d/%d passed", s.Passed(), s.Total())
}

type Runner struct {
	Out      *report.Reporter
	Logger   *zap.Logger
	Notifier notify.Notifier
}

func NewRunner(out *report.Reporter, logger *zap.Logger) *Runner {
	if out == nil {
		out = report.New(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{Out: out, Logger: logger}
}

// Run executes steps strictly in order. A failed step never stops the
// ones after it.
func (r *Runner) Run(ctx context.Context, steps []Step) Summary {
	r.Out.Plain("")
	r.Out.Header("=== Running Tests ===")
	r.Out.Plain("---------------------")

	sum := Summary{Results: make([]probe.Result, 0, len(steps))}
	for i, st := range steps {
		if i > 0 {
			r.Out.Plain("")
		}
		r.Out.Header(st.Title)

		res := st.Checker.Check(ctx)
		sum.Results = append(sum.Results, res)
		r.logResult(res)
	}

	r.Out.Plain("")
	r.Out.Header("=== Test Summary ===")
	r.Out.Plain("--------------------")
	line := fmt.Sprintf("Tests completed: %s (%s)", r.Out.Colorize(sum.Verdict(), sum.OK()), sum.Counts())
	if sum.OK() {
		r.Out.Success(line)
	} else {
		r.Out.Error(line)
	}

	fields := []zap.Field{
		zap.Int("passed", sum.Passed()),
		zap.Int("total", sum.Total()),
		zap.Bool("ok", sum.OK()),
	}
	if err := sum.Err(); err != nil {
		fields = append(fields, zap.Error(err))
	}
	r.Logger.Info("run_summary", fields...)

	r.notify(ctx, sum)
	return sum
}

func (r *Runner) logResult(res probe.Result) {
	fields := []zap.Field{
		zap.String("probe", res.Name),
		zap.Float64("latency_ms", res.LatencyMS),
		zap.String("message", res.Message),
	}
	if res.StatusCode != 0 {
		fields = append(fields, zap.Int("status", res.StatusCode))
	}
	if res.Success {
		r.Logger.Info("probe_passed", fields...)
		return
	}
	r.Logger.Warn("probe_failed", append(fields, zap.Error(res.Err))...)
}

func (r *Runner) notify(ctx context.Context, sum Summary) {
	if r.Notifier == nil {
		return
	}
	title := "🟢 Smoke test passed"
	text := sum.Counts()
	if !sum.OK() {
		title = "🔴 Smoke test failed"
		text += "\nFailed: " + strings.Join(sum.FailedNames(), ", ")
	}
	// Best-effort; the verdict already went to stdout.
	if err := r.Notifier.Send(context.WithoutCancel(ctx), title, text); err != nil {
		r.Logger.Warn("notify_failed", zap.Error(err))
	}
}
