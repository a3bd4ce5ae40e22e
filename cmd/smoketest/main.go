package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/hamed0406/deploysmoke/internal/config"
	"github.com/hamed0406/deploysmoke/internal/logging"
	"github.com/hamed0406/deploysmoke/internal/notify"
	"github.com/hamed0406/deploysmoke/internal/report"
	"github.com/hamed0406/deploysmoke/internal/smoke"
)

const (
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Parse(args)
	if errors.Is(err, pflag.ErrHelp) {
		fmt.Fprint(stdout, config.Usage())
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "✖ %v\n\n%s", err, config.Usage())
		return exitUsage
	}

	logger, err := logging.NewLogger(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(stderr, "✖ open log: %v\n", err)
		return exitFailure
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var opts []report.Option
	if cfg.NoColor {
		opts = append(opts, report.WithoutColor())
	}
	out := report.New(stdout, opts...)

	steps, err := smoke.Plan(cfg, out)
	if err != nil {
		fmt.Fprintf(stderr, "✖ %v\n", err)
		return exitUsage
	}

	runner := smoke.NewRunner(out, logger)
	if cfg.SlackWebhook != "" {
		runner.Notifier = notify.NewSlack(cfg.SlackWebhook)
	}

	logger.Info("run_start",
		zap.String("lb", cfg.LBDNSName),
		zap.String("db_endpoint", cfg.DBEndpoint),
		zap.String("db_engine", cfg.DBEngine),
		zap.String("bucket", cfg.Bucket),
	)
	return runner.Run(ctx, steps).ExitCode()
}
