package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hamed0406/deploysmoke/internal/config"
	"github.com/hamed0406/deploysmoke/internal/fixture"
	"github.com/hamed0406/deploysmoke/internal/logging"
)

func main() {
	cfg := config.FixtureFromEnv()
	logger, err := logging.NewLogger(cfg.LogDir, "info")
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	listeners := make([]net.Listener, 0, 2)
	for _, addr := range []string{cfg.Addr, cfg.HealthAddr} {
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			logger.Error("fixture_listen_failed", zap.String("addr", addr), zap.Error(err))
			log.Fatal(err)
		}
		listeners = append(listeners, ln)
	}

	if err := serve(ctx, logger, fixture.NewServer(logger, cfg.Page).Router(), listeners); err != nil {
		logger.Error("fixture_stopped", zap.Error(err))
		log.Fatal(err)
	}
}

// serve runs handler on every listener until ctx is done, then shuts all
// of them down.
func serve(ctx context.Context, logger *zap.Logger, handler http.Handler, listeners []net.Listener) error {
	servers := make([]*http.Server, len(listeners))
	for i := range listeners {
		servers[i] = &http.Server{Handler: handler, ReadHeaderTimeout: 5 * time.Second}
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, srv := range servers {
		srv := srv // per-iteration copy; go.mod targets go 1.21 (pre-1.22 loopvar semantics)
		ln := listeners[i]
		g.Go(func() error {
			logger.Info("fixture_listen", zap.String("addr", ln.Addr().String()))
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for _, srv := range servers {
			_ = srv.Shutdown(shutdownCtx)
		}
		return nil
	})
	return g.Wait()
}
