package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/worklet-invoker/internal/platform/envutil"
	"github.com/yungbote/worklet-invoker/internal/platform/logger"
	"github.com/yungbote/worklet-invoker/internal/platform/shutdown"
	"github.com/yungbote/worklet-invoker/internal/worklet/mock"
)

func main() {
	log, err := logger.New(envutil.String("LOG_MODE", "development"))
	if err != nil {
		fmt.Printf("init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	opts := mock.Options{
		FailurePercent: envutil.Int("MOCK_FAILURE_PERCENT", 10),
		MaxLatencyMs:   envutil.Int("MOCK_MAX_LATENCY_MS", 100),
		SleepPerUnit:   time.Duration(envutil.Int("MOCK_SLEEP_SCALE_MS", 10)) * time.Millisecond,
	}
	addr := envutil.String("MOCK_ADDR", ":8001")

	srv := &http.Server{
		Addr:              addr,
		Handler:           mock.NewHandler(mock.New(opts), log),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := shutdown.NotifyContext(context.Background())
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("worklet mock listening",
			"addr", addr,
			"failure_percent", opts.FailurePercent,
			"max_latency_ms", opts.MaxLatencyMs,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("worklet mock exited", "error", err)
		os.Exit(1)
	}
}
