package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/app"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/router"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/pkg/utilities"
)

func main() {
	// best-effort: without a .env the real environment and defaults apply
	_ = godotenv.Load()

	lg, err := utilities.Init(utilities.ConfigFromEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()

	sugar := lg.Sugar()
	sugar.Info("starting hotelit console gateway")

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := app.ConfigFromEnv()
	a, err := app.New(ctx, cfg, sugar)
	if err != nil {
		sugar.Fatalf("init console: %v", err)
	}
	defer a.Close()
	a.Bind(ctx)

	addr := utilities.GetEnv("CONSOLE_ADDR", "127.0.0.1:8432")
	srv := &http.Server{
		Addr:              addr,
		Handler:           router.RegisterRoutes(a, sugar.Named("http")),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalf("http server failed: %v", err)
		}
	}()
	sugar.Infow("gateway is running; press Ctrl+C to stop", "addr", addr, "backend", cfg.Dispatch.BaseURL, "state", cfg.Session.Backend)

	<-ctx.Done()

	sugar.Info("shutting down")

	doneCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}

	sugar.Info("goodbye")
}
