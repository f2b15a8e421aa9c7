// Command devserver runs a local stand-in for the character service so the
// RunnerVault client can be exercised end-to-end during development. It
// implements the same HTTP contract as the deployed backend but keeps its
// data in a local SQLite file.
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/runnervault/internal/devserver/config"
	"github.com/dmitrijs2005/runnervault/internal/devserver/handlers"
	"github.com/dmitrijs2005/runnervault/internal/devserver/store"
	"github.com/dmitrijs2005/runnervault/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	st, err := store.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer st.Close()

	h := handlers.New(st, []byte(cfg.JWTSecret), cfg.TokenTTL, logger)

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: handlers.NewRouter(h),
	}

	go func() {
		logger.Info(ctx, "devserver listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(ctx, "server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(shutdownCtx, "shutdown failed", "error", err)
	}
}
