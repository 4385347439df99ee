package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AngelCh415/revpipe/internal/app"
	"github.com/AngelCh415/revpipe/internal/config"
	"github.com/AngelCh415/revpipe/internal/httpx"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("config", slog.String("err", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("bootstrap failed", slog.String("err", err.Error()))
		os.Exit(1)
	}

	r := httpx.NewRouter(logger, httpx.Deps{
		Profiles:   rt.Profiles,
		Jobs:       rt.Jobs,
		Automation: rt.Automation,
		Store:      rt.Store,
		Sites:      rt.Publisher,
		Trends:     rt.Trends,
		Tracker:    rt.Tracker,
		Collectors: rt.Collectors,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("port", cfg.Port), slog.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			logger.Error("server error", slog.String("err", err.Error()))
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", slog.String("err", err.Error()))
	}
	if err := rt.Close(shutdownCtx); err != nil {
		logger.Error("runtime close", slog.String("err", err.Error()))
		os.Exit(1)
	}
}
