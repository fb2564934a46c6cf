package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"postboard.org/internal/auth"
	"postboard.org/internal/config"
	"postboard.org/internal/httpapi"
	"postboard.org/internal/obs"
	"postboard.org/internal/store"
	"postboard.org/internal/store/mem"
	"postboard.org/internal/store/mongo"
	"postboard.org/internal/store/pg"
)

var version = "0.1.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	obs.Init()
	log := obs.Setup(cfg.Env)

	tokens, err := auth.NewTokens(cfg.JWTSecret)
	if err != nil {
		return fmt.Errorf("token signer: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var st store.Store
	switch cfg.Backend {
	case "mongo":
		st, err = mongo.Open(ctx, cfg.MongoURI, cfg.MongoDB)
	case "postgres":
		st, err = pg.Open(cfg.PostgresDSN)
	case "mem":
		st = mem.New()
	}
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Backend, err)
	}

	api := httpapi.New(log, st, auth.NewService(st.Users()), tokens, version)
	api.SetLimits(cfg.RateBurst, cfg.RatePerSec, cfg.MaxBodyBytes)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}

	log.Info("starting postboard-api", "version", version, "addr", cfg.Addr, "store", cfg.Backend)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case sig := <-stop:
		log.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", "error", err)
	}
	if err := st.Close(shutdownCtx); err != nil {
		log.Error("close store", "error", err)
	}
	log.Info("stopped")
	return nil
}
