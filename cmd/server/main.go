package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/veil-waf/framegate/internal/classify"
	"github.com/veil-waf/framegate/internal/config"
	"github.com/veil-waf/framegate/internal/handlers"
	"github.com/veil-waf/framegate/internal/server"
	fgtls "github.com/veil-waf/framegate/internal/tls"
	"github.com/veil-waf/framegate/internal/ws"
)

func main() {
	// A missing .env file is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	logger := server.SetupLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	strategy, err := classify.New(ctx, cfg.Strategy, classify.Options{
		RemoteURL:       cfg.RemoteURL,
		RemoteTimeout:   cfg.RemoteTimeout,
		AnthropicAPIKey: cfg.AnthropicAPIKey,
		ClaudeModel:     cfg.ClaudeModel,
	})
	if err != nil {
		logger.Error("failed to build check strategy", "err", err)
		os.Exit(1)
	}
	checker := classify.NewChecker(strategy, logger)

	checkHandler := handlers.NewCheckHandler(checker, cfg.BatchConcurrency, logger)
	wsHandler := ws.NewHandler(checker, logger)

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(corsMiddleware)

	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("pong"))
	})

	// Collaborator contract, answered by the configured strategy
	r.Post("/api/check", checkHandler.Check)

	// Local engine, full verdicts
	r.Post("/v1/assess", checkHandler.Assess)
	r.Post("/v1/assess/batch", checkHandler.AssessBatch)

	r.Get("/ws", wsHandler.HandleWS)

	if cfg.TLSEnabled() {
		cm := fgtls.NewCertManager(cfg.TLSDomains, cfg.ACMEEmail, cfg.Production, logger)
		go server.RunWithRecovery(ctx, logger, "tls-server", func(ctx context.Context) error {
			return cm.ListenAndServe(ctx, r)
		})
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // websocket connections stay open
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", "err", err)
		}
	}()

	logger.Info("server starting", "port", cfg.Port, "strategy", checker.Strategy(), "tls", cfg.TLSEnabled())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server failed", "err", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
