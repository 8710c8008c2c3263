package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/scam-honeypot/cmd/mainconfig"
	"github.com/wolfman30/scam-honeypot/internal/api/router"
	"github.com/wolfman30/scam-honeypot/internal/app/bootstrap"
	appconfig "github.com/wolfman30/scam-honeypot/internal/config"
	"github.com/wolfman30/scam-honeypot/internal/honeypot"
	"github.com/wolfman30/scam-honeypot/internal/http/handlers"
	"github.com/wolfman30/scam-honeypot/internal/observability/metrics"
	"github.com/wolfman30/scam-honeypot/internal/session"
	"github.com/wolfman30/scam-honeypot/pkg/logging"
)

func main() {
	// Load configuration
	if err := appconfig.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to read .env: %v\n", err)
		os.Exit(1)
	}
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.NewWithOptions(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger.Info("starting scam-honeypot API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"llm_provider", cfg.LLMProvider,
	)
	if cfg.APISecretKey == "" {
		logger.Warn("API_SECRET_KEY is not set; every protected request will be rejected")
	}

	appCtx, stopApp := context.WithCancel(context.Background())
	defer stopApp()

	metricsHandler, honeypotMetrics := setupMetrics()

	// Model backend and gateway
	llmClient, closeLLM, err := bootstrap.BuildLLMClient(appCtx, cfg, mainconfig.LoadAWSConfig, logger)
	if err != nil {
		logger.Error("failed to initialize LLM backend", "error", err)
		os.Exit(1)
	}
	gw := bootstrap.BuildGateway(llmClient, cfg, logger)

	// Sessions
	store := bootstrap.BuildSessionStore(cfg)
	go runSessionJanitor(appCtx, store, cfg.SessionSweepInterval, logger)

	// Callback reports
	dispatcher, err := bootstrap.BuildDispatcher(appCtx, cfg, mainconfig.LoadAWSConfig, honeypotMetrics, logger)
	if err != nil {
		logger.Error("failed to initialize callback dispatcher", "error", err)
		os.Exit(1)
	}
	dispatcherCtx, stopDispatcher := context.WithCancel(appCtx)
	dispatcher.Start(dispatcherCtx)

	engine := honeypot.NewEngine(store, gw, dispatcher, logger,
		honeypot.WithMinMessagesForCallback(cfg.MinMessagesForCallback),
		honeypot.WithMetrics(honeypotMetrics),
	)

	// Optional shared rate limiting
	redisClient := bootstrap.BuildRedisClient(appCtx, cfg, logger, true)
	if redisClient != nil {
		defer redisClient.Close()
	}
	limiter := bootstrap.BuildRateLimiter(cfg, redisClient, logger)

	// Setup router
	r := router.New(&router.Config{
		Logger:          logger,
		HoneypotHandler: handlers.NewHoneypotHandler(engine, logger),
		SessionHandler:  handlers.NewSessionHandler(store, logger),
		APISecretKey:    cfg.APISecretKey,
		MetricsHandler:  metricsHandler,
		RateLimiter:     limiter,
		Metrics:         honeypotMetrics,
	})

	// Create HTTP server. WriteTimeout leaves room for three sequential LLM calls.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 3*cfg.LLMTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	stopDispatcher()
	waitForDispatcher(dispatcher, 10*time.Second, logger)
	stopApp()

	if err := closeLLM(); err != nil {
		logger.Warn("failed to close LLM client", "error", err)
	}
	if closer, ok := limiter.(interface{ Close() }); ok {
		closer.Close()
	}

	logger.Info("server stopped")
}

func setupMetrics() (http.Handler, *metrics.HoneypotMetrics) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{}), metrics.NewHoneypotMetrics(registry)
}

func runSessionJanitor(ctx context.Context, store *session.MemoryStore, interval time.Duration, logger *logging.Logger) {
	store.RunJanitor(ctx, interval, func(evicted int) {
		if evicted > 0 {
			logger.Info("evicted idle sessions", "count", evicted, "remaining", store.Len())
		}
	})
}

type waiter interface {
	Wait()
}

// waitForDispatcher gives in-flight reports a bounded window to finish.
func waitForDispatcher(d waiter, timeout time.Duration, logger *logging.Logger) {
	done := make(chan struct{})
	go func() {
		d.Wait()
		close(done)
	}()
	select {
	case <-done:
		logger.Info("callback dispatcher stopped")
	case <-time.After(timeout):
		logger.Warn("callback dispatcher did not stop before timeout", "timeout", timeout)
	}
}
