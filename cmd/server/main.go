package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"passgate/internal/passes/handler"
	"passgate/internal/passes/metrics"
	"passgate/internal/passes/provider"
	"passgate/internal/passes/service"
	"passgate/internal/passes/tracer"
	"passgate/internal/platform/config"
	"passgate/internal/platform/health"
	"passgate/internal/platform/httpserver"
	"passgate/internal/platform/logger"
	httptransport "passgate/internal/transport/http"
	request "passgate/pkg/platform/middleware/request"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal/passes.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	providerCfg := cfg.PassEntry.Provider()
	log.Info("initializing passgate",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"provider_url", providerCfg.APIURL,
		"provider_timeout", cfg.ProviderTimeout.String(),
	)
	if err := providerCfg.Validate(); err != nil {
		log.Warn("pass provider configuration incomplete, issuance will fail until fixed", "error", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	passMetrics := metrics.New(reg)

	client := provider.New(providerCfg,
		provider.WithHTTPClient(&http.Client{Timeout: cfg.ProviderTimeout}),
		provider.WithLogger(log),
		provider.WithTracer(tracer.NewOTel()),
		provider.WithRecorder(passMetrics),
	)
	passService := service.New(client,
		service.WithLogger(log),
		service.WithMetrics(passMetrics),
	)

	healthHandler := health.New(cfg.Environment)
	healthHandler.RegisterCheck("provider_config", providerCfg.Validate)
	healthHandler.RegisterStatus("passentry", func() string {
		if passService.ProviderDegraded() {
			return "degraded"
		}
		return "ok"
	})

	router := httptransport.NewRouter(httptransport.Dependencies{
		Logger:   log,
		Health:   healthHandler,
		Gatherer: reg,
		Metrics:  request.NewMetrics(reg),
		Passes:   handler.New(passService, log),
	})

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting http server", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info("shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}
