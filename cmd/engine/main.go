package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/bruadam/hvx-engine/internal/adapter/loader"
	"github.com/bruadam/hvx-engine/internal/adapter/sink"
	"github.com/bruadam/hvx-engine/pkg/config"

	// Import metrics to register them
	_ "github.com/bruadam/hvx-engine/internal/observability/telemetry"
)

const serviceName = "hvx-engine"

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}
	logger.Info("Starting analysis",
		zap.String("service", serviceName),
		zap.String("data_dir", cfg.Data.Dir),
	)

	if cfg.Prometheus.Enabled {
		go serveMetrics(cfg.Prometheus, logger)
	}

	orch, err := buildOrchestrator(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to build orchestrator", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	input, err := loader.NewCSVLoader(cfg.Data.Dir, logger).Load(ctx)
	if err != nil {
		logger.Fatal("Failed to load data", zap.Error(err))
	}

	result, err := orch.Run(ctx, input)
	if err != nil {
		logger.Fatal("Analysis run failed", zap.Error(err))
	}

	if err := sink.NewJSONSink(os.Stdout, logger).Publish(ctx, result); err != nil {
		logger.Fatal("Failed to publish results", zap.Error(err))
	}
}

func serveMetrics(cfg config.PrometheusConfig, logger *zap.Logger) {
	path := cfg.Path
	if path == "" {
		path = "/metrics"
	}
	mux := http.NewServeMux()
	mux.Handle(path, promhttp.Handler())
	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.Info("Serving metrics", zap.String("addr", addr), zap.String("path", path))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Warn("Metrics server stopped", zap.Error(err))
	}
}
