// Command analytics starts the standalone analytics aggregation service.
//
// It consumes analysis events that ai-tailor instances publish to Kafka,
// aggregates them in memory across all instances, and serves the totals at
// GET /analytics.
//
// Usage:
//
//	go run ./cmd/analytics [-config configs/development.yaml] [-port 8001]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Adithya-Monish-Kumar-K/ai-tailor/internal/analytics"
	apihandler "github.com/Adithya-Monish-Kumar-K/ai-tailor/internal/api/handler"
	"github.com/Adithya-Monish-Kumar-K/ai-tailor/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/ai-tailor/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/ai-tailor/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/ai-tailor/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/ai-tailor/pkg/middleware"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	port := flag.Int("port", 8001, "HTTP port for the analytics API")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	if !cfg.Kafka.Enabled {
		slog.Error("kafka is disabled; the analytics service has nothing to consume")
		os.Exit(1)
	}
	slog.Info("starting analytics service", "port", *port, "topic", cfg.Kafka.Topic)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A separate group so every event reaches this service as well as any
	// ai-tailor instance aggregating locally.
	consumerCfg := cfg.Kafka
	consumerCfg.ConsumerGroup = cfg.Kafka.ConsumerGroup + "-analytics"

	aggregator := analytics.NewAggregator()
	consumer := kafka.NewConsumer(consumerCfg, aggregator.HandleMessage)
	defer consumer.Close()
	go func() {
		if err := consumer.Start(ctx); err != nil {
			slog.Error("aggregator error", "error", err)
		}
	}()

	checker := health.NewChecker("ai-tailor-analytics", "0.2.0")
	checker.Register("kafka", health.OptionalDependency(func(ctx context.Context) error {
		return kafka.Ping(ctx, cfg.Kafka.Brokers)
	}))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /analytics", apihandler.New(nil, nil, aggregator, 0).Analytics)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("analytics service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("analytics service stopped")
}
