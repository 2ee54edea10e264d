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
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Adithya-Monish-Kumar-K/ai-tailor/internal/analysis"
	"github.com/Adithya-Monish-Kumar-K/ai-tailor/internal/analytics"
	apihandler "github.com/Adithya-Monish-Kumar-K/ai-tailor/internal/api/handler"
	apimw "github.com/Adithya-Monish-Kumar-K/ai-tailor/internal/api/middleware"
	"github.com/Adithya-Monish-Kumar-K/ai-tailor/internal/api/router"
	"github.com/Adithya-Monish-Kumar-K/ai-tailor/internal/cache"
	"github.com/Adithya-Monish-Kumar-K/ai-tailor/internal/llm/ollama"
	"github.com/Adithya-Monish-Kumar-K/ai-tailor/internal/ratelimit"
	"github.com/Adithya-Monish-Kumar-K/ai-tailor/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/ai-tailor/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/ai-tailor/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/ai-tailor/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/ai-tailor/pkg/metrics"
	pkgredis "github.com/Adithya-Monish-Kumar-K/ai-tailor/pkg/redis"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
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
	slog.Info("starting ai-tailor",
		"port", cfg.Server.Port,
		"llm_default", cfg.Ollama.Enabled,
		"model", cfg.Ollama.Model,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New(prometheus.DefaultRegisterer)
	if cfg.Metrics.Enabled {
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port, prometheus.DefaultGatherer)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			shutdownMetrics(shutdownCtx)
		}()
	}

	checker := health.NewChecker(apihandler.ServiceName, apihandler.Version)

	ollamaClient := ollama.NewClient(cfg.Ollama.BaseURL, cfg.Ollama.Model)
	hinter := ollama.NewHinter(ollamaClient, cfg.Ollama, m)
	checker.Register("ollama", health.OptionalDependency(hinter.HealthCheck(ollamaClient.Ping)))

	var analysisCache *cache.Cache[analysis.Profile]
	var cacheAdmin apihandler.CacheAdmin
	checker.Register("redis", health.Disabled)
	if cfg.Redis.Enabled {
		redisClient, err := pkgredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, analysis caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			analysisCache = cache.New[analysis.Profile](redisClient, cfg.Redis.CacheTTL, m)
			cacheAdmin = analysisCache
			checker.Register("redis", health.OptionalDependency(redisClient.Ping))
			slog.Info("analysis cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	}

	aggregator := analytics.NewAggregator()
	var publisher analytics.Publisher = aggregator
	checker.Register("kafka", health.Disabled)
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka)
		defer producer.Close()
		publisher = producer

		consumer := kafka.NewConsumer(cfg.Kafka, aggregator.HandleMessage)
		defer consumer.Close()
		go func() {
			if err := consumer.Start(ctx); err != nil {
				slog.Error("analytics consumer error", "error", err)
			}
		}()
		checker.Register("kafka", health.OptionalDependency(func(ctx context.Context) error {
			return kafka.Ping(ctx, cfg.Kafka.Brokers)
		}))
		slog.Info("analytics streaming via kafka", "topic", cfg.Kafka.Topic, "brokers", cfg.Kafka.Brokers)
	}
	collector := analytics.NewCollector(publisher, cfg.Kafka.BufferSize, m)
	collector.Start(ctx)

	analyzer := analysis.New(analysis.Options{
		KeywordLimit: cfg.Analysis.KeywordLimit,
		LLMDefault:   cfg.Ollama.Enabled,
		Hinter:       hinter,
		Cache:        analysisCache,
		Tracker:      collector,
		Metrics:      m,
	})

	var limiter *ratelimit.Limiter
	if cfg.RateLimit.RequestsPerMinute > 0 {
		limiter = ratelimit.New(cfg.RateLimit.RequestsPerMinute, time.Minute)
		go limiter.RunCleanup(ctx, 5*time.Minute)
	}

	handler := router.New(router.Deps{
		Handler:   apihandler.New(analyzer, cacheAdmin, aggregator, cfg.Server.MaxBodyBytes),
		Health:    checker,
		Metrics:   m,
		Limiter:   limiter,
		CORS: apimw.CORSConfig{
			AllowOrigins:     cfg.CORS.AllowOrigins,
			AllowCredentials: cfg.CORS.AllowCredentials,
			MaxAge:           cfg.CORS.MaxAge,
		},
		RequestTimeout: cfg.Server.WriteTimeout,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("ai-tailor listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	<-shutdownDone
	collector.Close()

	slog.Info("ai-tailor stopped")
}
