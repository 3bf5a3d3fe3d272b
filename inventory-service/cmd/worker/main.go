package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inventory/inventory-service/internal/app/inventory/config"
	"inventory/inventory-service/internal/app/inventory/handler"
	"inventory/inventory-service/internal/app/inventory/processor"
	"inventory/inventory-service/internal/app/inventory/repository"
	"inventory/inventory-service/internal/app/inventory/service"
	"inventory/inventory-service/internal/app/inventory/util"
	"inventory/pkg/logger"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const serviceName = "inventory-stats-worker"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(serviceName, cfg.LogLevel)
	if cfg.Logstash != "" {
		if err := logger.InitLogstash(cfg.Logstash, serviceName, cfg.LogLevel); err != nil {
			logger.Warn().Err(err).Msg("Failed to connect to Logstash, using stdout only")
		}
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// === MongoDB ===
	mongoClient, err := repository.ConnectMongoDB(cfg.MongoDB.URI)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(disconnectCtx); err != nil {
			logger.Error().Err(err).Msg("Error disconnecting from MongoDB")
		}
	}()

	db := mongoClient.Database(cfg.MongoDB.Database)
	productRepo := repository.NewProductRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	// a single worker: recomputes are full scans and coalesce anyway
	dispatcher := util.NewDispatcher(1, cfg.Dispatcher.QueueSize)
	dispatcher.Start()

	statsService := service.NewStatsService(productRepo, statsRepo, dispatcher)

	// === Kafka consumer ===
	kafkaConsumer := processor.NewKafkaConsumer(
		cfg.Kafka.Brokers,
		cfg.Kafka.Topic,
		cfg.Kafka.GroupID,
		cfg.Kafka.MinBytes,
		cfg.Kafka.MaxBytes,
		statsService,
	)
	kafkaConsumer.Start(ctx)

	// === Cron repair ===
	cronScheduler := processor.NewCronScheduler(statsService)
	if err := cronScheduler.Start(ctx, cfg.Stats.CronSchedule); err != nil {
		logger.Fatal().Err(err).Str("schedule", cfg.Stats.CronSchedule).Msg("Failed to start cron scheduler")
	}

	// === Health and metrics ===
	pingDB := func(ctx context.Context) error {
		return mongoClient.Ping(ctx, readpref.Primary())
	}
	healthHandler := handler.NewHealthCheckHandler(pingDB, statsRepo, cfg.Stats.StaleAfter)

	mux := http.NewServeMux()
	healthHandler.RegisterRoutes(mux)
	mux.Handle("/metrics", promhttp.Handler())

	httpServer := &http.Server{
		Addr:              cfg.Worker.HealthAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("address", cfg.Worker.HealthAddr).Msg("Starting health and metrics server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("Health server error")
		}
	}()

	logger.Info().
		Str("topic", cfg.Kafka.Topic).
		Str("group", cfg.Kafka.GroupID).
		Str("schedule", cfg.Stats.CronSchedule).
		Msg("Stats worker is running")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down stats worker...")

	kafkaConsumer.Stop()
	cronScheduler.Stop()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := dispatcher.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Pending recompute did not finish")
	}
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Health server forced to shutdown")
	}

	logger.Info().Msg("Stats worker stopped gracefully")
}
