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
	"inventory/inventory-service/internal/app/inventory/repository"
	"inventory/inventory-service/internal/app/inventory/service"
	"inventory/inventory-service/internal/app/inventory/util"
	"inventory/pkg/logger"
)

const serviceName = "inventory-service"

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
		} else {
			logger.Info().Str("logstash_addr", cfg.Logstash).Msg("Connected to Logstash")
		}
	}

	// === MongoDB ===
	mongoClient, err := repository.ConnectMongoDB(cfg.MongoDB.URI)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(ctx); err != nil {
			logger.Error().Err(err).Msg("Error disconnecting from MongoDB")
		}
	}()
	logger.Info().Str("database", cfg.MongoDB.Database).Msg("Connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDB.Database)

	indexCtx, cancelIndexes := context.WithTimeout(context.Background(), 30*time.Second)
	if err := repository.EnsureIndexes(indexCtx, db); err != nil {
		logger.Fatal().Err(err).Msg("Failed to ensure sku index")
	}
	cancelIndexes()

	productRepo := repository.NewProductRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	// === Redis (optional) ===
	var brandCache service.BrandCache
	redisClient, err := util.NewRedisClient(cfg.Redis.Address(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Warn().Err(err).Msg("Redis unavailable, brand list is served without cache")
	} else {
		defer redisClient.Close()
		brandCache = util.NewBrandCache(redisClient, cfg.Redis.BrandsTTL)
		logger.Info().Str("address", cfg.Redis.Address()).Msg("Connected to Redis")
	}

	// === Kafka (optional) ===
	var publisher service.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaProducer := util.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer kafkaProducer.Close()
		publisher = kafkaProducer
		logger.Info().Str("topic", cfg.Kafka.Topic).Msg("Initialized Kafka producer")
	} else {
		logger.Warn().Msg("KAFKA_BROKERS is empty, product events are not published")
	}

	// === Background tasks ===
	dispatcher := util.NewDispatcher(cfg.Dispatcher.Workers, cfg.Dispatcher.QueueSize)
	dispatcher.Start()

	statsService := service.NewStatsService(productRepo, statsRepo, dispatcher)
	activityService := service.NewActivityService(activityRepo, dispatcher, cfg.Location)
	productService := service.NewProductService(productRepo, brandCache, activityService, statsService, dispatcher, publisher)
	exportService := service.NewExportService(productRepo, activityRepo, cfg.Location)

	statsService.Bootstrap()

	authMiddleware := handler.NewAuthMiddleware(cfg.JWT.Secret)
	router := handler.SetupRoutes(handler.Handlers{
		Product:   handler.NewProductHandler(productService),
		Dashboard: handler.NewDashboardHandler(statsService),
		Activity:  handler.NewActivityHandler(activityService),
		Export:    handler.NewExportHandler(exportService),
	}, authMiddleware, cfg.JWT.AdminRoles, cfg.CORS.AllowedOrigins)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute, // exports stream the whole collection
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("address", cfg.Server.Address()).Msg("Starting Inventory Service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down Inventory Service...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	// requests are done; let queued activity logs and recomputes finish
	if err := dispatcher.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Int("pending", dispatcher.Pending()).Msg("Background tasks did not finish")
	}

	logger.Info().Msg("Inventory Service stopped gracefully")
}
