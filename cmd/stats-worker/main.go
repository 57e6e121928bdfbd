package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/Pesokrava/product_reviews/internal/config"
	"github.com/Pesokrava/product_reviews/internal/delivery/events"
	"github.com/Pesokrava/product_reviews/internal/pkg/cache"
	"github.com/Pesokrava/product_reviews/internal/pkg/database"
	"github.com/Pesokrava/product_reviews/internal/pkg/logger"
	cacheRepo "github.com/Pesokrava/product_reviews/internal/repository/cache"
	"github.com/Pesokrava/product_reviews/internal/repository/postgres"
	"github.com/Pesokrava/product_reviews/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.New(cfg.Env, logger.WithLevel(cfg.LogLevel))
	appLogger.Info("Starting stats worker...")

	appLogger.Info("Connecting to PostgreSQL...")
	db, err := database.WaitForDB(cfg, 10, 2*time.Second, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", err)
	}
	defer db.Close()
	appLogger.Info("Connected to database")

	appLogger.Info("Connecting to Redis...")
	redisClient, err := cache.WaitForRedis(cfg, 10, 2*time.Second, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", err)
	}
	defer redisClient.Close()

	redisCache := cacheRepo.NewRedisCache(redisClient, cfg.Cache.ProductReviewsTTL, cfg.Cache.StatsTTL)
	calculator := worker.NewCalculator(postgres.NewStatsRepository(db), redisCache, appLogger)
	statsWorker := worker.NewStatsWorker(calculator, cfg.Worker.DebounceWindow, appLogger)

	appLogger.Info("Connecting to NATS JetStream...")
	nc, err := nats.Connect(cfg.NATS.URL, nats.Name("product-reviews-stats-worker"))
	if err != nil {
		appLogger.Fatal("Failed to connect to NATS", err)
	}
	defer nc.Close()

	js, err := nc.JetStream()
	if err != nil {
		appLogger.Fatal("Failed to create JetStream context", err)
	}

	appLogger.WithFields(map[string]any{
		"url": cfg.NATS.URL,
	}).Info("Connected to NATS JetStream")

	streamConfig := events.NewStreamConfig(js, appLogger)
	if err := streamConfig.EnsureStream(); err != nil {
		appLogger.Fatal("Failed to ensure stream", err)
	}
	if err := streamConfig.EnsureConsumer(); err != nil {
		appLogger.Fatal("Failed to ensure consumer", err)
	}

	sub, err := js.PullSubscribe(events.Subject, events.ConsumerName, nats.ManualAck())
	if err != nil {
		appLogger.Fatal("Failed to subscribe to JetStream consumer", err)
	}
	defer func() {
		if err := sub.Unsubscribe(); err != nil {
			appLogger.Error("Failed to unsubscribe from JetStream", err)
		}
	}()

	appLogger.WithFields(map[string]any{
		"stream":   events.StreamName,
		"consumer": events.ConsumerName,
	}).Info("Subscribed to JetStream consumer")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		worker.Consume(ctx, sub, cfg.Worker.FetchBatch, statsWorker.HandleEvent, appLogger)
	}()

	<-ctx.Done()
	appLogger.Info("Received shutdown signal")
	<-done

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := statsWorker.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Error during shutdown", err)
	}

	appLogger.Info("Stats worker stopped")
}
