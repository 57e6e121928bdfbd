package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Pesokrava/product_reviews/internal/config"
	"github.com/Pesokrava/product_reviews/internal/delivery/events"
	"github.com/Pesokrava/product_reviews/internal/pkg/logger"
)

// The moderation notifier tails review events and logs the ones a moderator should act on.
// Replicas share cfg.Notifier.Queue, so each event is reported once.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.New(cfg.Env, logger.WithLevel(cfg.LogLevel)).WithFields(map[string]any{
		"service": cfg.Notifier.ClientName,
	})

	consumer, err := events.NewConsumer(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to create NATS consumer", err)
	}
	defer consumer.Close()

	handler := events.ModerationHandler(appLogger)
	if err := consumer.QueueSubscribe(events.Subject, cfg.Notifier.Queue, handler); err != nil {
		appLogger.Fatalf(err, "Failed to join queue %s on %s", cfg.Notifier.Queue, events.Subject)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appLogger.Infof("Watching %s for reviews that need moderation", events.Subject)
	<-ctx.Done()

	appLogger.Info("Draining moderation notifier...")
}
