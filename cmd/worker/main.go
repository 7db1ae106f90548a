package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/q6kkhvmy6s/rsvp/config"
	"github.com/q6kkhvmy6s/rsvp/internal/consumer"
	"github.com/q6kkhvmy6s/rsvp/pkg/database"
	"github.com/q6kkhvmy6s/rsvp/pkg/logger"
	"github.com/q6kkhvmy6s/rsvp/pkg/rabbitmq"
	"go.uber.org/zap"
)

const queueName = "rsvp.user-cleanup"

func main() {
	cfg := config.Load()
	if err := logger.Init(cfg.Env); err != nil {
		panic(err)
	}
	defer logger.Sync()

	if cfg.RabbitURL == "" {
		logger.Log.Fatal("RABBITMQ_URL is required for the worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := database.OpenStore(ctx, cfg)
	if err != nil {
		logger.Log.Fatal("failed to open store", zap.Error(err))
	}
	defer closeStore()

	mq, err := rabbitmq.NewConsumer(cfg.RabbitURL, queueName, "user.*")
	if err != nil {
		logger.Log.Fatal("failed to connect to RabbitMQ", zap.Error(err))
	}

	msgs, err := mq.Consume()
	if err != nil {
		logger.Log.Fatal("failed to start consuming", zap.Error(err))
	}

	done := consumer.NewUserConsumer(store.Events).Start(context.WithoutCancel(ctx), msgs)
	logger.Log.Info("worker started", zap.String("queue", queueName))

	select {
	case <-ctx.Done():
		logger.Log.Info("shutting down")
		if err := mq.Close(); err != nil {
			logger.Log.Warn("close consumer", zap.Error(err))
		}
		<-done
	case <-done:
		logger.Log.Warn("delivery channel closed by broker")
		_ = mq.Close()
	}
}
