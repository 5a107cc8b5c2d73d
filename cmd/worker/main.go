package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dkrylova/aftersale/config"
	"github.com/dkrylova/aftersale/internal/email"
	"github.com/dkrylova/aftersale/internal/kafka"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	sender := email.NewSender()

	log.Printf("notification worker consuming %s", cfg.Kafka.NotificationsTopic)
	err = consumer.Consume(ctx, func(ctx context.Context, event kafka.ApplicationEvent) error {
		if err := sender.Send(ctx, event); err != nil {
			log.Printf("WARNING: failed to notify %s for application %s: %v", event.ContactEmail, event.AppNo, err)
		}
		return nil
	})
	if err != nil && ctx.Err() == nil {
		log.Fatalf("consumer error: %v", err)
	}
}
