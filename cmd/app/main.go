package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dkrylova/aftersale/config"
	"github.com/dkrylova/aftersale/internal/bootstrap"
	"github.com/dkrylova/aftersale/internal/cache"
	"github.com/dkrylova/aftersale/internal/kafka"
	"github.com/dkrylova/aftersale/internal/repository"
	"github.com/dkrylova/aftersale/internal/service/application"
	"github.com/dkrylova/aftersale/internal/service/consistency"
	"github.com/dkrylova/aftersale/internal/service/oplog"
	"github.com/dkrylova/aftersale/internal/service/policy"
	"github.com/jackc/pgx/v5/pgxpool"
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

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Locks.PolicyCacheTTLSec)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	store := repository.NewStore(pool)
	resolver := policy.NewResolver(store.Policies(), redisCache)
	updater := consistency.NewUpdater()
	recorder := oplog.NewRecorder(store.OperationLogs())

	appService := application.NewService(
		store,
		store,
		redisCache,
		resolver,
		updater,
		recorder,
		producer,
		cfg.Kafka.ApplicationsTopic,
		cfg.Fees.ServiceFeeCents,
		time.Duration(cfg.Locks.SubmitTTLSeconds)*time.Second,
		application.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)

	if err := bootstrap.Run(ctx, cfg, appService); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
