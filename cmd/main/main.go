package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"vapelux/internal/api"
	"vapelux/internal/cache"
	"vapelux/internal/cart"
	"vapelux/internal/checkout"
	"vapelux/internal/config"
	"vapelux/internal/database"
	"vapelux/internal/kafka"
	"vapelux/internal/kvstore"
	"vapelux/internal/metrics"
	"vapelux/internal/tracing"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Ошибка инициализации логгера: %v", err)
	}
	defer logger.Sync()

	cfg := config.Get()
	metrics.Init()

	shutdownTracer := tracing.InitTracerProvider("vapelux", cfg.Jaeger.URL)
	defer shutdownTracer()

	// Архив заказов
	storage, err := database.New(cfg.Postgres.URL, "./internal/database/migrations")
	if err != nil {
		logger.Fatal("ошибка инициализации хранилища", zap.Error(err))
	}
	defer storage.Close()

	// Кэш заказов с прогревом из БД
	orderCache := cache.NewLRUCache(cfg.Cache.Size)
	if err := cache.WarmUp(context.Background(), storage, orderCache, logger); err != nil {
		logger.Warn("ошибка при прогреве кэша", zap.Error(err))
	}

	// Локальное хранилище корзин и флагов витрины
	kv, err := kvstore.NewFile(cfg.Storage.Path)
	if err != nil {
		logger.Fatal("ошибка инициализации хранилища витрины", zap.Error(err))
	}
	carts := cart.NewManager(kv, logger)

	// Оформление заказов через Kafka
	producer := kafka.NewProducer(cfg.Kafka, logger)
	defer producer.Close()
	checkoutSvc := checkout.NewService(producer, logger)

	consumer := kafka.NewConsumer(cfg.Kafka, storage, orderCache, logger)
	server := api.NewServer(cfg.HTTP.Port, carts, checkoutSvc, storage, orderCache, kv, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		consumer.Run(gCtx)
		return nil
	})
	g.Go(func() error {
		return server.Run(gCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("сервис завершился с ошибкой", zap.Error(err))
	}
	logger.Info("сервис остановлен")
}
