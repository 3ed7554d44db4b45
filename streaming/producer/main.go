// Производитель публикует сгенерированные транзакции в канал Redis
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/LilVoxy/transactions_dwh/streaming"
	"go.uber.org/zap"
)

func main() {
	envPtr := flag.String("env", ".env", "Файл с переменными окружения")
	seedPtr := flag.Int64("seed", time.Now().UnixNano(), "Зерно генератора транзакций")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Ошибка инициализации логгера: %v", err)
	}
	defer logger.Sync()

	cfg, err := streaming.LoadConfig(*envPtr)
	if err != nil {
		logger.Fatal("Ошибка загрузки конфигурации", zap.Error(err))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	broker, err := streaming.NewRedisBroker(ctx, cfg)
	if err != nil {
		logger.Fatal("Ошибка подключения к брокеру", zap.Error(err))
	}
	defer broker.Close()

	producer := streaming.NewProducer(
		broker,
		streaming.Codec{Compress: cfg.Compress},
		streaming.NewGenerator(*seedPtr),
		cfg.ProducerMinDelay,
		cfg.ProducerMaxDelay,
		logger,
	)

	logger.Info("Производитель запущен",
		zap.String("redis", cfg.RedisAddr()),
		zap.String("channel", cfg.Channel),
		zap.Bool("compress", cfg.Compress),
	)
	if err := producer.Run(ctx); err != nil {
		logger.Error("Производитель остановлен с ошибкой", zap.Error(err))
		return
	}
	logger.Info("Производитель остановлен")
}
