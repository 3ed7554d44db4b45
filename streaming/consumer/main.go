// Потребитель читает поток транзакций и поднимает тревогу по крупным суммам
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/LilVoxy/transactions_dwh/streaming"
	"go.uber.org/zap"
)

func main() {
	envPtr := flag.String("env", ".env", "Файл с переменными окружения")
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

	consumer := streaming.NewConsumer(
		broker,
		streaming.Codec{Compress: cfg.Compress},
		streaming.NewFraudDetector(cfg.FraudThreshold),
		logger,
	)

	logger.Info("Потребитель запущен",
		zap.String("redis", cfg.RedisAddr()),
		zap.String("channel", cfg.Channel),
		zap.String("fraud_threshold", cfg.FraudThreshold.StringFixed(2)),
	)
	if err := consumer.Run(ctx); err != nil {
		logger.Error("Потребитель остановлен с ошибкой", zap.Error(err))
		return
	}

	stats := consumer.Stats()
	logger.Info("Потребитель остановлен",
		zap.Int64("consumed", stats.Consumed),
		zap.Int64("fraud_alerts", stats.FraudAlerts),
		zap.Int64("decode_errors", stats.DecodeErrors),
	)
}
