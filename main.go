// main.go
// Панель мониторинга: читает поток транзакций и транслирует его в браузер
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/LilVoxy/transactions_dwh/routes"
	"github.com/LilVoxy/transactions_dwh/streaming"
	"github.com/LilVoxy/transactions_dwh/websocket"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

func main() {
	envPtr := flag.String("env", ".env", "Файл с переменными окружения")
	staticPtr := flag.String("static", "public", "Каталог со статическими файлами панели")
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

	hub := websocket.NewHub(logger.Named("hub"))
	go hub.Run(ctx)

	consumer := streaming.NewConsumer(
		broker,
		streaming.Codec{Compress: cfg.Compress},
		streaming.NewFraudDetector(cfg.FraudThreshold),
		logger.Named("consumer"),
	)
	consumer.OnEvent(func(event streaming.TransactionEvent, suspicious bool) {
		payload := dashboardEvent{TransactionEvent: event, Suspicious: suspicious}
		if err := hub.BroadcastEvent(ctx, websocket.MessageNewTransaction, payload); err != nil && ctx.Err() == nil {
			logger.Warn("Не удалось разослать событие", zap.Error(err))
		}
	})

	go func() {
		if err := consumer.Run(ctx); err != nil {
			logger.Error("Потребитель остановлен с ошибкой", zap.Error(err))
			cancel()
		}
	}()

	router := mux.NewRouter()
	routes.SetupRoutes(router, hub, consumer, *staticPtr, logger)

	server := &http.Server{
		Addr:         cfg.DashboardAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Панель мониторинга запущена", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Ошибка запуска сервера", zap.Error(err))
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("Получен сигнал завершения, закрываем соединения")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Ошибка остановки сервера", zap.Error(err))
	}

	stats := consumer.Stats()
	logger.Info("Сервер остановлен",
		zap.Int64("consumed", stats.Consumed),
		zap.Int64("fraud_alerts", stats.FraudAlerts),
	)
}

// dashboardEvent - событие в том виде, в котором его получает браузер
type dashboardEvent struct {
	streaming.TransactionEvent
	Suspicious bool `json:"suspicious"`
}
