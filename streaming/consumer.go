package streaming

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"
)

// EventHandler получает каждое успешно декодированное событие
type EventHandler func(event TransactionEvent, suspicious bool)

// ConsumerStats - счетчики потребителя
type ConsumerStats struct {
	Consumed     int64 `json:"consumed"`
	FraudAlerts  int64 `json:"fraud_alerts"`
	DecodeErrors int64 `json:"decode_errors"`
}

// Consumer читает поток транзакций и поднимает тревогу по подозрительным
type Consumer struct {
	subscriber Subscriber
	codec      Codec
	detector   *FraudDetector
	handlers   []EventHandler
	logger     *zap.Logger

	consumed     atomic.Int64
	fraudAlerts  atomic.Int64
	decodeErrors atomic.Int64
}

// NewConsumer создает потребителя
func NewConsumer(subscriber Subscriber, codec Codec, detector *FraudDetector, logger *zap.Logger) *Consumer {
	return &Consumer{
		subscriber: subscriber,
		codec:      codec,
		detector:   detector,
		logger:     logger,
	}
}

// OnEvent добавляет обработчик событий. Вызывать до Run.
func (c *Consumer) OnEvent(handler EventHandler) {
	c.handlers = append(c.handlers, handler)
}

// Run обрабатывает сообщения до отмены контекста.
// Неразборчивое сообщение логируется и пропускается.
func (c *Consumer) Run(ctx context.Context) error {
	messages, err := c.subscriber.Subscribe(ctx)
	if err != nil {
		return err
	}
	c.logger.Info("Подписка оформлена, ожидаем транзакции")

	for payload := range messages {
		c.handle(payload)
	}
	return nil
}

func (c *Consumer) handle(payload []byte) {
	event, err := c.codec.Decode(payload)
	if err != nil {
		c.decodeErrors.Add(1)
		c.logger.Error("Не удалось декодировать сообщение", zap.Error(err), zap.ByteString("payload", payload))
		return
	}
	c.consumed.Add(1)

	fields := []zap.Field{
		zap.String("transaction_id", event.TransactionID),
		zap.Int64("customer_id", event.CustomerID),
		zap.String("merchant_name", event.MerchantName),
		zap.String("amount", event.Amount.StringFixed(2)),
	}
	c.logger.Info("Получена транзакция", fields...)

	suspicious := c.detector.IsSuspicious(event)
	if suspicious {
		c.fraudAlerts.Add(1)
		c.logger.Warn("[!!! FRAUD ALERT !!!] Транзакция с крупной суммой", fields...)
	}

	for _, handler := range c.handlers {
		handler(event, suspicious)
	}
}

// Stats возвращает текущие счетчики
func (c *Consumer) Stats() ConsumerStats {
	return ConsumerStats{
		Consumed:     c.consumed.Load(),
		FraudAlerts:  c.fraudAlerts.Load(),
		DecodeErrors: c.decodeErrors.Load(),
	}
}
