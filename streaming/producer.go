package streaming

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Producer публикует сгенерированные транзакции со случайными паузами
type Producer struct {
	publisher Publisher
	codec     Codec
	generator *Generator
	minDelay  time.Duration
	maxDelay  time.Duration
	logger    *zap.Logger
}

// NewProducer создает производителя
func NewProducer(publisher Publisher, codec Codec, generator *Generator, minDelay, maxDelay time.Duration, logger *zap.Logger) *Producer {
	return &Producer{
		publisher: publisher,
		codec:     codec,
		generator: generator,
		minDelay:  minDelay,
		maxDelay:  maxDelay,
		logger:    logger,
	}
}

// ProduceOne генерирует и публикует одно событие
func (p *Producer) ProduceOne(ctx context.Context) (TransactionEvent, error) {
	event := p.generator.Next()

	payload, err := p.codec.Encode(event)
	if err != nil {
		return TransactionEvent{}, err
	}
	if err := p.publisher.Publish(ctx, payload); err != nil {
		return TransactionEvent{}, err
	}

	p.logger.Info("Опубликована транзакция",
		zap.String("transaction_id", event.TransactionID),
		zap.Int64("customer_id", event.CustomerID),
		zap.String("merchant_name", event.MerchantName),
		zap.String("amount", event.Amount.StringFixed(2)),
	)
	return event, nil
}

// Run публикует события до отмены контекста. Ошибка публикации прерывает работу.
func (p *Producer) Run(ctx context.Context) error {
	for {
		if _, err := p.ProduceOne(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		timer := time.NewTimer(p.generator.Delay(p.minDelay, p.maxDelay))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}
