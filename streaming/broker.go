package streaming

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Publisher публикует сообщения в канал
type Publisher interface {
	Publish(ctx context.Context, payload []byte) error
}

// Subscriber доставляет сообщения канала до отмены контекста
type Subscriber interface {
	Subscribe(ctx context.Context) (<-chan []byte, error)
}

// RedisBroker - pub/sub поверх Redis
type RedisBroker struct {
	client  *redis.Client
	channel string
}

// NewRedisBroker подключается к Redis и проверяет соединение
func NewRedisBroker(ctx context.Context, cfg Config) (*RedisBroker, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("не удалось подключиться к Redis %s: %w", cfg.RedisAddr(), err)
	}

	return &RedisBroker{client: client, channel: cfg.Channel}, nil
}

// Publish публикует сообщение в канал
func (b *RedisBroker) Publish(ctx context.Context, payload []byte) error {
	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("ошибка публикации в канал %s: %w", b.channel, err)
	}
	return nil
}

// Subscribe подписывается на канал. Возвращаемый канал закрывается после отмены ctx.
func (b *RedisBroker) Subscribe(ctx context.Context) (<-chan []byte, error) {
	pubsub := b.client.Subscribe(ctx, b.channel)

	// Дожидаемся подтверждения подписки
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("ошибка подписки на канал %s: %w", b.channel, err)
	}

	messages := pubsub.Channel()
	out := make(chan []byte)

	go func() {
		defer close(out)
		defer pubsub.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				select {
				case out <- []byte(msg.Payload):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// Close закрывает подключение к Redis
func (b *RedisBroker) Close() error {
	return b.client.Close()
}
