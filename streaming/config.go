package streaming

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// DefaultChannel - канал Redis для потока транзакций
const DefaultChannel = "financial_transactions"

// Config содержит настройки потоковой части
type Config struct {
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	Channel string `env:"STREAM_CHANNEL" envDefault:"financial_transactions"`

	// Сжатие сообщений snappy; производитель и потребители должны совпадать
	Compress bool `env:"STREAM_COMPRESS" envDefault:"false"`

	// Транзакции строго больше порога считаются подозрительными
	FraudThreshold decimal.Decimal `env:"FRAUD_THRESHOLD" envDefault:"3000.00"`

	// Пауза производителя между событиями выбирается случайно из [min, max]
	ProducerMinDelay time.Duration `env:"PRODUCER_MIN_DELAY" envDefault:"500ms"`
	ProducerMaxDelay time.Duration `env:"PRODUCER_MAX_DELAY" envDefault:"3s"`

	// Адрес HTTP-сервера панели мониторинга
	DashboardAddr string `env:"DASHBOARD_ADDR" envDefault:":5001"`
}

// LoadConfig читает .env файлы (если они есть) и переменные окружения
func LoadConfig(envFiles ...string) (Config, error) {
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("ошибка чтения файла окружения %s: %w", file, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("ошибка разбора переменных окружения: %w", err)
	}
	if cfg.ProducerMinDelay > cfg.ProducerMaxDelay {
		return Config{}, fmt.Errorf("PRODUCER_MIN_DELAY (%v) больше PRODUCER_MAX_DELAY (%v)", cfg.ProducerMinDelay, cfg.ProducerMaxDelay)
	}
	if cfg.Channel == "" {
		return Config{}, fmt.Errorf("не указан канал потока транзакций")
	}
	return cfg, nil
}

// RedisAddr возвращает адрес Redis в формате host:port
func (c Config) RedisAddr() string {
	return net.JoinHostPort(c.RedisHost, strconv.Itoa(c.RedisPort))
}
