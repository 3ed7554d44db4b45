package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/LilVoxy/transactions_dwh/ETL/load"
	"github.com/LilVoxy/transactions_dwh/ETL/models"
	"github.com/LilVoxy/transactions_dwh/ETL/transform"
	"github.com/caarlos0/env/v11"
	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
)

// Поддерживаемые драйверы реляционных хранилищ
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

// ETLConfig содержит конфигурацию для ETL-процесса
type ETLConfig struct {
	// Реляционный источник (customers, transactions)
	Source DatabaseConfig `envPrefix:"SOURCE_DB_"`

	// Хранилище (склад данных), схема которого пересоздается при каждом запуске
	Warehouse DatabaseConfig `envPrefix:"DWH_DB_"`

	// Хранилище документов со справочником продавцов
	DocumentStore DocumentStoreConfig `envPrefix:"MONGO_"`

	// Справочник продавцов для первичного заполнения пустой коллекции
	SeedMerchants []models.Merchant

	// Интервал запуска ETL в режиме scheduled
	RunInterval time.Duration `env:"ETL_RUN_INTERVAL" envDefault:"1h"`

	// Алгоритм хэширования фамилии и email
	HashAlgorithm string `env:"ETL_PII_HASH" envDefault:"sha256"`

	// Политика для фактов, которые не удалось связать с измерениями
	IntegrityPolicy string `env:"ETL_INTEGRITY_POLICY" envDefault:"fail_batch"`

	// Часовой пояс, в котором транзакция относится к календарному дню.
	// Пустое значение - день берется из смещения самой отметки времени.
	DateTimeZone string `env:"ETL_DATE_TIMEZONE"`

	// Окно анализа и горизонт прогноза тренда дневных сумм; 0 дней прогноза отключает расчет
	TrendAnalysisDays int `env:"ETL_TREND_ANALYSIS_DAYS" envDefault:"30"`
	TrendForecastDays int `env:"ETL_TREND_FORECAST_DAYS" envDefault:"7"`

	// Каталог файлов логов; пустое значение - только консоль
	LogDir string `env:"ETL_LOG_DIR" envDefault:"logs"`

	// Включение/отключение подробного логирования
	EnableDetailedLogging bool `env:"ETL_DETAILED_LOGGING" envDefault:"true"`
}

// DatabaseConfig содержит настройки подключения к реляционной базе данных
type DatabaseConfig struct {
	Driver   string `env:"DRIVER" envDefault:"postgres"`
	URL      string `env:"URL"` // готовая строка подключения, имеет приоритет над остальными полями
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     int    `env:"PORT"`
	User     string `env:"USER"`
	Password string `env:"PASSWORD"`
	DBName   string `env:"NAME"`
	SSLMode  string `env:"SSLMODE" envDefault:"disable"`
}

// DocumentStoreConfig содержит настройки подключения к MongoDB
type DocumentStoreConfig struct {
	URI        string `env:"URI"`
	Host       string `env:"HOST" envDefault:"localhost"`
	Port       int    `env:"PORT" envDefault:"27017"`
	User       string `env:"USER"`
	Password   string `env:"PASSWORD"`
	Database   string `env:"DB_NAME" envDefault:"reference"`
	Collection string `env:"COLLECTION" envDefault:"merchants"`
}

// DefaultSeedMerchants - фиксированный справочник продавцов для пустой коллекции
var DefaultSeedMerchants = []models.Merchant{
	{MerchantName: "GreenLeaf Grocers", Category: "Groceries"},
	{MerchantName: "The Daily Grind Coffee", Category: "Food & Beverage"},
	{MerchantName: "TechSphere Electronics", Category: "Electronics"},
}

// LoadConfig читает конфигурацию из .env файлов (если они есть) и переменных окружения
func LoadConfig(envFiles ...string) (ETLConfig, error) {
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return ETLConfig{}, fmt.Errorf("ошибка чтения файла окружения %s: %w", file, err)
		}
	}

	var cfg ETLConfig
	if err := env.Parse(&cfg); err != nil {
		return ETLConfig{}, fmt.Errorf("ошибка разбора переменных окружения: %w", err)
	}
	cfg.SeedMerchants = append([]models.Merchant(nil), DefaultSeedMerchants...)

	if err := cfg.Validate(); err != nil {
		return ETLConfig{}, err
	}
	return cfg, nil
}

// Validate проверяет согласованность конфигурации
func (c ETLConfig) Validate() error {
	if err := c.Source.validate("источника"); err != nil {
		return err
	}
	if err := c.Warehouse.validate("хранилища"); err != nil {
		return err
	}

	// Допустимые значения знают только сами компоненты
	if _, err := transform.NewPIIHasher(c.HashAlgorithm); err != nil {
		return err
	}
	if _, err := load.NewFactLoader(c.IntegrityPolicy, nil); err != nil {
		return err
	}

	if _, err := c.DateLocation(); err != nil {
		return err
	}
	if c.RunInterval <= 0 {
		return fmt.Errorf("интервал запуска должен быть положительным, получено %v", c.RunInterval)
	}
	if c.TrendForecastDays < 0 || (c.TrendForecastDays > 0 && c.TrendAnalysisDays < 2) {
		return fmt.Errorf("некорректные параметры тренда: анализ %d дн., прогноз %d дн.", c.TrendAnalysisDays, c.TrendForecastDays)
	}
	if c.DocumentStore.Collection == "" || c.DocumentStore.Database == "" {
		return fmt.Errorf("не указаны база данных или коллекция справочника продавцов")
	}
	return nil
}

// DateLocation возвращает часовой пояс для нормализации дат или nil
func (c ETLConfig) DateLocation() (*time.Location, error) {
	if c.DateTimeZone == "" {
		return nil, nil
	}
	loc, err := time.LoadLocation(c.DateTimeZone)
	if err != nil {
		return nil, fmt.Errorf("неизвестный часовой пояс %q: %w", c.DateTimeZone, err)
	}
	return loc, nil
}

func (c DatabaseConfig) validate(role string) error {
	switch c.Driver {
	case DriverPostgres, DriverMySQL, DriverSQLite:
	default:
		return fmt.Errorf("неподдерживаемый драйвер %s: %q", role, c.Driver)
	}
	if c.URL == "" && c.DBName == "" {
		return fmt.Errorf("не указано имя базы данных %s", role)
	}
	return nil
}

// ConnectionString строит строку подключения для драйвера
func (c DatabaseConfig) ConnectionString() string {
	if c.URL != "" {
		return c.URL
	}

	switch c.Driver {
	case DriverMySQL:
		mysqlCfg := mysql.NewConfig()
		mysqlCfg.User = c.User
		mysqlCfg.Passwd = c.Password
		mysqlCfg.Net = "tcp"
		mysqlCfg.Addr = net.JoinHostPort(c.Host, strconv.Itoa(c.portOrDefault()))
		mysqlCfg.DBName = c.DBName
		mysqlCfg.ParseTime = true
		return mysqlCfg.FormatDSN()
	case DriverSQLite:
		return c.DBName + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	default:
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(c.User, c.Password),
			Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.portOrDefault())),
			Path:     "/" + c.DBName,
			RawQuery: "sslmode=" + url.QueryEscape(c.SSLMode),
		}
		return u.String()
	}
}

func (c DatabaseConfig) portOrDefault() int {
	if c.Port != 0 {
		return c.Port
	}
	if c.Driver == DriverMySQL {
		return 3306
	}
	return 5432
}

// ConnectionString строит URI подключения к MongoDB
func (c DocumentStoreConfig) ConnectionString() string {
	if c.URI != "" {
		return c.URI
	}
	u := url.URL{
		Scheme: "mongodb",
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:   "/",
	}
	if c.User != "" {
		u.User = url.UserPassword(c.User, c.Password)
	}
	return u.String()
}

// Redacted возвращает строку подключения без пароля, для логов
func (c DatabaseConfig) Redacted() string {
	connection := c.ConnectionString()
	switch c.Driver {
	case DriverSQLite:
		return connection
	case DriverMySQL:
		if cfg, err := mysql.ParseDSN(connection); err == nil && cfg.Passwd != "" {
			cfg.Passwd = "xxxxx"
			return cfg.FormatDSN()
		}
		return connection
	default:
		if u, err := url.Parse(connection); err == nil {
			return u.Redacted()
		}
		return connection
	}
}
