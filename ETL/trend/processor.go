package trend

import (
	"context"
	"fmt"
	"time"

	"github.com/LilVoxy/transactions_dwh/ETL/utils"
	"github.com/jmoiron/sqlx"
)

// Config - параметры расчета тренда
type Config struct {
	// Количество дней для анализа
	AnalysisPeriodDays int
	// Количество дней для прогноза
	ForecastDays int
	// Уровень доверия (0.90, 0.95, 0.99)
	ConfidenceLevel float64
	// Минимальное значение R² для признания модели значимой
	MinR2Threshold float64
}

// DefaultConfig возвращает конфигурацию по умолчанию
func DefaultConfig() Config {
	return Config{
		AnalysisPeriodDays: 30,
		ForecastDays:       7,
		ConfidenceLevel:    0.95,
		MinR2Threshold:     0.30,
	}
}

// Processor строит тренд дневных сумм транзакций и сохраняет прогноз
type Processor struct {
	dataService *DataService
	repository  *ForecastRepository
	logger      *utils.ETLLogger
	config      Config
}

// NewProcessor создает процессор поверх хранилища
func NewProcessor(db *sqlx.DB, logger *utils.ETLLogger, config Config) *Processor {
	return &Processor{
		dataService: NewDataService(db),
		repository:  NewForecastRepository(db),
		logger:      logger,
		config:      config,
	}
}

// Process читает дневные суммы, строит модель и заменяет сохраненный прогноз
func (p *Processor) Process(ctx context.Context) ([]ForecastPoint, error) {
	startTime := time.Now()
	p.logger.Info("Расчет тренда дневных сумм транзакций")

	if err := p.repository.EnsureTableExists(ctx); err != nil {
		return nil, err
	}

	points, err := p.dataService.GetDailyTotals(ctx, p.config.AnalysisPeriodDays)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении данных: %w", err)
	}
	p.logger.Debug("Получено %d точек данных для анализа", len(points))

	result, err := LinearRegression(points)
	if err != nil {
		return nil, fmt.Errorf("ошибка при построении модели: %w", err)
	}

	p.logger.Info("Тренд: наклон=%.2f, сдвиг=%.2f, R²=%.3f, период %s - %s",
		result.A, result.B, result.R2,
		result.PeriodStart.Format("2006-01-02"),
		result.PeriodEnd.Format("2006-01-02"))
	if result.R2 < p.config.MinR2Threshold {
		p.logger.Warn("Низкое качество модели (R²=%.3f < %.2f), прогноз ориентировочный", result.R2, p.config.MinR2Threshold)
	}

	forecasts := GenerateForecasts(result, p.config.ForecastDays, p.config.ConfidenceLevel)
	if err := p.repository.ReplaceForecasts(ctx, *result, forecasts); err != nil {
		return nil, err
	}

	p.logger.Info("Сохранено %d прогнозов. Время выполнения: %v", len(forecasts), time.Since(startTime))
	return forecasts, nil
}
