package trend

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Таблица прогнозов не входит в звездную схему и хранит только последний прогноз
const forecastDDL = `
CREATE TABLE IF NOT EXISTS spend_forecast (
	forecast_date DATE NOT NULL PRIMARY KEY,
	forecast_value DECIMAL(14, 2) NOT NULL,
	ci_lower DECIMAL(14, 2) NOT NULL,
	ci_upper DECIMAL(14, 2) NOT NULL,
	slope DOUBLE PRECISION NOT NULL,
	intercept DOUBLE PRECISION NOT NULL,
	r2 DOUBLE PRECISION NOT NULL,
	period_start DATE NOT NULL,
	period_end DATE NOT NULL
)`

// ForecastRepository сохраняет прогнозы в хранилище
type ForecastRepository struct {
	db *sqlx.DB
}

// NewForecastRepository создает новый репозиторий прогнозов
func NewForecastRepository(db *sqlx.DB) *ForecastRepository {
	return &ForecastRepository{db: db}
}

// EnsureTableExists создает таблицу прогнозов при необходимости
func (r *ForecastRepository) EnsureTableExists(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, forecastDDL); err != nil {
		return fmt.Errorf("ошибка при создании таблицы spend_forecast: %w", err)
	}
	return nil
}

// ReplaceForecasts заменяет предыдущий прогноз новым в одной транзакции
func (r *ForecastRepository) ReplaceForecasts(ctx context.Context, result RegressionResult, forecasts []ForecastPoint) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("не удалось начать транзакцию: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM spend_forecast"); err != nil {
		return fmt.Errorf("ошибка при удалении прежнего прогноза: %w", err)
	}

	query := tx.Rebind(`
	INSERT INTO spend_forecast
		(forecast_date, forecast_value, ci_lower, ci_upper, slope, intercept, r2, period_start, period_end)
	VALUES
		(?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	for _, f := range forecasts {
		_, err := tx.ExecContext(ctx, query,
			f.Date.Format("2006-01-02"),
			f.ForecastValue,
			f.CILower,
			f.CIUpper,
			result.A,
			result.B,
			result.R2,
			result.PeriodStart.Format("2006-01-02"),
			result.PeriodEnd.Format("2006-01-02"),
		)
		if err != nil {
			return fmt.Errorf("ошибка при сохранении прогноза на %s: %w", f.Date.Format("2006-01-02"), err)
		}
	}

	return tx.Commit()
}

// CountForecasts возвращает число сохраненных прогнозов
func (r *ForecastRepository) CountForecasts(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM spend_forecast"); err != nil {
		return 0, fmt.Errorf("ошибка при подсчете прогнозов: %w", err)
	}
	return count, nil
}
