package trend

import "time"

// DataPoint - сумма транзакций за один день
type DataPoint struct {
	X    float64   // порядковый номер дня от начала периода
	Y    float64   // сумма транзакций за день
	Date time.Time // календарная дата
}

// RegressionResult содержит коэффициенты линии тренда y = A*x + B
type RegressionResult struct {
	A           float64 // наклон
	B           float64 // сдвиг
	R           float64 // коэффициент корреляции Пирсона
	R2          float64 // коэффициент детерминации
	PeriodStart time.Time
	PeriodEnd   time.Time
	DataPoints  []DataPoint
}

// ForecastPoint - прогноз суммы транзакций на день
type ForecastPoint struct {
	Date          time.Time `db:"forecast_date"`
	ForecastValue float64   `db:"forecast_value"`
	CILower       float64   `db:"ci_lower"`
	CIUpper       float64   `db:"ci_upper"`
}
