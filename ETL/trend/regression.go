package trend

import (
	"fmt"
	"math"
)

// RoundToCents округляет значение до сотых
func RoundToCents(value float64) float64 {
	return math.Round(value*100) / 100
}

// LinearRegression строит линию тренда методом наименьших квадратов
func LinearRegression(points []DataPoint) (*RegressionResult, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("для расчета тренда требуется минимум 2 точки, получено: %d", len(points))
	}

	minDate, maxDate := points[0].Date, points[0].Date
	n := float64(len(points))
	var sumX, sumY, sumXY, sumX2, sumY2 float64

	for _, p := range points {
		if p.Date.Before(minDate) {
			minDate = p.Date
		}
		if p.Date.After(maxDate) {
			maxDate = p.Date
		}
		sumX += p.X
		sumY += p.Y
		sumXY += p.X * p.Y
		sumX2 += p.X * p.X
		sumY2 += p.Y * p.Y
	}

	// a = (n*Σxy - Σx*Σy) / (n*Σx² - (Σx)²), b = (Σy - a*Σx) / n
	denominator := n*sumX2 - sumX*sumX
	if math.Abs(denominator) < 1e-10 {
		return nil, fmt.Errorf("все X одинаковы, невозможно вычислить наклон")
	}
	a := (n*sumXY - sumX*sumY) / denominator
	b := (sumY - a*sumX) / n

	var r float64
	if spread := math.Sqrt(denominator * (n*sumY2 - sumY*sumY)); spread >= 1e-10 {
		r = (n*sumXY - sumX*sumY) / spread
	}

	return &RegressionResult{
		A:           a,
		B:           b,
		R:           r,
		R2:          r * r,
		PeriodStart: minDate,
		PeriodEnd:   maxDate,
		DataPoints:  points,
	}, nil
}

// Predict возвращает значение тренда для x
func Predict(result *RegressionResult, x float64) float64 {
	return result.A*x + result.B
}

// tStatistic - приближенное значение t-статистики для уровня доверия
func tStatistic(confidenceLevel float64) float64 {
	switch {
	case confidenceLevel >= 0.99:
		return 2.58
	case confidenceLevel <= 0.90:
		return 1.64
	default:
		return 1.96
	}
}

// ConfidenceInterval вычисляет интервал прогноза для x
func ConfidenceInterval(result *RegressionResult, x float64, confidenceLevel float64) (float64, float64) {
	n := float64(len(result.DataPoints))
	predicted := Predict(result, x)
	if n < 3 {
		return predicted, predicted
	}

	meanX := 0.0
	for _, p := range result.DataPoints {
		meanX += p.X
	}
	meanX /= n

	var sumSqDevX, sumSqResiduals float64
	for _, p := range result.DataPoints {
		residual := p.Y - Predict(result, p.X)
		sumSqDevX += (p.X - meanX) * (p.X - meanX)
		sumSqResiduals += residual * residual
	}

	standardError := math.Sqrt(sumSqResiduals / (n - 2))
	predictionError := standardError * math.Sqrt(1+1/n+(x-meanX)*(x-meanX)/sumSqDevX)
	margin := tStatistic(confidenceLevel) * predictionError

	return predicted - margin, predicted + margin
}

// GenerateForecasts строит прогноз на daysAhead дней после конца периода.
// Суммы транзакций не бывают отрицательными, поэтому значения ограничены снизу нулем.
func GenerateForecasts(result *RegressionResult, daysAhead int, confidenceLevel float64) []ForecastPoint {
	maxX := 0.0
	for _, p := range result.DataPoints {
		if p.X > maxX {
			maxX = p.X
		}
	}

	forecasts := make([]ForecastPoint, 0, daysAhead)
	for i := 1; i <= daysAhead; i++ {
		x := maxX + float64(i)
		lower, upper := ConfidenceInterval(result, x, confidenceLevel)

		forecasts = append(forecasts, ForecastPoint{
			Date:          result.PeriodEnd.AddDate(0, 0, i),
			ForecastValue: RoundToCents(math.Max(0, Predict(result, x))),
			CILower:       RoundToCents(math.Max(0, lower)),
			CIUpper:       RoundToCents(math.Max(0, upper)),
		})
	}
	return forecasts
}
