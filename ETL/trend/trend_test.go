package trend

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/LilVoxy/transactions_dwh/ETL/load"
	"github.com/LilVoxy/transactions_dwh/ETL/utils"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func TestLinearRegressionExactLine(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	var points []DataPoint
	for i := 0; i < 5; i++ {
		x := float64(i)
		points = append(points, DataPoint{X: x, Y: 2*x + 10, Date: start.AddDate(0, 0, i)})
	}

	result, err := LinearRegression(points)
	require.NoError(t, err)
	require.InDelta(t, 2.0, result.A, 1e-9)
	require.InDelta(t, 10.0, result.B, 1e-9)
	require.InDelta(t, 1.0, result.R2, 1e-9)
	require.Equal(t, start, result.PeriodStart)
	require.Equal(t, start.AddDate(0, 0, 4), result.PeriodEnd)

	forecasts := GenerateForecasts(result, 2, 0.95)
	require.Len(t, forecasts, 2)
	require.Equal(t, start.AddDate(0, 0, 5), forecasts[0].Date)
	require.InDelta(t, 20.0, forecasts[0].ForecastValue, 1e-9)
	require.InDelta(t, 22.0, forecasts[1].ForecastValue, 1e-9)
	require.InDelta(t, forecasts[1].ForecastValue, forecasts[1].CILower, 1e-6)
}

func TestLinearRegressionRejectsDegenerateInput(t *testing.T) {
	_, err := LinearRegression([]DataPoint{{X: 0, Y: 1}})
	require.Error(t, err)

	_, err = LinearRegression([]DataPoint{{X: 1, Y: 1}, {X: 1, Y: 2}})
	require.Error(t, err)
}

func TestForecastIsNeverNegative(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	points := []DataPoint{
		{X: 0, Y: 300, Date: start},
		{X: 1, Y: 150, Date: start.AddDate(0, 0, 1)},
		{X: 2, Y: 20, Date: start.AddDate(0, 0, 2)},
	}
	result, err := LinearRegression(points)
	require.NoError(t, err)

	for _, f := range GenerateForecasts(result, 5, 0.99) {
		require.GreaterOrEqual(t, f.ForecastValue, 0.0)
		require.GreaterOrEqual(t, f.CILower, 0.0)
		require.GreaterOrEqual(t, f.CIUpper, f.CILower)
	}
}

func TestProcessorOverWarehouse(t *testing.T) {
	ctx := context.Background()
	db, err := sqlx.Open("sqlite", filepath.Join(t.TempDir(), "dwh.db"))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	defer db.Close()

	for _, stmt := range load.SQLiteDialect.ResetSchema() {
		db.MustExec(stmt)
	}
	db.MustExec(`INSERT INTO dim_customer (customer_id, first_name, last_name_hash, email_hash) VALUES (1, 'Anna', 'x', 'y')`)
	db.MustExec(`INSERT INTO dim_merchant (merchant_name, category) VALUES ('GreenLeaf Grocers', 'Groceries')`)
	db.MustExec(`INSERT INTO dim_date VALUES
		(20240301, '2024-03-01', 4, 'Friday', 3, 'March', 2024),
		(20240302, '2024-03-02', 5, 'Saturday', 3, 'March', 2024),
		(20240303, '2024-03-03', 6, 'Sunday', 3, 'March', 2024)`)
	db.MustExec(`INSERT INTO fact_transactions VALUES
		('t1', 1, 1, 20240301, 100.00),
		('t2', 1, 1, 20240301, 20.00),
		('t3', 1, 1, 20240303, 160.00)`)

	processor := NewProcessor(db, utils.NewNopLogger(), Config{AnalysisPeriodDays: 30, ForecastDays: 3, ConfidenceLevel: 0.95})

	points, err := processor.dataService.GetDailyTotals(ctx, 30)
	require.NoError(t, err)
	require.Len(t, points, 3)
	require.InDelta(t, 120.0, points[0].Y, 1e-9)
	require.InDelta(t, 0.0, points[1].Y, 1e-9)
	require.InDelta(t, 2.0, points[2].X, 1e-9)

	forecasts, err := processor.Process(ctx)
	require.NoError(t, err)
	require.Len(t, forecasts, 3)

	// Повторный расчет заменяет прогноз, а не дописывает
	_, err = processor.Process(ctx)
	require.NoError(t, err)
	count, err := processor.repository.CountForecasts(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, count)
}
