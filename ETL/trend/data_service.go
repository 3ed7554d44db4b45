package trend

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/LilVoxy/transactions_dwh/ETL/transform"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// Дни без транзакций попадают в выборку с нулевой суммой: календарь непрерывный
const dailyTotalsQuery = `
	SELECT d.date_key, COALESCE(SUM(f.amount), 0) AS total
	FROM dim_date d
	LEFT JOIN fact_transactions f ON f.date_key = d.date_key
	WHERE d.date_key >= ?
	GROUP BY d.date_key
	ORDER BY d.date_key`

type dailyTotalRow struct {
	DateKey int             `db:"date_key"`
	Total   decimal.Decimal `db:"total"`
}

// DataService читает дневные суммы транзакций из хранилища
type DataService struct {
	db *sqlx.DB
}

// NewDataService создает новый сервис для работы с данными
func NewDataService(db *sqlx.DB) *DataService {
	return &DataService{db: db}
}

// GetDailyTotals возвращает суммы транзакций за последние daysBack дней календаря
func (s *DataService) GetDailyTotals(ctx context.Context, daysBack int) ([]DataPoint, error) {
	var lastKey sql.NullInt64
	if err := s.db.GetContext(ctx, &lastKey, "SELECT MAX(date_key) FROM dim_date"); err != nil {
		return nil, fmt.Errorf("ошибка при определении последней даты: %w", err)
	}
	if !lastKey.Valid {
		return nil, fmt.Errorf("календарное измерение пусто")
	}

	lastDate := transform.DateFromKey(int(lastKey.Int64))
	firstKey := transform.DateKey(lastDate.AddDate(0, 0, -(daysBack - 1)))

	var rows []dailyTotalRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(dailyTotalsQuery), firstKey); err != nil {
		return nil, fmt.Errorf("ошибка при чтении дневных сумм: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("нет данных о транзакциях за последние %d дней", daysBack)
	}

	baseDate := transform.DateFromKey(rows[0].DateKey)
	points := make([]DataPoint, 0, len(rows))
	for _, row := range rows {
		date := transform.DateFromKey(row.DateKey)
		points = append(points, DataPoint{
			X:    date.Sub(baseDate).Hours() / 24,
			Y:    row.Total.InexactFloat64(),
			Date: date,
		})
	}
	return points, nil
}
