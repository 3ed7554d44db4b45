package load

import (
	"context"
	"fmt"

	"github.com/LilVoxy/transactions_dwh/ETL/models"
	"github.com/LilVoxy/transactions_dwh/ETL/utils"
)

// DimensionLoader загружает измерения. Суррогатные ключи клиентов и продавцов
// назначает хранилище, ключ даты вычисляется при трансформации.
type DimensionLoader struct {
	logger *utils.ETLLogger
}

// NewDimensionLoader создает новый экземпляр DimensionLoader
func NewDimensionLoader(logger *utils.ETLLogger) *DimensionLoader {
	return &DimensionLoader{logger: logger}
}

// LoadCustomers загружает измерение клиентов
func (l *DimensionLoader) LoadCustomers(ctx context.Context, tx WarehouseTx, customers []models.DimCustomer) error {
	rows := make([][]any, 0, len(customers))
	for _, c := range customers {
		rows = append(rows, []any{c.CustomerID, c.FirstName, c.LastNameHash, c.EmailHash})
	}

	if err := tx.BulkInsert(ctx, TableDimCustomer,
		[]string{"customer_id", "first_name", "last_name_hash", "email_hash"}, rows); err != nil {
		return fmt.Errorf("ошибка при загрузке измерения клиентов: %w", err)
	}
	l.logger.Debug("Загружено %d клиентов", len(rows))
	return nil
}

// LoadMerchants загружает измерение продавцов
func (l *DimensionLoader) LoadMerchants(ctx context.Context, tx WarehouseTx, merchants []models.DimMerchant) error {
	rows := make([][]any, 0, len(merchants))
	for _, m := range merchants {
		rows = append(rows, []any{m.MerchantName, m.Category})
	}

	if err := tx.BulkInsert(ctx, TableDimMerchant, []string{"merchant_name", "category"}, rows); err != nil {
		return fmt.Errorf("ошибка при загрузке измерения продавцов: %w", err)
	}
	l.logger.Debug("Загружено %d продавцов", len(rows))
	return nil
}

// LoadDates загружает календарное измерение
func (l *DimensionLoader) LoadDates(ctx context.Context, tx WarehouseTx, dates []models.DimDate) error {
	rows := make([][]any, 0, len(dates))
	for _, d := range dates {
		rows = append(rows, []any{
			d.DateKey,
			d.FullDate.Format("2006-01-02"),
			d.DayOfWeek,
			d.DayName,
			d.Month,
			d.MonthName,
			d.Year,
		})
	}

	if err := tx.BulkInsert(ctx, TableDimDate,
		[]string{"date_key", "full_date", "day_of_week", "day_name", "month", "month_name", "year"}, rows); err != nil {
		return fmt.Errorf("ошибка при загрузке измерения дат: %w", err)
	}
	l.logger.Debug("Загружено %d дат", len(rows))
	return nil
}
