package extractors

import (
	"context"
	"fmt"

	"github.com/LilVoxy/transactions_dwh/ETL/models"
	"github.com/LilVoxy/transactions_dwh/ETL/utils"
	"github.com/jmoiron/sqlx"
)

const customersQuery = `
	SELECT customer_id,
	       COALESCE(first_name, '') AS first_name,
	       COALESCE(last_name, '') AS last_name,
	       COALESCE(email, '') AS email
	FROM customers
`

// CustomerExtractor извлекает клиентов из источника
type CustomerExtractor struct {
	db     sqlx.QueryerContext
	logger *utils.ETLLogger
}

// NewCustomerExtractor создает новый экземпляр CustomerExtractor
func NewCustomerExtractor(db sqlx.QueryerContext, logger *utils.ETLLogger) *CustomerExtractor {
	return &CustomerExtractor{
		db:     db,
		logger: logger,
	}
}

// ExtractCustomers извлекает всех клиентов без фильтрации
func (e *CustomerExtractor) ExtractCustomers(ctx context.Context) ([]models.Customer, error) {
	e.logger.Debug("Начало извлечения клиентов")

	var customers []models.Customer
	if err := sqlx.SelectContext(ctx, e.db, &customers, customersQuery); err != nil {
		return nil, fmt.Errorf("ошибка запроса клиентов: %w", err)
	}

	e.logger.Debug("Извлечено %d клиентов", len(customers))
	return customers, nil
}
