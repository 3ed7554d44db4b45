package transform

import (
	"github.com/LilVoxy/transactions_dwh/ETL/models"
	"github.com/LilVoxy/transactions_dwh/ETL/utils"
)

// CustomerDimensionProcessor строит измерение клиентов
type CustomerDimensionProcessor struct {
	hasher *PIIHasher
	logger *utils.ETLLogger
}

// NewCustomerDimensionProcessor создает новый экземпляр CustomerDimensionProcessor
func NewCustomerDimensionProcessor(hasher *PIIHasher, logger *utils.ETLLogger) *CustomerDimensionProcessor {
	return &CustomerDimensionProcessor{
		hasher: hasher,
		logger: logger,
	}
}

// ProcessCustomerDimension хэширует фамилию и email и оставляет одну строку
// на customer_id (первая встреченная). Возвращает число отброшенных дубликатов.
func (p *CustomerDimensionProcessor) ProcessCustomerDimension(customers []models.Customer) ([]models.DimCustomer, int) {
	seen := make(map[int64]struct{}, len(customers))
	dims := make([]models.DimCustomer, 0, len(customers))

	for _, c := range customers {
		if _, ok := seen[c.CustomerID]; ok {
			p.logger.Debug("Пропущен дубликат клиента %d", c.CustomerID)
			continue
		}
		seen[c.CustomerID] = struct{}{}

		dims = append(dims, models.DimCustomer{
			CustomerID:   c.CustomerID,
			FirstName:    c.FirstName,
			LastNameHash: p.hasher.Hash(c.LastName),
			EmailHash:    p.hasher.Hash(c.Email),
		})
	}

	return dims, len(customers) - len(dims)
}
