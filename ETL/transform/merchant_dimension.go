package transform

import (
	"github.com/LilVoxy/transactions_dwh/ETL/models"
	"github.com/LilVoxy/transactions_dwh/ETL/utils"
)

// MerchantDimensionProcessor строит измерение продавцов
type MerchantDimensionProcessor struct {
	logger *utils.ETLLogger
}

// NewMerchantDimensionProcessor создает новый экземпляр MerchantDimensionProcessor
func NewMerchantDimensionProcessor(logger *utils.ETLLogger) *MerchantDimensionProcessor {
	return &MerchantDimensionProcessor{logger: logger}
}

// ProcessMerchantDimension оставляет по одной строке на merchant_name (первая встреченная).
// Дубликаты с другой категорией логируются как конфликт.
func (p *MerchantDimensionProcessor) ProcessMerchantDimension(merchants []models.Merchant) ([]models.DimMerchant, int) {
	categories := make(map[string]string, len(merchants))
	dims := make([]models.DimMerchant, 0, len(merchants))
	conflicts := 0

	for _, m := range merchants {
		if category, ok := categories[m.MerchantName]; ok {
			if category != m.Category {
				conflicts++
				p.logger.Warn("Продавец %q встречается с разными категориями: %q и %q, оставлена первая",
					m.MerchantName, category, m.Category)
			}
			continue
		}
		categories[m.MerchantName] = m.Category

		dims = append(dims, models.DimMerchant{
			MerchantName: m.MerchantName,
			Category:     m.Category,
		})
	}

	if conflicts > 0 {
		p.logger.Warn("Конфликтующих категорий продавцов: %d", conflicts)
	}
	return dims, len(merchants) - len(dims)
}
