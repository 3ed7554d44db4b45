package extractors

import (
	"context"
	"fmt"

	"github.com/LilVoxy/transactions_dwh/ETL/models"
	"github.com/LilVoxy/transactions_dwh/ETL/utils"
)

// MerchantExtractor читает справочник продавцов из хранилища документов
type MerchantExtractor struct {
	store  MerchantStore
	seed   []models.Merchant
	logger *utils.ETLLogger
}

// NewMerchantExtractor создает новый экземпляр MerchantExtractor
func NewMerchantExtractor(store MerchantStore, seed []models.Merchant, logger *utils.ETLLogger) *MerchantExtractor {
	return &MerchantExtractor{
		store:  store,
		seed:   seed,
		logger: logger,
	}
}

// ExtractMerchants возвращает все документы продавцов. Пустая коллекция
// сначала заполняется фиксированным справочником; непустая не изменяется.
func (e *MerchantExtractor) ExtractMerchants(ctx context.Context) ([]models.Merchant, bool, error) {
	count, err := e.store.CountMerchants(ctx)
	if err != nil {
		return nil, false, err
	}

	seeded := false
	if count == 0 && len(e.seed) > 0 {
		e.logger.Info("Коллекция продавцов пуста, добавляем %d справочных записей", len(e.seed))
		if err := e.store.InsertMerchants(ctx, e.seed); err != nil {
			return nil, false, fmt.Errorf("ошибка заполнения справочника продавцов: %w", err)
		}
		seeded = true
	}

	merchants, err := e.store.FindMerchants(ctx)
	if err != nil {
		return nil, false, err
	}

	e.logger.Debug("Извлечено %d продавцов", len(merchants))
	return merchants, seeded, nil
}
