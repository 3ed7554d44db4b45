package transform

import (
	"time"

	"github.com/LilVoxy/transactions_dwh/ETL/etlerr"
	"github.com/LilVoxy/transactions_dwh/ETL/models"
)

// TransactionFactsProcessor готовит факты транзакций с натуральными ключами измерений
type TransactionFactsProcessor struct {
	normalizer *DateNormalizer
}

// NewTransactionFactsProcessor создает новый экземпляр TransactionFactsProcessor
func NewTransactionFactsProcessor(normalizer *DateNormalizer) *TransactionFactsProcessor {
	return &TransactionFactsProcessor{normalizer: normalizer}
}

// ProcessTransactionFacts присваивает каждой транзакции date_key и возвращает
// крайние даты для календаря. Отсутствующая или неразборчивая дата - фатальная ошибка.
func (p *TransactionFactsProcessor) ProcessTransactionFacts(transactions []models.Transaction) ([]models.StagedFact, time.Time, time.Time, error) {
	facts := make([]models.StagedFact, 0, len(transactions))
	var minDate, maxDate time.Time

	for _, tx := range transactions {
		if !tx.TransactionDate.Valid {
			return nil, time.Time{}, time.Time{}, etlerr.Newf(etlerr.KindTransformIntegrity, etlerr.StageTransform,
				"у транзакции %s отсутствует дата", tx.TransactionID)
		}
		date, err := p.normalizer.Normalize(tx.TransactionDate.String)
		if err != nil {
			return nil, time.Time{}, time.Time{}, etlerr.Wrap(etlerr.KindTransformIntegrity, etlerr.StageTransform,
				"невалидная дата транзакции "+tx.TransactionID, err)
		}

		if minDate.IsZero() || date.Before(minDate) {
			minDate = date
		}
		if date.After(maxDate) {
			maxDate = date
		}

		facts = append(facts, models.StagedFact{
			TransactionID: tx.TransactionID,
			CustomerID:    tx.CustomerID,
			MerchantName:  tx.MerchantName,
			DateKey:       DateKey(date),
			Amount:        tx.Amount.Decimal,
		})
	}

	return facts, minDate, maxDate, nil
}
