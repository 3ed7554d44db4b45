package extractors

import (
	"context"
	"fmt"

	"github.com/LilVoxy/transactions_dwh/ETL/models"
	"github.com/LilVoxy/transactions_dwh/ETL/utils"
	"github.com/jmoiron/sqlx"
)

// Столбец merchant_details источника переименовывается в merchant_name
const transactionsQuery = `
	SELECT transaction_id,
	       customer_id,
	       COALESCE(merchant_details, '') AS merchant_name,
	       amount,
	       transaction_date
	FROM transactions
`

// TransactionExtractor извлекает транзакции из источника
type TransactionExtractor struct {
	db     sqlx.QueryerContext
	logger *utils.ETLLogger
}

// NewTransactionExtractor создает новый экземпляр TransactionExtractor
func NewTransactionExtractor(db sqlx.QueryerContext, logger *utils.ETLLogger) *TransactionExtractor {
	return &TransactionExtractor{
		db:     db,
		logger: logger,
	}
}

// ExtractTransactions извлекает все транзакции. Суммы и даты не проверяются.
func (e *TransactionExtractor) ExtractTransactions(ctx context.Context) ([]models.Transaction, error) {
	e.logger.Debug("Начало извлечения транзакций")

	rows, err := e.db.QueryxContext(ctx, transactionsQuery)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса транзакций: %w", err)
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		var tx models.Transaction
		if err := rows.StructScan(&tx); err != nil {
			return nil, fmt.Errorf("ошибка обработки транзакции: %w", err)
		}
		transactions = append(transactions, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка после итерации по транзакциям: %w", err)
	}

	e.logger.Debug("Извлечено %d транзакций", len(transactions))
	return transactions, nil
}
