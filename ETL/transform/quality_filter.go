package transform

import (
	"github.com/LilVoxy/transactions_dwh/ETL/models"
)

// FilterValidAmounts оставляет транзакции с суммой строго больше нуля.
// Отсутствующая сумма считается неположительной. Возвращает число отброшенных строк.
func FilterValidAmounts(transactions []models.Transaction) ([]models.Transaction, int) {
	valid := make([]models.Transaction, 0, len(transactions))
	for _, tx := range transactions {
		if tx.Amount.Valid && tx.Amount.Decimal.IsPositive() {
			valid = append(valid, tx)
		}
	}
	return valid, len(transactions) - len(valid)
}
