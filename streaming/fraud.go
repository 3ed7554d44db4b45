package streaming

import "github.com/shopspring/decimal"

// DefaultFraudThreshold - сумма, выше которой транзакция считается подозрительной
var DefaultFraudThreshold = decimal.RequireFromString("3000.00")

// FraudDetector помечает транзакции с суммой строго выше порога
type FraudDetector struct {
	threshold decimal.Decimal
}

// NewFraudDetector создает детектор с порогом threshold
func NewFraudDetector(threshold decimal.Decimal) *FraudDetector {
	return &FraudDetector{threshold: threshold}
}

// IsSuspicious сообщает, нужно ли поднимать тревогу по событию
func (d *FraudDetector) IsSuspicious(event TransactionEvent) bool {
	return event.Amount.GreaterThan(d.threshold)
}
