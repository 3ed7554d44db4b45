package streaming

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionEvent - транзакция, публикуемая в поток в реальном времени
type TransactionEvent struct {
	TransactionID string          `json:"transaction_id"`
	CustomerID    int64           `json:"customer_id"`
	Amount        decimal.Decimal `json:"amount"`
	MerchantName  string          `json:"merchant_name"`
	// Unix-время в секундах с дробной частью
	Timestamp float64 `json:"timestamp"`
}

// Time возвращает отметку времени события
func (e TransactionEvent) Time() time.Time {
	sec := int64(e.Timestamp)
	nsec := int64((e.Timestamp - float64(sec)) * float64(time.Second))
	return time.Unix(sec, nsec).UTC()
}
