package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Customer представляет клиента в исходной OLTP базе данных
type Customer struct {
	CustomerID int64  `db:"customer_id"`
	FirstName  string `db:"first_name"`
	LastName   string `db:"last_name"`
	Email      string `db:"email"`
}

// Transaction представляет транзакцию в исходной OLTP базе данных.
// Сумма и дата читаются "как есть": проверка и разбор выполняются на фазе Transform.
type Transaction struct {
	TransactionID   string              `db:"transaction_id"`
	CustomerID      int64               `db:"customer_id"`
	MerchantName    string              `db:"merchant_name"`
	Amount          decimal.NullDecimal `db:"amount"`
	TransactionDate SourceTimestamp     `db:"transaction_date"`
}

// Формат, в котором отметка времени без часового пояса передается нормализатору
const naiveTimestampLayout = "2006-01-02 15:04:05.999999999"

// SourceTimestamp - отметка времени транзакции в текстовом виде.
// Драйверы (lib/pq, mysql с parseTime) отдают колонки без часового пояса
// как time.Time в UTC; такие значения записываются без смещения, как и
// текстовые, чтобы день определялся одинаково при любом драйвере.
// Ненулевое смещение сохраняется.
type SourceTimestamp struct {
	String string
	Valid  bool
}

// NewSourceTimestamp создает заполненное значение
func NewSourceTimestamp(value string) SourceTimestamp {
	return SourceTimestamp{String: value, Valid: true}
}

// Scan реализует sql.Scanner
func (t *SourceTimestamp) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*t = SourceTimestamp{}
	case string:
		*t = NewSourceTimestamp(v)
	case []byte:
		*t = NewSourceTimestamp(string(v))
	case time.Time:
		if _, offset := v.Zone(); offset == 0 {
			*t = NewSourceTimestamp(v.Format(naiveTimestampLayout))
		} else {
			*t = NewSourceTimestamp(v.Format(time.RFC3339Nano))
		}
	default:
		return fmt.Errorf("неподдерживаемый тип отметки времени %T", value)
	}
	return nil
}

// Merchant представляет справочный документ продавца в хранилище документов
type Merchant struct {
	MerchantName string `bson:"merchant_name" db:"merchant_name" json:"merchant_name"`
	Category     string `bson:"category" db:"category" json:"category"`
}

// ExtractedData содержит данные, извлечённые из источников
type ExtractedData struct {
	Customers       []Customer
	Transactions    []Transaction
	Merchants       []Merchant
	MerchantsSeeded bool
	ExtractedAt     time.Time
}
