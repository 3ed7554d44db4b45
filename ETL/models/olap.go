package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DimCustomer представляет измерение клиентов в хранилище.
// Вместо фамилии и email хранятся только их необратимые хэши.
type DimCustomer struct {
	CustomerKey  int64  `db:"customer_key"`
	CustomerID   int64  `db:"customer_id"`
	FirstName    string `db:"first_name"`
	LastNameHash string `db:"last_name_hash"`
	EmailHash    string `db:"email_hash"`
}

// DimMerchant представляет измерение продавцов в хранилище
type DimMerchant struct {
	MerchantKey  int64  `db:"merchant_key"`
	MerchantName string `db:"merchant_name"`
	Category     string `db:"category"`
}

// DimDate представляет календарное измерение. DateKey имеет формат YYYYMMDD.
type DimDate struct {
	DateKey   int       `db:"date_key"`
	FullDate  time.Time `db:"full_date"`
	DayOfWeek int       `db:"day_of_week"` // 0=Monday, 6=Sunday
	DayName   string    `db:"day_name"`
	Month     int       `db:"month"`
	MonthName string    `db:"month_name"`
	Year      int       `db:"year"`
}

// StagedFact - факт транзакции после Transform, еще с натуральными ключами
type StagedFact struct {
	TransactionID string
	CustomerID    int64
	MerchantName  string
	DateKey       int
	Amount        decimal.Decimal
}

// FactTransaction - факт транзакции с суррогатными ключами измерений
type FactTransaction struct {
	TransactionID string          `db:"transaction_id"`
	CustomerKey   int64           `db:"customer_key"`
	MerchantKey   int64           `db:"merchant_key"`
	DateKey       int             `db:"date_key"`
	Amount        decimal.Decimal `db:"amount"`
}
