package streaming

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultMerchants - продавцы генератора. GlobalMart отсутствует в справочнике.
var DefaultMerchants = []string{
	"GreenLeaf Grocers",
	"The Daily Grind Coffee",
	"TechSphere Electronics",
	"GlobalMart",
}

// Generator создает правдоподобные случайные транзакции
type Generator struct {
	rng       *rand.Rand
	merchants []string
	customers int64
	now       func() time.Time
}

// NewGenerator создает генератор с заданным зерном
func NewGenerator(seed int64) *Generator {
	return &Generator{
		rng:       rand.New(rand.NewSource(seed)),
		merchants: DefaultMerchants,
		customers: 3,
		now:       time.Now,
	}
}

// Next возвращает следующую транзакцию: клиент 1..3, сумма 5.00..5000.00
func (g *Generator) Next() TransactionEvent {
	now := g.now()
	amount := 5.0 + g.rng.Float64()*(5000.0-5.0)

	return TransactionEvent{
		TransactionID: fmt.Sprintf("txn_%d_%d", now.Unix(), 1000+g.rng.Intn(9000)),
		CustomerID:    1 + g.rng.Int63n(g.customers),
		Amount:        decimal.NewFromFloat(amount).Round(2),
		MerchantName:  g.merchants[g.rng.Intn(len(g.merchants))],
		Timestamp:     float64(now.UnixNano()) / float64(time.Second),
	}
}

// Delay возвращает случайную паузу из [min, max]
func (g *Generator) Delay(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(g.rng.Int63n(int64(max-min)+1))
}
