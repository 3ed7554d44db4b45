package load

import (
	"context"
	"fmt"

	"github.com/LilVoxy/transactions_dwh/ETL/etlerr"
	"github.com/LilVoxy/transactions_dwh/ETL/models"
	"github.com/LilVoxy/transactions_dwh/ETL/utils"
)

// Политики обработки фактов, которые не удалось связать с измерениями
const (
	// PolicyFailBatch - любая неразрешенная ссылка откатывает загрузку фактов целиком
	PolicyFailBatch = "fail_batch"

	// PolicyRejectRows - неразрешенные факты пропускаются и подсчитываются
	PolicyRejectRows = "reject_rows"
)

// Сколько неразрешенных фактов перечислять в логе
const maxLoggedRejects = 10

type customerKeyRow struct {
	CustomerKey int64 `db:"customer_key"`
	CustomerID  int64 `db:"customer_id"`
}

type merchantKeyRow struct {
	MerchantKey  int64  `db:"merchant_key"`
	MerchantName string `db:"merchant_name"`
}

// FactLoader связывает факты с суррогатными ключами и загружает их
type FactLoader struct {
	policy string
	logger *utils.ETLLogger
}

// NewFactLoader создает новый экземпляр FactLoader
func NewFactLoader(policy string, logger *utils.ETLLogger) (*FactLoader, error) {
	switch policy {
	case PolicyFailBatch, PolicyRejectRows:
	case "":
		policy = PolicyFailBatch
	default:
		return nil, fmt.Errorf("неизвестная политика ссылочной целостности: %q", policy)
	}
	return &FactLoader{policy: policy, logger: logger}, nil
}

// keyLookup - соответствие натуральных ключей суррогатным
type keyLookup struct {
	customers map[int64]int64
	merchants map[string]int64
	dates     map[int]struct{}
}

func (l *FactLoader) readLookups(ctx context.Context, tx WarehouseTx) (*keyLookup, error) {
	var customers []customerKeyRow
	if err := tx.Select(ctx, &customers, "SELECT customer_key, customer_id FROM "+TableDimCustomer); err != nil {
		return nil, fmt.Errorf("ошибка чтения ключей клиентов: %w", err)
	}

	var merchants []merchantKeyRow
	if err := tx.Select(ctx, &merchants, "SELECT merchant_key, merchant_name FROM "+TableDimMerchant); err != nil {
		return nil, fmt.Errorf("ошибка чтения ключей продавцов: %w", err)
	}

	var dates []int
	if err := tx.Select(ctx, &dates, "SELECT date_key FROM "+TableDimDate); err != nil {
		return nil, fmt.Errorf("ошибка чтения ключей дат: %w", err)
	}

	lookup := &keyLookup{
		customers: make(map[int64]int64, len(customers)),
		merchants: make(map[string]int64, len(merchants)),
		dates:     make(map[int]struct{}, len(dates)),
	}
	for _, c := range customers {
		lookup.customers[c.CustomerID] = c.CustomerKey
	}
	for _, m := range merchants {
		lookup.merchants[m.MerchantName] = m.MerchantKey
	}
	for _, d := range dates {
		lookup.dates[d] = struct{}{}
	}
	return lookup, nil
}

// resolve возвращает факт с суррогатными ключами или описание неразрешенной ссылки
func (k *keyLookup) resolve(staged models.StagedFact) (models.FactTransaction, string) {
	customerKey, ok := k.customers[staged.CustomerID]
	if !ok {
		return models.FactTransaction{}, fmt.Sprintf("клиент %d", staged.CustomerID)
	}
	merchantKey, ok := k.merchants[staged.MerchantName]
	if !ok {
		return models.FactTransaction{}, fmt.Sprintf("продавец %q", staged.MerchantName)
	}
	if _, ok := k.dates[staged.DateKey]; !ok {
		return models.FactTransaction{}, fmt.Sprintf("дата %d", staged.DateKey)
	}

	return models.FactTransaction{
		TransactionID: staged.TransactionID,
		CustomerKey:   customerKey,
		MerchantKey:   merchantKey,
		DateKey:       staged.DateKey,
		Amount:        staged.Amount,
	}, ""
}

// LoadFacts читает ключи измерений, связывает факты и вставляет связанные.
// Возвращает число загруженных и отклоненных фактов.
func (l *FactLoader) LoadFacts(ctx context.Context, tx WarehouseTx, staged []models.StagedFact) (int, int, error) {
	lookup, err := l.readLookups(ctx, tx)
	if err != nil {
		return 0, 0, err
	}

	facts := make([]models.FactTransaction, 0, len(staged))
	var unresolved []string
	for _, s := range staged {
		fact, missing := lookup.resolve(s)
		if missing != "" {
			unresolved = append(unresolved, fmt.Sprintf("транзакция %s: не найден %s", s.TransactionID, missing))
			continue
		}
		facts = append(facts, fact)
	}

	if len(unresolved) > 0 {
		for i, reason := range unresolved {
			if i == maxLoggedRejects {
				l.logger.Warn("... и еще %d", len(unresolved)-maxLoggedRejects)
				break
			}
			l.logger.Warn("Неразрешенная ссылка: %s", reason)
		}

		if l.policy == PolicyFailBatch {
			return 0, 0, etlerr.Newf(etlerr.KindReferentialIntegrity, etlerr.StageLoad,
				"не удалось связать с измерениями %d фактов, первый: %s", len(unresolved), unresolved[0])
		}
		l.logger.Warn("Отклонено фактов с неразрешенными ссылками: %d", len(unresolved))
	}

	rows := make([][]any, 0, len(facts))
	for _, f := range facts {
		rows = append(rows, []any{f.TransactionID, f.CustomerKey, f.MerchantKey, f.DateKey, f.Amount})
	}
	if err := tx.BulkInsert(ctx, TableFactTransactions,
		[]string{"transaction_id", "customer_key", "merchant_key", "date_key", "amount"}, rows); err != nil {
		return 0, 0, fmt.Errorf("ошибка при загрузке фактов транзакций: %w", err)
	}

	return len(facts), len(unresolved), nil
}
