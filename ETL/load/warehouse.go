package load

import "context"

// Warehouse - хранилище, в которое загружается звездная схема
type Warehouse interface {
	BeginTx(ctx context.Context) (WarehouseTx, error)
}

// WarehouseTx - транзакция хранилища. Все операции одной границы фиксации
// выполняются в одной транзакции.
type WarehouseTx interface {
	// ExecDDL выполняет операторы DDL по порядку
	ExecDDL(ctx context.Context, statements ...string) error

	// BulkInsert вставляет строки пакетами
	BulkInsert(ctx context.Context, table string, columns []string, rows [][]any) error

	// Select выполняет запрос с плейсхолдерами "?" и сканирует результат в dest
	Select(ctx context.Context, dest any, query string, args ...any) error

	Commit() error
	Rollback() error
}

// withTx выполняет fn в транзакции. Транзакция всегда освобождается:
// при ошибке или панике fn она откатывается.
func withTx(ctx context.Context, warehouse Warehouse, fn func(tx WarehouseTx) error) (err error) {
	tx, err := warehouse.BeginTx(ctx)
	if err != nil {
		return err
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
