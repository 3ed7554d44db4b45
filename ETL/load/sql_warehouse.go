package load

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// DefaultBatchSize - число строк в одном многострочном INSERT
const DefaultBatchSize = 500

// SQLWarehouse - хранилище поверх реляционной базы данных
type SQLWarehouse struct {
	db        *sqlx.DB
	dialect   Dialect
	batchSize int
}

// NewSQLWarehouse создает хранилище поверх подключения db
func NewSQLWarehouse(db *sqlx.DB, dialect Dialect) *SQLWarehouse {
	return &SQLWarehouse{
		db:        db,
		dialect:   dialect,
		batchSize: DefaultBatchSize,
	}
}

// Dialect возвращает диалект хранилища
func (w *SQLWarehouse) Dialect() Dialect {
	return w.dialect
}

// BeginTx начинает транзакцию хранилища
func (w *SQLWarehouse) BeginTx(ctx context.Context) (WarehouseTx, error) {
	tx, err := w.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка при начале транзакции: %w", err)
	}
	return &sqlWarehouseTx{tx: tx, batchSize: w.batchSize}, nil
}

type sqlWarehouseTx struct {
	tx        *sqlx.Tx
	batchSize int
}

func (t *sqlWarehouseTx) ExecDDL(ctx context.Context, statements ...string) error {
	for _, stmt := range statements {
		if _, err := t.tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ошибка выполнения DDL %q: %w", firstLine(stmt), err)
		}
	}
	return nil
}

func (t *sqlWarehouseTx) BulkInsert(ctx context.Context, table string, columns []string, rows [][]any) error {
	for start := 0; start < len(rows); start += t.batchSize {
		end := start + t.batchSize
		if end > len(rows) {
			end = len(rows)
		}

		query, args := buildInsert(table, columns, rows[start:end])
		if _, err := t.tx.ExecContext(ctx, t.tx.Rebind(query), args...); err != nil {
			return fmt.Errorf("ошибка вставки в %s (строки %d-%d): %w", table, start, end-1, err)
		}
	}
	return nil
}

func (t *sqlWarehouseTx) Select(ctx context.Context, dest any, query string, args ...any) error {
	return t.tx.SelectContext(ctx, dest, t.tx.Rebind(query), args...)
}

func (t *sqlWarehouseTx) Commit() error {
	return t.tx.Commit()
}

func (t *sqlWarehouseTx) Rollback() error {
	return t.tx.Rollback()
}

// buildInsert строит многострочный INSERT с плейсхолдерами "?"
func buildInsert(table string, columns []string, rows [][]any) (string, []any) {
	placeholder := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"

	var query strings.Builder
	query.WriteString("INSERT INTO ")
	query.WriteString(table)
	query.WriteString(" (")
	query.WriteString(strings.Join(columns, ", "))
	query.WriteString(") VALUES ")

	args := make([]any, 0, len(rows)*len(columns))
	for i, row := range rows {
		if i > 0 {
			query.WriteString(", ")
		}
		query.WriteString(placeholder)
		args = append(args, row...)
	}
	return query.String(), args
}

func firstLine(stmt string) string {
	stmt = strings.TrimSpace(stmt)
	if i := strings.IndexByte(stmt, '\n'); i >= 0 {
		return stmt[:i]
	}
	return stmt
}
