package load

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/LilVoxy/transactions_dwh/ETL/etlerr"
	"github.com/LilVoxy/transactions_dwh/ETL/models"
	"github.com/LilVoxy/transactions_dwh/ETL/utils"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openWarehouse(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite", filepath.Join(t.TempDir(), "dwh.db")+"?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sampleData() *models.TransformedData {
	return &models.TransformedData{
		Customers: []models.DimCustomer{
			{CustomerID: 10, FirstName: "Anna", LastNameHash: strings.Repeat("a", 64), EmailHash: strings.Repeat("b", 64)},
			{CustomerID: 20, FirstName: "Boris", LastNameHash: strings.Repeat("c", 64), EmailHash: strings.Repeat("d", 64)},
		},
		Merchants: []models.DimMerchant{
			{MerchantName: "GreenLeaf Grocers", Category: "Groceries"},
			{MerchantName: "TechSphere Electronics", Category: "Electronics"},
		},
		Dates: []models.DimDate{
			{DateKey: 20240301, FullDate: day(2024, 3, 1), DayOfWeek: 4, DayName: "Friday", Month: 3, MonthName: "March", Year: 2024},
			{DateKey: 20240302, FullDate: day(2024, 3, 2), DayOfWeek: 5, DayName: "Saturday", Month: 3, MonthName: "March", Year: 2024},
		},
		Facts: []models.StagedFact{
			{TransactionID: "t1", CustomerID: 10, MerchantName: "GreenLeaf Grocers", DateKey: 20240301, Amount: decimal.RequireFromString("12.50")},
			{TransactionID: "t2", CustomerID: 20, MerchantName: "TechSphere Electronics", DateKey: 20240302, Amount: decimal.RequireFromString("999.99")},
		},
	}
}

func countRows(t *testing.T, db *sqlx.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.Get(&n, "SELECT COUNT(*) FROM "+table))
	return n
}

func TestLoadIntoSQLite(t *testing.T) {
	db := openWarehouse(t)
	manager, err := NewLoadManager(NewSQLWarehouse(db, SQLiteDialect), SQLiteDialect, PolicyFailBatch, utils.NewNopLogger())
	require.NoError(t, err)

	// Повторный запуск полностью пересоздает схему
	for run := 0; run < 2; run++ {
		result, err := manager.Load(context.Background(), sampleData())
		require.NoError(t, err)
		require.Equal(t, 2, result.FactsLoaded)
		require.Zero(t, result.FactsRejected)

		require.Equal(t, 2, countRows(t, db, TableDimCustomer))
		require.Equal(t, 2, countRows(t, db, TableDimMerchant))
		require.Equal(t, 2, countRows(t, db, TableDimDate))
		require.Equal(t, 2, countRows(t, db, TableFactTransactions))
	}

	var joined []struct {
		TransactionID string `db:"transaction_id"`
		CustomerID    int64  `db:"customer_id"`
		MerchantName  string `db:"merchant_name"`
		DayName       string `db:"day_name"`
	}
	require.NoError(t, db.Select(&joined, `
		SELECT f.transaction_id, c.customer_id, m.merchant_name, d.day_name
		FROM fact_transactions f
		JOIN dim_customer c ON c.customer_key = f.customer_key
		JOIN dim_merchant m ON m.merchant_key = f.merchant_key
		JOIN dim_date d ON d.date_key = f.date_key
		ORDER BY f.transaction_id`))
	require.Len(t, joined, 2)
	require.Equal(t, int64(20), joined[1].CustomerID)
	require.Equal(t, "TechSphere Electronics", joined[1].MerchantName)
	require.Equal(t, "Saturday", joined[1].DayName)
}

func TestUnresolvedFactsPolicies(t *testing.T) {
	withOrphan := func() *models.TransformedData {
		data := sampleData()
		data.Facts = append(data.Facts, models.StagedFact{
			TransactionID: "t3", CustomerID: 10, MerchantName: "GlobalMart", DateKey: 20240301, Amount: decimal.RequireFromString("5"),
		})
		return data
	}

	t.Run("fail batch", func(t *testing.T) {
		db := openWarehouse(t)
		manager, err := NewLoadManager(NewSQLWarehouse(db, SQLiteDialect), SQLiteDialect, PolicyFailBatch, utils.NewNopLogger())
		require.NoError(t, err)

		result, err := manager.Load(context.Background(), withOrphan())
		require.Nil(t, result)
		require.Equal(t, etlerr.KindReferentialIntegrity, etlerr.KindOf(err))

		// Измерения зафиксированы, факты откачены целиком
		require.Equal(t, 2, countRows(t, db, TableDimCustomer))
		require.Zero(t, countRows(t, db, TableFactTransactions))
	})

	t.Run("reject rows", func(t *testing.T) {
		db := openWarehouse(t)
		manager, err := NewLoadManager(NewSQLWarehouse(db, SQLiteDialect), SQLiteDialect, PolicyRejectRows, utils.NewNopLogger())
		require.NoError(t, err)

		result, err := manager.Load(context.Background(), withOrphan())
		require.NoError(t, err)
		require.Equal(t, 2, result.FactsLoaded)
		require.Equal(t, 1, result.FactsRejected)
		require.Equal(t, 2, countRows(t, db, TableFactTransactions))

		var nullKeys int
		require.NoError(t, db.Get(&nullKeys, "SELECT COUNT(*) FROM fact_transactions WHERE merchant_key IS NULL"))
		require.Zero(t, nullKeys)
	})

	_, err := NewLoadManager(nil, SQLiteDialect, "ignore", utils.NewNopLogger())
	require.Error(t, err)
}

type fakeWarehouse struct {
	begins     int
	failTable  string
	inserted   []string
	committed  int
	rolledBack int
}

func (w *fakeWarehouse) BeginTx(context.Context) (WarehouseTx, error) {
	w.begins++
	return &fakeTx{w: w}, nil
}

type fakeTx struct {
	w *fakeWarehouse
}

func (t *fakeTx) ExecDDL(context.Context, ...string) error { return nil }

func (t *fakeTx) BulkInsert(_ context.Context, table string, _ []string, _ [][]any) error {
	if table == t.w.failTable {
		return errors.New("disk full")
	}
	t.w.inserted = append(t.w.inserted, table)
	return nil
}

func (t *fakeTx) Select(context.Context, any, string, ...any) error { return nil }

func (t *fakeTx) Commit() error {
	t.w.committed++
	return nil
}

func (t *fakeTx) Rollback() error {
	t.w.rolledBack++
	return nil
}

func TestDimensionFailureSkipsFacts(t *testing.T) {
	warehouse := &fakeWarehouse{failTable: TableDimDate}
	manager, err := NewLoadManager(warehouse, PostgresDialect, PolicyFailBatch, utils.NewNopLogger())
	require.NoError(t, err)

	result, err := manager.Load(context.Background(), sampleData())
	require.Nil(t, result)
	require.Equal(t, etlerr.KindConnectivity, etlerr.KindOf(err))

	require.Equal(t, 1, warehouse.begins)
	require.Zero(t, warehouse.committed)
	require.Equal(t, 1, warehouse.rolledBack)
	require.NotContains(t, warehouse.inserted, TableFactTransactions)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	warehouse := &fakeWarehouse{}
	boom := errors.New("boom")

	err := withTx(context.Background(), warehouse, func(WarehouseTx) error { return boom })
	require.ErrorIs(t, err, boom)
	require.Equal(t, 1, warehouse.rolledBack)
	require.Zero(t, warehouse.committed)

	require.NoError(t, withTx(context.Background(), warehouse, func(WarehouseTx) error { return nil }))
	require.Equal(t, 1, warehouse.committed)
	require.Equal(t, 1, warehouse.rolledBack)
}
