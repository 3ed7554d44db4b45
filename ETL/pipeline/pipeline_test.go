package pipeline

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/LilVoxy/transactions_dwh/ETL/etlerr"
	"github.com/LilVoxy/transactions_dwh/ETL/extractors"
	"github.com/LilVoxy/transactions_dwh/ETL/load"
	"github.com/LilVoxy/transactions_dwh/ETL/models"
	"github.com/LilVoxy/transactions_dwh/ETL/transform"
	"github.com/LilVoxy/transactions_dwh/ETL/utils"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

type memoryMerchantStore struct {
	merchants []models.Merchant
}

func (s *memoryMerchantStore) CountMerchants(context.Context) (int64, error) {
	return int64(len(s.merchants)), nil
}

func (s *memoryMerchantStore) InsertMerchants(_ context.Context, merchants []models.Merchant) error {
	s.merchants = append(s.merchants, merchants...)
	return nil
}

func (s *memoryMerchantStore) FindMerchants(context.Context) ([]models.Merchant, error) {
	return append([]models.Merchant(nil), s.merchants...), nil
}

var seedMerchants = []models.Merchant{
	{MerchantName: "GreenLeaf Grocers", Category: "Groceries"},
	{MerchantName: "The Daily Grind Coffee", Category: "Food & Beverage"},
	{MerchantName: "TechSphere Electronics", Category: "Electronics"},
}

func openDB(t *testing.T, name string) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite", filepath.Join(t.TempDir(), name)+"?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func seedSource(t *testing.T, db *sqlx.DB) {
	t.Helper()
	db.MustExec(`CREATE TABLE customers (
		customer_id INTEGER PRIMARY KEY,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		email TEXT NOT NULL
	)`)
	db.MustExec(`CREATE TABLE transactions (
		transaction_id TEXT PRIMARY KEY,
		customer_id INTEGER NOT NULL REFERENCES customers (customer_id),
		merchant_details TEXT NOT NULL,
		amount TEXT,
		transaction_date TEXT
	)`)
	db.MustExec(`INSERT INTO customers VALUES
		(1, 'Anna', 'Ivanova', 'anna@example.com'),
		(2, 'Boris', 'Petrov', 'boris@example.com'),
		(3, 'Clara', 'Sidorova', 'clara@example.com')`)
	// 2 и 3 марта без транзакций, отрицательная сумма 7 марта отбрасывается
	db.MustExec(`INSERT INTO transactions VALUES
		('tx-1', 1, 'GreenLeaf Grocers', '54.20', '2024-03-01 09:15:00'),
		('tx-2', 2, 'The Daily Grind Coffee', '4.75', '2024-03-01 17:40:00'),
		('tx-3', 3, 'TechSphere Electronics', '1299.00', '2024-03-04 12:00:00'),
		('tx-4', 1, 'The Daily Grind Coffee', '3.10', '2024-03-05 08:05:00'),
		('tx-5', 2, 'GreenLeaf Grocers', '-5.00', '2024-03-07 10:00:00')`)
}

func TestRunEndToEnd(t *testing.T) {
	ctx := context.Background()
	logger := utils.NewNopLogger()

	source := openDB(t, "source.db")
	seedSource(t, source)
	dwh := openDB(t, "dwh.db")

	runLog := models.NewSQLETLLogRepository(dwh)
	require.NoError(t, runLog.CreateETLLogTable(ctx))

	store := &memoryMerchantStore{}
	transformer, err := transform.NewTransformer(transform.HashSHA256, nil, logger)
	require.NoError(t, err)
	loader, err := load.NewLoadManager(load.NewSQLWarehouse(dwh, load.SQLiteDialect), load.SQLiteDialect, load.PolicyFailBatch, logger)
	require.NoError(t, err)

	p := New(extractors.NewExtractor(source, store, seedMerchants, logger), transformer, loader, runLog, logger)

	report, err := p.Run(ctx)
	require.NoError(t, err)
	require.Equal(t, models.RunStatusSuccess, report.Status)
	require.NotEmpty(t, report.RunID)
	require.True(t, report.MerchantsSeeded)
	require.Equal(t, 3, report.CustomersExtracted)
	require.Equal(t, 5, report.TransactionsExtracted)
	require.Equal(t, 1, report.InvalidRowsDropped)
	require.Equal(t, 4, report.FactsLoaded)
	require.Zero(t, report.FactsRejected)

	var dateKeys []int
	require.NoError(t, dwh.Select(&dateKeys, "SELECT date_key FROM dim_date ORDER BY date_key"))
	require.Equal(t, []int{20240301, 20240302, 20240303, 20240304, 20240305}, dateKeys)

	var customers, merchants, facts int
	require.NoError(t, dwh.Get(&customers, "SELECT COUNT(*) FROM dim_customer"))
	require.NoError(t, dwh.Get(&merchants, "SELECT COUNT(*) FROM dim_merchant"))
	require.NoError(t, dwh.Get(&facts, "SELECT COUNT(*) FROM fact_transactions"))
	require.Equal(t, 3, customers)
	require.Equal(t, 3, merchants)
	require.Equal(t, 4, facts)

	var leaked int
	require.NoError(t, dwh.Get(&leaked, `SELECT COUNT(*) FROM dim_customer
		WHERE last_name_hash IN ('Ivanova', 'Petrov', 'Sidorova') OR email_hash LIKE '%@%'`))
	require.Zero(t, leaked)

	last, err := runLog.GetLastSuccessfulRun(ctx)
	require.NoError(t, err)
	require.Equal(t, report.RunID, last.ID)
	require.Equal(t, 4, last.FactsLoaded)
	require.Equal(t, 1, last.InvalidRowsDropped)

	// Второй запуск: справочник уже заполнен, хранилище пересобрано с нуля
	report, err = p.Run(ctx)
	require.NoError(t, err)
	require.False(t, report.MerchantsSeeded)
	require.Len(t, store.merchants, 3)
	require.NoError(t, dwh.Get(&facts, "SELECT COUNT(*) FROM fact_transactions"))
	require.Equal(t, 4, facts)
}

type failingExtractor struct{ err error }

func (e failingExtractor) Extract(context.Context) (*models.ExtractedData, error) {
	return nil, e.err
}

type unexpectedTransformer struct{ t *testing.T }

func (u unexpectedTransformer) Transform(*models.ExtractedData) (*models.TransformedData, error) {
	u.t.Fatal("transform must not run after a failed extract")
	return nil, nil
}

type recordingRunLog struct {
	created bool
	failed  *models.ETLRunLog
}

func (r *recordingRunLog) CreateLogEntry(context.Context, *models.ETLRunLog) error {
	r.created = true
	return nil
}

func (r *recordingRunLog) UpdateLogEntrySuccess(context.Context, *models.ETLRunLog) error {
	return errors.New("unexpected success")
}

func (r *recordingRunLog) UpdateLogEntryFailure(_ context.Context, runLog *models.ETLRunLog) error {
	r.failed = runLog
	return nil
}

func TestRunStopsOnFatalError(t *testing.T) {
	var logs bytes.Buffer
	logger := utils.NewLoggerWithWriter(&logs, false)

	cause := etlerr.Wrap(etlerr.KindConnectivity, etlerr.StageExtract, "источник недоступен", errors.New("connection refused"))
	runLog := &recordingRunLog{}
	p := New(failingExtractor{err: cause}, unexpectedTransformer{t: t}, nil, runLog, logger)

	report, err := p.Run(context.Background())
	require.ErrorIs(t, err, cause)
	require.Equal(t, models.RunStatusFailed, report.Status)
	require.Equal(t, etlerr.KindConnectivity, report.ErrorKind)

	require.True(t, runLog.created)
	require.NotNil(t, runLog.failed)
	require.Equal(t, string(etlerr.KindConnectivity), runLog.failed.ErrorKind)

	require.Contains(t, logs.String(), `"severity":"critical"`)
	require.Contains(t, logs.String(), "Общее время выполнения")
}
