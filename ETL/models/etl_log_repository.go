package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Таблица журнала запусков не входит в схему звезды и переживает сброс схемы
const etlRunLogDDL = `
CREATE TABLE IF NOT EXISTS etl_run_log (
	id VARCHAR(36) PRIMARY KEY,
	start_time TIMESTAMP NOT NULL,
	end_time TIMESTAMP NULL,
	status VARCHAR(16) NOT NULL,
	customers_extracted INTEGER DEFAULT 0,
	transactions_extracted INTEGER DEFAULT 0,
	merchants_extracted INTEGER DEFAULT 0,
	invalid_rows_dropped INTEGER DEFAULT 0,
	facts_loaded INTEGER DEFAULT 0,
	facts_rejected INTEGER DEFAULT 0,
	error_kind VARCHAR(32),
	error_message TEXT,
	execution_time_seconds DOUBLE PRECISION
)`

const selectRunLogColumns = `
	SELECT
		id, start_time, end_time, status,
		customers_extracted, transactions_extracted, merchants_extracted,
		invalid_rows_dropped, facts_loaded, facts_rejected,
		COALESCE(error_kind, '') AS error_kind,
		COALESCE(error_message, '') AS error_message,
		COALESCE(execution_time_seconds, 0) AS execution_time_seconds
	FROM etl_run_log`

// runLogRow - строка журнала в том виде, в котором она хранится
type runLogRow struct {
	ID                    string       `db:"id"`
	StartTime             time.Time    `db:"start_time"`
	EndTime               sql.NullTime `db:"end_time"`
	Status                string       `db:"status"`
	CustomersExtracted    int          `db:"customers_extracted"`
	TransactionsExtracted int          `db:"transactions_extracted"`
	MerchantsExtracted    int          `db:"merchants_extracted"`
	InvalidRowsDropped    int          `db:"invalid_rows_dropped"`
	FactsLoaded           int          `db:"facts_loaded"`
	FactsRejected         int          `db:"facts_rejected"`
	ErrorKind             string       `db:"error_kind"`
	ErrorMessage          string       `db:"error_message"`
	ExecutionTimeSeconds  float64      `db:"execution_time_seconds"`
}

func (r runLogRow) toRunLog() ETLRunLog {
	return ETLRunLog{
		ID:                    r.ID,
		StartTime:             r.StartTime,
		EndTime:               r.EndTime.Time,
		Status:                r.Status,
		CustomersExtracted:    r.CustomersExtracted,
		TransactionsExtracted: r.TransactionsExtracted,
		MerchantsExtracted:    r.MerchantsExtracted,
		InvalidRowsDropped:    r.InvalidRowsDropped,
		FactsLoaded:           r.FactsLoaded,
		FactsRejected:         r.FactsRejected,
		ErrorKind:             r.ErrorKind,
		ErrorMessage:          r.ErrorMessage,
		ExecutionTimeSeconds:  r.ExecutionTimeSeconds,
	}
}

// SQLETLLogRepository реализация ETLLogRepository поверх sqlx.
// Запросы пишутся с плейсхолдерами "?" и переписываются под диалект через Rebind.
type SQLETLLogRepository struct {
	db *sqlx.DB
}

// NewSQLETLLogRepository создает новый экземпляр SQLETLLogRepository
func NewSQLETLLogRepository(db *sqlx.DB) *SQLETLLogRepository {
	return &SQLETLLogRepository{
		db: db,
	}
}

// CreateETLLogTable создает таблицу для журнала запусков ETL, если она не существует
func (r *SQLETLLogRepository) CreateETLLogTable(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, etlRunLogDDL); err != nil {
		return fmt.Errorf("ошибка при создании таблицы etl_run_log: %w", err)
	}
	return nil
}

// CreateLogEntry создает новую запись о запуске ETL
func (r *SQLETLLogRepository) CreateLogEntry(ctx context.Context, runLog *ETLRunLog) error {
	query := r.db.Rebind(`INSERT INTO etl_run_log (id, start_time, status) VALUES (?, ?, ?)`)

	if _, err := r.db.ExecContext(ctx, query, runLog.ID, runLog.StartTime.UTC(), RunStatusInProgress); err != nil {
		return fmt.Errorf("ошибка при создании записи о запуске ETL: %w", err)
	}
	runLog.Status = RunStatusInProgress
	return nil
}

// UpdateLogEntrySuccess обновляет запись при успешном завершении ETL
func (r *SQLETLLogRepository) UpdateLogEntrySuccess(ctx context.Context, runLog *ETLRunLog) error {
	runLog.Status = RunStatusSuccess
	return r.finish(ctx, runLog)
}

// UpdateLogEntryFailure обновляет запись при неудачном завершении ETL
func (r *SQLETLLogRepository) UpdateLogEntryFailure(ctx context.Context, runLog *ETLRunLog) error {
	runLog.Status = RunStatusFailed
	return r.finish(ctx, runLog)
}

func (r *SQLETLLogRepository) finish(ctx context.Context, runLog *ETLRunLog) error {
	if runLog.EndTime.IsZero() {
		runLog.EndTime = time.Now()
	}
	runLog.ExecutionTimeSeconds = runLog.EndTime.Sub(runLog.StartTime).Seconds()

	query := r.db.Rebind(`
	UPDATE etl_run_log
	SET
		end_time = ?,
		status = ?,
		customers_extracted = ?,
		transactions_extracted = ?,
		merchants_extracted = ?,
		invalid_rows_dropped = ?,
		facts_loaded = ?,
		facts_rejected = ?,
		error_kind = ?,
		error_message = ?,
		execution_time_seconds = ?
	WHERE id = ?
	`)

	_, err := r.db.ExecContext(ctx, query,
		runLog.EndTime.UTC(),
		runLog.Status,
		runLog.CustomersExtracted,
		runLog.TransactionsExtracted,
		runLog.MerchantsExtracted,
		runLog.InvalidRowsDropped,
		runLog.FactsLoaded,
		runLog.FactsRejected,
		runLog.ErrorKind,
		runLog.ErrorMessage,
		runLog.ExecutionTimeSeconds,
		runLog.ID,
	)
	if err != nil {
		return fmt.Errorf("ошибка при обновлении записи о запуске ETL: %w", err)
	}
	return nil
}

// GetLastSuccessfulRun получает информацию о последнем успешном запуске ETL
func (r *SQLETLLogRepository) GetLastSuccessfulRun(ctx context.Context) (*ETLRunLog, error) {
	return r.lastWithStatus(ctx, RunStatusSuccess)
}

func (r *SQLETLLogRepository) lastWithStatus(ctx context.Context, status string) (*ETLRunLog, error) {
	query := r.db.Rebind(selectRunLogColumns + ` WHERE status = ? ORDER BY start_time DESC LIMIT 1`)

	var row runLogRow
	if err := r.db.GetContext(ctx, &row, query, status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Нет запусков с таким статусом
		}
		return nil, fmt.Errorf("ошибка при получении последнего запуска ETL со статусом %s: %w", status, err)
	}

	runLog := row.toRunLog()
	return &runLog, nil
}

// GetRecentRuns получает последние limit запусков ETL
func (r *SQLETLLogRepository) GetRecentRuns(ctx context.Context, limit int) ([]ETLRunLog, error) {
	query := r.db.Rebind(selectRunLogColumns + ` ORDER BY start_time DESC LIMIT ?`)

	var rows []runLogRow
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("ошибка при получении списка запусков ETL: %w", err)
	}

	logs := make([]ETLRunLog, 0, len(rows))
	for _, row := range rows {
		logs = append(logs, row.toRunLog())
	}
	return logs, nil
}

// GetETLStateMonitor получает сводку по запускам ETL
func (r *SQLETLLogRepository) GetETLStateMonitor(ctx context.Context) (*ETLStateMonitor, error) {
	lastSuccessful, err := r.lastWithStatus(ctx, RunStatusSuccess)
	if err != nil {
		return nil, err
	}

	lastFailed, err := r.lastWithStatus(ctx, RunStatusFailed)
	if err != nil {
		return nil, err
	}

	var totals struct {
		Successful  int     `db:"successful"`
		Failed      int     `db:"failed"`
		AvgSeconds  float64 `db:"avg_seconds"`
		FactsLoaded int     `db:"facts_loaded"`
	}
	err = r.db.GetContext(ctx, &totals, `
		SELECT
			COALESCE(SUM(CASE WHEN status = 'success' THEN 1 ELSE 0 END), 0) AS successful,
			COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0) AS failed,
			COALESCE(AVG(CASE WHEN status = 'success' THEN execution_time_seconds ELSE NULL END), 0) AS avg_seconds,
			COALESCE(SUM(CASE WHEN status = 'success' THEN facts_loaded ELSE 0 END), 0) AS facts_loaded
		FROM etl_run_log
	`)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении статистики запусков ETL: %w", err)
	}

	return &ETLStateMonitor{
		LastSuccessfulRun:       lastSuccessful,
		LastFailedRun:           lastFailed,
		TotalSuccessfulRuns:     totals.Successful,
		TotalFailedRuns:         totals.Failed,
		AvgExecutionTimeSeconds: totals.AvgSeconds,
		TotalFactsLoaded:        totals.FactsLoaded,
	}, nil
}
