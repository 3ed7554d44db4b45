package models

import (
	"context"
	"time"
)

// Статусы запуска ETL
const (
	RunStatusInProgress = "in_progress"
	RunStatusSuccess    = "success"
	RunStatusFailed     = "failed"
)

// ETLRunLog представляет запись о запуске ETL процесса
type ETLRunLog struct {
	ID                    string    `json:"id" db:"id"`
	StartTime             time.Time `json:"start_time" db:"start_time"`
	EndTime               time.Time `json:"end_time" db:"end_time"`
	Status                string    `json:"status" db:"status"`
	CustomersExtracted    int       `json:"customers_extracted" db:"customers_extracted"`
	TransactionsExtracted int       `json:"transactions_extracted" db:"transactions_extracted"`
	MerchantsExtracted    int       `json:"merchants_extracted" db:"merchants_extracted"`
	InvalidRowsDropped    int       `json:"invalid_rows_dropped" db:"invalid_rows_dropped"`
	FactsLoaded           int       `json:"facts_loaded" db:"facts_loaded"`
	FactsRejected         int       `json:"facts_rejected" db:"facts_rejected"`
	ErrorKind             string    `json:"error_kind,omitempty" db:"error_kind"`
	ErrorMessage          string    `json:"error_message,omitempty" db:"error_message"`
	ExecutionTimeSeconds  float64   `json:"execution_time_seconds" db:"execution_time_seconds"`
}

// ETLLogRepository представляет репозиторий для работы с журналом запусков ETL
type ETLLogRepository interface {
	// CreateETLLogTable создает таблицу журнала, если она еще не существует
	CreateETLLogTable(ctx context.Context) error

	// CreateLogEntry создает новую запись о запуске ETL
	CreateLogEntry(ctx context.Context, runLog *ETLRunLog) error

	// UpdateLogEntrySuccess обновляет запись при успешном завершении ETL
	UpdateLogEntrySuccess(ctx context.Context, runLog *ETLRunLog) error

	// UpdateLogEntryFailure обновляет запись при неудачном завершении ETL
	UpdateLogEntryFailure(ctx context.Context, runLog *ETLRunLog) error

	// GetLastSuccessfulRun получает информацию о последнем успешном запуске ETL
	GetLastSuccessfulRun(ctx context.Context) (*ETLRunLog, error)

	// GetRecentRuns получает последние limit запусков, новые первыми
	GetRecentRuns(ctx context.Context, limit int) ([]ETLRunLog, error)
}

// ETLStateMonitor предоставляет сводку по запускам ETL
type ETLStateMonitor struct {
	LastSuccessfulRun       *ETLRunLog `json:"last_successful_run"`
	LastFailedRun           *ETLRunLog `json:"last_failed_run,omitempty"`
	TotalSuccessfulRuns     int        `json:"total_successful_runs"`
	TotalFailedRuns         int        `json:"total_failed_runs"`
	AvgExecutionTimeSeconds float64    `json:"avg_execution_time_seconds"`
	TotalFactsLoaded        int        `json:"total_facts_loaded"`
}
