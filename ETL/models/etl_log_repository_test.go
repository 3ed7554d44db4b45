package models

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openRunLogDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite", filepath.Join(t.TempDir(), "runlog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSQLETLLogRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLETLLogRepository(openRunLogDB(t))
	require.NoError(t, repo.CreateETLLogTable(ctx))
	// повторное создание не должно падать
	require.NoError(t, repo.CreateETLLogTable(ctx))

	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	ok := &ETLRunLog{ID: "run-ok", StartTime: start}
	require.NoError(t, repo.CreateLogEntry(ctx, ok))
	require.Equal(t, RunStatusInProgress, ok.Status)

	ok.EndTime = start.Add(3 * time.Second)
	ok.CustomersExtracted = 3
	ok.TransactionsExtracted = 5
	ok.InvalidRowsDropped = 1
	ok.FactsLoaded = 4
	require.NoError(t, repo.UpdateLogEntrySuccess(ctx, ok))
	require.InDelta(t, 3.0, ok.ExecutionTimeSeconds, 0.001)

	failed := &ETLRunLog{ID: "run-failed", StartTime: start.Add(time.Hour)}
	require.NoError(t, repo.CreateLogEntry(ctx, failed))
	failed.ErrorKind = "connectivity"
	failed.ErrorMessage = "warehouse unreachable"
	require.NoError(t, repo.UpdateLogEntryFailure(ctx, failed))

	last, err := repo.GetLastSuccessfulRun(ctx)
	require.NoError(t, err)
	require.NotNil(t, last)
	require.Equal(t, "run-ok", last.ID)
	require.Equal(t, 4, last.FactsLoaded)
	require.Equal(t, 1, last.InvalidRowsDropped)

	runs, err := repo.GetRecentRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	require.Equal(t, "run-failed", runs[0].ID)
	require.Equal(t, RunStatusFailed, runs[0].Status)
	require.Equal(t, "warehouse unreachable", runs[0].ErrorMessage)

	monitor, err := repo.GetETLStateMonitor(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, monitor.TotalSuccessfulRuns)
	require.Equal(t, 1, monitor.TotalFailedRuns)
	require.Equal(t, 4, monitor.TotalFactsLoaded)
	require.NotNil(t, monitor.LastFailedRun)
}

func TestSQLETLLogRepository_NoSuccessfulRun(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLETLLogRepository(openRunLogDB(t))
	require.NoError(t, repo.CreateETLLogTable(ctx))

	last, err := repo.GetLastSuccessfulRun(ctx)
	require.NoError(t, err)
	require.Nil(t, last)
}
