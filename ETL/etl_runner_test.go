package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/LilVoxy/transactions_dwh/ETL/config"
	"github.com/LilVoxy/transactions_dwh/ETL/etlerr"
	"github.com/LilVoxy/transactions_dwh/ETL/load"
	"github.com/LilVoxy/transactions_dwh/ETL/transform"
	"github.com/LilVoxy/transactions_dwh/ETL/utils"
	"github.com/stretchr/testify/require"
)

func TestUnreachableSourceIsCritical(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := utils.NewLoggerWithWriter(buf, false)

	// Файл базы SQLite нельзя создать в несуществующем каталоге
	missing := filepath.Join(t.TempDir(), "missing", "source.db")
	etlConfig := config.ETLConfig{
		Source:          config.DatabaseConfig{Driver: config.DriverSQLite, DBName: missing},
		Warehouse:       config.DatabaseConfig{Driver: config.DriverSQLite, DBName: filepath.Join(t.TempDir(), "dwh.db")},
		DocumentStore:   config.DocumentStoreConfig{Host: "localhost", Port: 27017, Database: "reference", Collection: "merchants"},
		SeedMerchants:   config.DefaultSeedMerchants,
		RunInterval:     time.Hour,
		HashAlgorithm:   transform.HashSHA256,
		IntegrityPolicy: load.PolicyFailBatch,
	}

	runner, err := connectETLRunner(context.Background(), etlConfig, logger)
	require.Error(t, err)
	require.Nil(t, runner)
	require.Equal(t, etlerr.KindConnectivity, etlerr.KindOf(err))

	out := buf.String()
	require.Contains(t, out, `"severity":"critical"`)
	require.Contains(t, out, "Общее время выполнения")
}
