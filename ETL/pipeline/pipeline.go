package pipeline

import (
	"context"
	"time"

	"github.com/LilVoxy/transactions_dwh/ETL/etlerr"
	"github.com/LilVoxy/transactions_dwh/ETL/load"
	"github.com/LilVoxy/transactions_dwh/ETL/models"
	"github.com/LilVoxy/transactions_dwh/ETL/utils"
	"github.com/google/uuid"
)

// Extractor извлекает данные из источников
type Extractor interface {
	Extract(ctx context.Context) (*models.ExtractedData, error)
}

// Transformer строит звездную схему из извлеченных данных
type Transformer interface {
	Transform(extractedData *models.ExtractedData) (*models.TransformedData, error)
}

// Loader загружает звездную схему в хранилище
type Loader interface {
	Load(ctx context.Context, transformedData *models.TransformedData) (*load.LoadResult, error)
}

// RunLogRepository сохраняет журнал запусков
type RunLogRepository interface {
	CreateLogEntry(ctx context.Context, runLog *models.ETLRunLog) error
	UpdateLogEntrySuccess(ctx context.Context, runLog *models.ETLRunLog) error
	UpdateLogEntryFailure(ctx context.Context, runLog *models.ETLRunLog) error
}

// RunReport - итоги одного запуска
type RunReport struct {
	RunID     string
	StartedAt time.Time
	Duration  time.Duration
	Status    string
	ErrorKind etlerr.Kind

	CustomersExtracted    int
	TransactionsExtracted int
	MerchantsExtracted    int
	MerchantsSeeded       bool

	InvalidRowsDropped int

	CustomersLoaded int
	MerchantsLoaded int
	DatesLoaded     int
	FactsLoaded     int
	FactsRejected   int
}

// Pipeline выполняет Extract, Transform и Load строго последовательно
type Pipeline struct {
	extractor   Extractor
	transformer Transformer
	loader      Loader
	runLog      RunLogRepository
	logger      *utils.ETLLogger
}

// New создает конвейер. runLog может быть nil, тогда журнал не ведется.
func New(extractor Extractor, transformer Transformer, loader Loader, runLog RunLogRepository, logger *utils.ETLLogger) *Pipeline {
	return &Pipeline{
		extractor:   extractor,
		transformer: transformer,
		loader:      loader,
		runLog:      runLog,
		logger:      logger,
	}
}

// Run выполняет один полный запуск. Отчет возвращается и при ошибке,
// с заполненными до момента сбоя счетчиками.
func (p *Pipeline) Run(ctx context.Context) (*RunReport, error) {
	startTime := time.Now()
	report := &RunReport{
		RunID:     uuid.NewString(),
		StartedAt: startTime,
		Status:    models.RunStatusInProgress,
	}
	logger := p.logger.With("run_id", report.RunID)

	logger.LogETLStart(report.RunID)
	defer func() {
		report.Duration = time.Since(startTime)
	}()

	runLog := &models.ETLRunLog{ID: report.RunID, StartTime: startTime}
	if p.runLog != nil {
		if err := p.runLog.CreateLogEntry(ctx, runLog); err != nil {
			logger.Warn("Не удалось создать запись в журнале ETL: %v", err)
		}
	}

	err := p.execute(ctx, report, logger)
	// Журнал обновляется и после отмены контекста запуска
	p.finish(context.WithoutCancel(ctx), runLog, report, err, logger)

	if err != nil {
		logger.Critical("ETL-процесс прерван: %v", err)
		logger.LogElapsed(startTime)
		return report, err
	}

	logger.LogETLComplete(startTime, report.FactsLoaded, report.InvalidRowsDropped)
	return report, nil
}

func (p *Pipeline) execute(ctx context.Context, report *RunReport, logger *utils.ETLLogger) error {
	// 1. Extract
	extractedData, err := p.extractor.Extract(ctx)
	if err != nil {
		logger.Error("Ошибка в фазе Extract: %v", err)
		return err
	}
	report.CustomersExtracted = len(extractedData.Customers)
	report.TransactionsExtracted = len(extractedData.Transactions)
	report.MerchantsExtracted = len(extractedData.Merchants)
	report.MerchantsSeeded = extractedData.MerchantsSeeded

	// 2. Transform
	transformedData, err := p.transformer.Transform(extractedData)
	if err != nil {
		logger.Error("Ошибка в фазе Transform: %v", err)
		return err
	}
	report.InvalidRowsDropped = transformedData.Metadata.InvalidAmountsRemoved

	// 3. Load
	result, err := p.loader.Load(ctx, transformedData)
	if err != nil {
		logger.Error("Ошибка в фазе Load: %v", err)
		return err
	}
	report.CustomersLoaded = result.CustomersLoaded
	report.MerchantsLoaded = result.MerchantsLoaded
	report.DatesLoaded = result.DatesLoaded
	report.FactsLoaded = result.FactsLoaded
	report.FactsRejected = result.FactsRejected

	return nil
}

// finish фиксирует итог запуска в отчете и журнале
func (p *Pipeline) finish(ctx context.Context, runLog *models.ETLRunLog, report *RunReport, runErr error, logger *utils.ETLLogger) {
	runLog.EndTime = time.Now()
	runLog.CustomersExtracted = report.CustomersExtracted
	runLog.TransactionsExtracted = report.TransactionsExtracted
	runLog.MerchantsExtracted = report.MerchantsExtracted
	runLog.InvalidRowsDropped = report.InvalidRowsDropped
	runLog.FactsLoaded = report.FactsLoaded
	runLog.FactsRejected = report.FactsRejected

	if runErr != nil {
		report.Status = models.RunStatusFailed
		report.ErrorKind = etlerr.KindOf(runErr)
		runLog.ErrorKind = string(report.ErrorKind)
		runLog.ErrorMessage = runErr.Error()
	} else {
		report.Status = models.RunStatusSuccess
	}

	if p.runLog == nil {
		return
	}

	var err error
	if runErr != nil {
		err = p.runLog.UpdateLogEntryFailure(ctx, runLog)
	} else {
		err = p.runLog.UpdateLogEntrySuccess(ctx, runLog)
	}
	if err != nil {
		logger.Error("Ошибка при обновлении записи в журнале ETL: %v", err)
	}
}
