package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/LilVoxy/transactions_dwh/ETL/config"
	"github.com/LilVoxy/transactions_dwh/ETL/docstore"
	"github.com/LilVoxy/transactions_dwh/ETL/extractors"
	"github.com/LilVoxy/transactions_dwh/ETL/load"
	"github.com/LilVoxy/transactions_dwh/ETL/models"
	"github.com/LilVoxy/transactions_dwh/ETL/pipeline"
	"github.com/LilVoxy/transactions_dwh/ETL/transform"
	"github.com/LilVoxy/transactions_dwh/ETL/trend"
	"github.com/LilVoxy/transactions_dwh/ETL/utils"
	"github.com/go-co-op/gocron"
)

// ETLRunner собирает конвейер из конфигурации и управляет его запуском
type ETLRunner struct {
	config        config.ETLConfig
	dbConnections *config.DBConnections
	logger        *utils.ETLLogger
	pipeline      *pipeline.Pipeline
	etlLogRepo    *models.SQLETLLogRepository
	trend         *trend.Processor
}

// NewETLRunner создает новый экземпляр ETLRunner
func NewETLRunner(ctx context.Context, envFile string) (*ETLRunner, error) {
	etlConfig, err := config.LoadConfig(envFile)
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}

	logger, err := utils.NewETLLogger(etlConfig.EnableDetailedLogging, etlConfig.LogDir)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации логгера: %w", err)
	}
	logger.Info("Инициализация ETL Runner")

	return connectETLRunner(ctx, etlConfig, logger)
}

// connectETLRunner подключается к базам данных и собирает конвейер.
// Ошибка подключения прерывает запуск так же, как ошибка внутри конвейера.
func connectETLRunner(ctx context.Context, etlConfig config.ETLConfig, logger *utils.ETLLogger) (*ETLRunner, error) {
	startTime := time.Now()

	connections, err := config.ConnectDatabases(ctx, etlConfig, logger)
	if err != nil {
		logger.Critical("ETL-процесс прерван: %v", err)
		logger.LogElapsed(startTime)
		logger.Sync()
		return nil, fmt.Errorf("ошибка подключения к базам данных: %w", err)
	}

	runner, err := newETLRunner(ctx, etlConfig, connections, logger)
	if err != nil {
		logger.Critical("Ошибка инициализации ETL Runner: %v", err)
		logger.LogElapsed(startTime)
		config.CloseDatabases(ctx, connections, logger)
		logger.Sync()
		return nil, err
	}
	return runner, nil
}

func newETLRunner(ctx context.Context, etlConfig config.ETLConfig, connections *config.DBConnections, logger *utils.ETLLogger) (*ETLRunner, error) {
	// Журнал запусков хранится в хранилище, вне пересоздаваемой схемы
	etlLogRepo := models.NewSQLETLLogRepository(connections.WarehouseDB)
	if err := etlLogRepo.CreateETLLogTable(ctx); err != nil {
		return nil, fmt.Errorf("ошибка при создании таблицы логов ETL: %w", err)
	}

	merchantStore := docstore.NewMongoMerchantStore(
		connections.Mongo,
		etlConfig.DocumentStore.Database,
		etlConfig.DocumentStore.Collection,
	)
	extractor := extractors.NewExtractor(connections.SourceDB, merchantStore, etlConfig.SeedMerchants, logger)

	location, err := etlConfig.DateLocation()
	if err != nil {
		return nil, err
	}
	transformer, err := transform.NewTransformer(etlConfig.HashAlgorithm, location, logger)
	if err != nil {
		return nil, err
	}

	dialect, err := load.DialectFor(etlConfig.Warehouse.Driver)
	if err != nil {
		return nil, err
	}
	warehouse := load.NewSQLWarehouse(connections.WarehouseDB, dialect)
	loadManager, err := load.NewLoadManager(warehouse, dialect, etlConfig.IntegrityPolicy, logger)
	if err != nil {
		return nil, err
	}

	return &ETLRunner{
		config:        etlConfig,
		dbConnections: connections,
		logger:        logger,
		pipeline:      pipeline.New(extractor, transformer, loadManager, etlLogRepo, logger),
		etlLogRepo:    etlLogRepo,
		trend:         newTrendProcessor(etlConfig, connections, logger),
	}, nil
}

func newTrendProcessor(etlConfig config.ETLConfig, connections *config.DBConnections, logger *utils.ETLLogger) *trend.Processor {
	if etlConfig.TrendForecastDays == 0 {
		return nil
	}
	trendConfig := trend.DefaultConfig()
	trendConfig.AnalysisPeriodDays = etlConfig.TrendAnalysisDays
	trendConfig.ForecastDays = etlConfig.TrendForecastDays
	return trend.NewProcessor(connections.WarehouseDB, logger, trendConfig)
}

// Close закрывает соединения с базами данных
func (r *ETLRunner) Close() {
	r.logger.Info("Завершение работы ETL Runner")
	config.CloseDatabases(context.Background(), r.dbConnections, r.logger)
	r.logger.Sync()
}

// ExecuteETL выполняет полный ETL процесс, затем пересчитывает прогноз
func (r *ETLRunner) ExecuteETL(ctx context.Context) error {
	if _, err := r.pipeline.Run(ctx); err != nil {
		return err
	}

	if r.trend != nil {
		// Прогноз не критичен для ETL, ошибка только логируется
		if _, err := r.trend.Process(ctx); err != nil {
			r.logger.Error("Ошибка при расчете тренда: %v", err)
		}
	}
	return nil
}

// StartScheduler запускает планировщик для регулярного выполнения ETL.
// Запуски не перекрываются: следующий ждет окончания текущего.
func (r *ETLRunner) StartScheduler(ctx context.Context) error {
	scheduler := gocron.NewScheduler(time.UTC)
	scheduler.SingletonModeAll()

	r.logger.Info("Запуск планировщика ETL с интервалом %v", r.config.RunInterval)

	_, err := scheduler.Every(r.config.RunInterval).Do(func() {
		r.logger.Info("Запланированный запуск ETL процесса")
		if err := r.ExecuteETL(ctx); err != nil {
			r.logger.Error("Ошибка при выполнении запланированного ETL: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("ошибка при настройке планировщика: %w", err)
	}

	scheduler.StartAsync()

	<-ctx.Done()

	scheduler.Stop()
	r.logger.Info("Планировщик ETL остановлен")
	return nil
}

// PrintHistory выводит последние запуски и сводку по журналу
func (r *ETLRunner) PrintHistory(ctx context.Context, limit int) error {
	runs, err := r.etlLogRepo.GetRecentRuns(ctx, limit)
	if err != nil {
		return err
	}
	monitor, err := r.etlLogRepo.GetETLStateMonitor(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tНАЧАЛО\tСТАТУС\tФАКТОВ\tОТБРОШЕНО\tОТКЛОНЕНО\tСЕК\tОШИБКА")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%.2f\t%s\n",
			run.ID,
			run.StartTime.Format(time.RFC3339),
			run.Status,
			run.FactsLoaded,
			run.InvalidRowsDropped,
			run.FactsRejected,
			run.ExecutionTimeSeconds,
			run.ErrorKind,
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nУспешных запусков: %d, неудачных: %d, среднее время: %.2f сек., всего фактов: %d\n",
		monitor.TotalSuccessfulRuns,
		monitor.TotalFailedRuns,
		monitor.AvgExecutionTimeSeconds,
		monitor.TotalFactsLoaded,
	)
	return nil
}

// signalContext возвращает контекст, отменяемый по SIGINT/SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func main() {
	modePtr := flag.String("mode", "once", "Режим работы: once, scheduled или history")
	envPtr := flag.String("env", ".env", "Файл с переменными окружения")
	limitPtr := flag.Int("limit", 10, "Количество запусков (только для режима history)")

	flag.Parse()

	log.Println("Запуск ETL Runner в режиме:", *modePtr)

	ctx, cancel := signalContext()
	defer cancel()

	switch *modePtr {
	case "once", "scheduled", "history":
	default:
		log.Println("Неизвестный режим работы:", *modePtr)
		log.Println("Доступные режимы: once, scheduled, history")
		os.Exit(2)
	}

	runner, err := NewETLRunner(ctx, *envPtr)
	if err != nil {
		log.Fatalf("Ошибка при создании ETL Runner: %v", err)
	}

	switch *modePtr {
	case "once":
		err = runner.ExecuteETL(ctx)
	case "scheduled":
		err = runner.StartScheduler(ctx)
	case "history":
		err = runner.PrintHistory(ctx, *limitPtr)
	}
	runner.Close()

	if err != nil {
		log.Printf("ETL Runner завершился с ошибкой: %v", err)
		os.Exit(1)
	}
	log.Println("ETL Runner завершил работу")
}
