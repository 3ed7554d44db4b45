package load

import (
	"context"
	"time"

	"github.com/LilVoxy/transactions_dwh/ETL/etlerr"
	"github.com/LilVoxy/transactions_dwh/ETL/models"
	"github.com/LilVoxy/transactions_dwh/ETL/utils"
)

// LoadResult содержит итоги фазы Load
type LoadResult struct {
	CustomersLoaded int
	MerchantsLoaded int
	DatesLoaded     int
	FactsLoaded     int
	FactsRejected   int
	Duration        time.Duration
}

// LoadManager отвечает за загрузку звездной схемы в хранилище
type LoadManager struct {
	warehouse       Warehouse
	dialect         Dialect
	dimensionLoader *DimensionLoader
	factLoader      *FactLoader
	logger          *utils.ETLLogger
}

// NewLoadManager создает новый экземпляр LoadManager
func NewLoadManager(warehouse Warehouse, dialect Dialect, policy string, logger *utils.ETLLogger) (*LoadManager, error) {
	factLoader, err := NewFactLoader(policy, logger)
	if err != nil {
		return nil, err
	}

	return &LoadManager{
		warehouse:       warehouse,
		dialect:         dialect,
		dimensionLoader: NewDimensionLoader(logger),
		factLoader:      factLoader,
		logger:          logger,
	}, nil
}

// Load пересоздает схему и загружает данные в две фиксации:
// сначала схема и измерения, затем факты. Факты не загружаются,
// если первая фиксация не удалась.
func (m *LoadManager) Load(ctx context.Context, transformedData *models.TransformedData) (*LoadResult, error) {
	startTime := time.Now()
	m.logger.Info("Начало фазы Load (Загрузка данных)")

	result := &LoadResult{}

	// 1. Схема и измерения
	m.logger.Info("Пересоздание схемы и загрузка измерений...")
	err := withTx(ctx, m.warehouse, func(tx WarehouseTx) error {
		if err := tx.ExecDDL(ctx, m.dialect.ResetSchema()...); err != nil {
			return err
		}
		if err := m.dimensionLoader.LoadCustomers(ctx, tx, transformedData.Customers); err != nil {
			return err
		}
		if err := m.dimensionLoader.LoadMerchants(ctx, tx, transformedData.Merchants); err != nil {
			return err
		}
		return m.dimensionLoader.LoadDates(ctx, tx, transformedData.Dates)
	})
	if err != nil {
		m.logger.Error("Ошибка при загрузке измерений: %v", err)
		return nil, asLoadError(err, "ошибка при загрузке измерений")
	}
	result.CustomersLoaded = len(transformedData.Customers)
	result.MerchantsLoaded = len(transformedData.Merchants)
	result.DatesLoaded = len(transformedData.Dates)
	m.logger.Info("Измерения загружены: %d клиентов, %d продавцов, %d дат",
		result.CustomersLoaded, result.MerchantsLoaded, result.DatesLoaded)

	// 2. Факты
	m.logger.Info("Загрузка фактов транзакций...")
	err = withTx(ctx, m.warehouse, func(tx WarehouseTx) error {
		loaded, rejected, err := m.factLoader.LoadFacts(ctx, tx, transformedData.Facts)
		if err != nil {
			return err
		}
		result.FactsLoaded = loaded
		result.FactsRejected = rejected
		return nil
	})
	if err != nil {
		m.logger.Error("Ошибка при загрузке фактов: %v", err)
		return nil, asLoadError(err, "ошибка при загрузке фактов")
	}

	result.Duration = time.Since(startTime)
	m.logger.Info("Фаза Load завершена. Длительность: %v", result.Duration)
	m.logger.Info("Загружено фактов: %d, отклонено: %d", result.FactsLoaded, result.FactsRejected)

	return result, nil
}

// asLoadError сохраняет классифицированную ошибку, остальные считает недоступностью хранилища
func asLoadError(err error, message string) error {
	if etlerr.KindOf(err) != etlerr.KindUnknown {
		return err
	}
	return etlerr.Wrap(etlerr.KindConnectivity, etlerr.StageLoad, message, err)
}
