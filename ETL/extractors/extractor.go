package extractors

import (
	"context"
	"time"

	"github.com/LilVoxy/transactions_dwh/ETL/etlerr"
	"github.com/LilVoxy/transactions_dwh/ETL/models"
	"github.com/LilVoxy/transactions_dwh/ETL/utils"
	"github.com/jmoiron/sqlx"
)

// MerchantStore - хранилище документов со справочником продавцов
type MerchantStore interface {
	CountMerchants(ctx context.Context) (int64, error)
	InsertMerchants(ctx context.Context, merchants []models.Merchant) error
	FindMerchants(ctx context.Context) ([]models.Merchant, error)
}

// Extractor координирует процесс извлечения данных из источников
type Extractor struct {
	logger               *utils.ETLLogger
	customerExtractor    *CustomerExtractor
	transactionExtractor *TransactionExtractor
	merchantExtractor    *MerchantExtractor
}

// NewExtractor создает новый экземпляр Extractor
func NewExtractor(source sqlx.QueryerContext, merchants MerchantStore, seed []models.Merchant, logger *utils.ETLLogger) *Extractor {
	return &Extractor{
		logger:               logger,
		customerExtractor:    NewCustomerExtractor(source, logger),
		transactionExtractor: NewTransactionExtractor(source, logger),
		merchantExtractor:    NewMerchantExtractor(merchants, seed, logger),
	}
}

// Extract извлекает клиентов, транзакции и справочник продавцов.
// Любая ошибка прерывает извлечение целиком, частичный результат не возвращается.
func (e *Extractor) Extract(ctx context.Context) (*models.ExtractedData, error) {
	startTime := time.Now()
	e.logger.LogExtractStart()

	var extractedData models.ExtractedData
	var err error

	// Извлекаем клиентов
	extractedData.Customers, err = e.customerExtractor.ExtractCustomers(ctx)
	if err != nil {
		e.logger.Error("Ошибка при извлечении клиентов: %v", err)
		return nil, etlerr.Wrap(etlerr.KindConnectivity, etlerr.StageExtract, "ошибка извлечения клиентов", err)
	}

	// Извлекаем транзакции
	extractedData.Transactions, err = e.transactionExtractor.ExtractTransactions(ctx)
	if err != nil {
		e.logger.Error("Ошибка при извлечении транзакций: %v", err)
		return nil, etlerr.Wrap(etlerr.KindConnectivity, etlerr.StageExtract, "ошибка извлечения транзакций", err)
	}

	// Извлекаем продавцов, при пустой коллекции сначала заполняем справочник
	extractedData.Merchants, extractedData.MerchantsSeeded, err = e.merchantExtractor.ExtractMerchants(ctx)
	if err != nil {
		e.logger.Error("Ошибка при извлечении продавцов: %v", err)
		return nil, etlerr.Wrap(etlerr.KindConnectivity, etlerr.StageExtract, "ошибка извлечения продавцов", err)
	}

	extractedData.ExtractedAt = time.Now()

	e.logger.LogExtractComplete(
		len(extractedData.Customers),
		len(extractedData.Transactions),
		len(extractedData.Merchants),
		time.Since(startTime),
	)

	return &extractedData, nil
}
