package transform

import (
	"time"

	"github.com/LilVoxy/transactions_dwh/ETL/etlerr"
	"github.com/LilVoxy/transactions_dwh/ETL/models"
	"github.com/LilVoxy/transactions_dwh/ETL/utils"
)

// Transformer строит измерения и факты звездной схемы из извлеченных данных.
// Не выполняет ввода-вывода.
type Transformer struct {
	logger               *utils.ETLLogger
	hasher               *PIIHasher
	customerDimProcessor *CustomerDimensionProcessor
	merchantDimProcessor *MerchantDimensionProcessor
	factsProcessor       *TransactionFactsProcessor
}

// NewTransformer создает новый экземпляр Transformer.
// location задает часовой пояс календарного дня, nil - смещение самой отметки времени.
func NewTransformer(hashAlgorithm string, location *time.Location, logger *utils.ETLLogger) (*Transformer, error) {
	hasher, err := NewPIIHasher(hashAlgorithm)
	if err != nil {
		return nil, err
	}

	return &Transformer{
		logger:               logger,
		hasher:               hasher,
		customerDimProcessor: NewCustomerDimensionProcessor(hasher, logger),
		merchantDimProcessor: NewMerchantDimensionProcessor(logger),
		factsProcessor:       NewTransactionFactsProcessor(NewDateNormalizer(location)),
	}, nil
}

// Transform выполняет полный процесс преобразования
func (t *Transformer) Transform(extractedData *models.ExtractedData) (*models.TransformedData, error) {
	startTime := time.Now()
	t.logger.Info("Начало фазы Transform (Преобразование данных)")

	transformedData := &models.TransformedData{}
	metadata := &transformedData.Metadata
	metadata.TransactionsIn = len(extractedData.Transactions)
	metadata.HashAlgorithm = t.hasher.Algorithm()

	// 1. Проверка качества: суммы должны быть положительными
	valid, dropped := FilterValidAmounts(extractedData.Transactions)
	metadata.InvalidAmountsRemoved = dropped
	if dropped > 0 {
		t.logger.Warn("%v", etlerr.Newf(etlerr.KindDataQuality, etlerr.StageTransform,
			"отброшено транзакций с неположительной суммой: %d", dropped))
	}
	if len(valid) == 0 {
		return nil, etlerr.New(etlerr.KindTransformIntegrity, etlerr.StageTransform,
			"после проверки качества не осталось ни одной транзакции")
	}

	// 2. Измерение клиентов с хэшированием персональных данных
	t.logger.Info("Преобразование данных клиентов...")
	transformedData.Customers, metadata.DuplicateCustomersRemoved = t.customerDimProcessor.ProcessCustomerDimension(extractedData.Customers)
	if metadata.DuplicateCustomersRemoved > 0 {
		t.logger.Warn("Удалено дубликатов клиентов: %d", metadata.DuplicateCustomersRemoved)
	}

	// 3. Измерение продавцов
	t.logger.Info("Преобразование справочника продавцов...")
	transformedData.Merchants, metadata.DuplicateMerchantsRemoved = t.merchantDimProcessor.ProcessMerchantDimension(extractedData.Merchants)

	// 4. Факты с ключами дат
	t.logger.Info("Преобразование транзакций...")
	facts, minDate, maxDate, err := t.factsProcessor.ProcessTransactionFacts(valid)
	if err != nil {
		t.logger.Error("Ошибка при преобразовании транзакций: %v", err)
		return nil, err
	}
	transformedData.Facts = facts

	// 5. Непрерывный календарь от первой до последней даты
	transformedData.Dates = BuildCalendar(minDate, maxDate)
	metadata.DateRangeStart = minDate
	metadata.DateRangeEnd = maxDate

	t.logger.Info("Фаза Transform завершена. Длительность: %v", time.Since(startTime))
	t.logger.Info("Клиентов: %d, продавцов: %d, дат: %d (%s - %s), фактов: %d",
		len(transformedData.Customers),
		len(transformedData.Merchants),
		len(transformedData.Dates),
		minDate.Format("2006-01-02"),
		maxDate.Format("2006-01-02"),
		len(transformedData.Facts),
	)

	return transformedData, nil
}

