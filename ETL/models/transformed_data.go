package models

import "time"

// TransformedData содержит трансформированные данные для загрузки в хранилище
type TransformedData struct {
	// Измерения
	Customers []DimCustomer
	Merchants []DimMerchant
	Dates     []DimDate

	// Факты
	Facts []StagedFact

	// Метаданные
	Metadata TransformMetadata
}

// TransformMetadata содержит метрики фазы Transform
type TransformMetadata struct {
	TransactionsIn            int
	InvalidAmountsRemoved     int
	DuplicateCustomersRemoved int
	DuplicateMerchantsRemoved int
	DateRangeStart            time.Time
	DateRangeEnd              time.Time
	HashAlgorithm             string
}
