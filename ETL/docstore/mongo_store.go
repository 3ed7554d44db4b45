package docstore

import (
	"context"
	"fmt"

	"github.com/LilVoxy/transactions_dwh/ETL/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoMerchantStore хранит справочник продавцов в коллекции MongoDB
type MongoMerchantStore struct {
	collection *mongo.Collection
}

// NewMongoMerchantStore создает хранилище продавцов поверх коллекции database.collection
func NewMongoMerchantStore(client *mongo.Client, database, collection string) *MongoMerchantStore {
	return &MongoMerchantStore{
		collection: client.Database(database).Collection(collection),
	}
}

// CountMerchants возвращает количество документов в коллекции
func (s *MongoMerchantStore) CountMerchants(ctx context.Context) (int64, error) {
	count, err := s.collection.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчета продавцов: %w", err)
	}
	return count, nil
}

// InsertMerchants вставляет документы продавцов одним запросом
func (s *MongoMerchantStore) InsertMerchants(ctx context.Context, merchants []models.Merchant) error {
	if len(merchants) == 0 {
		return nil
	}

	docs := make([]interface{}, 0, len(merchants))
	for _, m := range merchants {
		docs = append(docs, m)
	}

	if _, err := s.collection.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("ошибка вставки продавцов: %w", err)
	}
	return nil
}

// FindMerchants читает все документы коллекции без служебного поля _id
func (s *MongoMerchantStore) FindMerchants(ctx context.Context) ([]models.Merchant, error) {
	opts := options.Find().SetProjection(bson.D{{Key: "_id", Value: 0}})

	cursor, err := s.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения продавцов: %w", err)
	}
	defer cursor.Close(ctx)

	var merchants []models.Merchant
	if err := cursor.All(ctx, &merchants); err != nil {
		return nil, fmt.Errorf("ошибка декодирования продавцов: %w", err)
	}
	return merchants, nil
}
