package docstore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/LilVoxy/transactions_dwh/ETL/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Требует запущенный MongoDB: MONGO_URI=mongodb://localhost:27017 go test ./ETL/docstore
func TestMongoMerchantStoreRoundTrip(t *testing.T) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI не задан")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	database := "etl_test_" + uuid.NewString()[:8]
	t.Cleanup(func() { _ = client.Database(database).Drop(context.Background()) })

	store := NewMongoMerchantStore(client, database, "merchants")

	count, err := store.CountMerchants(ctx)
	require.NoError(t, err)
	require.Zero(t, count)

	seed := []models.Merchant{
		{MerchantName: "GreenLeaf Grocers", Category: "Groceries"},
		{MerchantName: "TechSphere Electronics", Category: "Electronics"},
	}
	require.NoError(t, store.InsertMerchants(ctx, seed))
	require.NoError(t, store.InsertMerchants(ctx, nil))

	count, err = store.CountMerchants(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, count)

	merchants, err := store.FindMerchants(ctx)
	require.NoError(t, err)
	require.ElementsMatch(t, seed, merchants)
}
