package config

import (
	"context"
	"fmt"
	"time"

	"github.com/LilVoxy/transactions_dwh/ETL/etlerr"
	"github.com/LilVoxy/transactions_dwh/ETL/utils"
	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	_ "modernc.org/sqlite"
)

const connectTimeout = 10 * time.Second

// DBConnections содержит подключения к источникам и хранилищу
type DBConnections struct {
	SourceDB    *sqlx.DB
	WarehouseDB *sqlx.DB
	Mongo       *mongo.Client
}

// ConnectDatabases устанавливает подключения к источнику, хранилищу и MongoDB.
// Ошибка любого подключения закрывает уже открытые и возвращает ConnectivityError.
func ConnectDatabases(ctx context.Context, cfg ETLConfig, logger *utils.ETLLogger) (*DBConnections, error) {
	var connections DBConnections
	var err error

	connections.SourceDB, err = openSQL(ctx, cfg.Source)
	if err != nil {
		return nil, etlerr.Wrap(etlerr.KindConnectivity, etlerr.StageExtract, "ошибка подключения к базе данных источника", err)
	}
	logger.Debug("Подключение к источнику: %s", cfg.Source.Redacted())

	connections.WarehouseDB, err = openSQL(ctx, cfg.Warehouse)
	if err != nil {
		// Закрываем первое подключение при ошибке
		connections.SourceDB.Close()
		return nil, etlerr.Wrap(etlerr.KindConnectivity, etlerr.StageLoad, "ошибка подключения к хранилищу", err)
	}
	logger.Debug("Подключение к хранилищу: %s", cfg.Warehouse.Redacted())

	connections.Mongo, err = openMongo(ctx, cfg.DocumentStore)
	if err != nil {
		connections.SourceDB.Close()
		connections.WarehouseDB.Close()
		return nil, etlerr.Wrap(etlerr.KindConnectivity, etlerr.StageExtract, "ошибка подключения к MongoDB", err)
	}

	logger.Info("Успешное подключение к источнику, хранилищу и MongoDB")
	return &connections, nil
}

func openSQL(ctx context.Context, cfg DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open(cfg.Driver, cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.Driver, err)
	}
	return db, nil
}

func openMongo(ctx context.Context, cfg DocumentStoreConfig) (*mongo.Client, error) {
	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.ConnectionString()))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

// CloseDatabases закрывает все подключения
func CloseDatabases(ctx context.Context, connections *DBConnections, logger *utils.ETLLogger) {
	if connections == nil {
		return
	}

	if connections.SourceDB != nil {
		if err := connections.SourceDB.Close(); err != nil {
			logger.Error("Ошибка при закрытии соединения с источником: %v", err)
		}
	}

	if connections.WarehouseDB != nil {
		if err := connections.WarehouseDB.Close(); err != nil {
			logger.Error("Ошибка при закрытии соединения с хранилищем: %v", err)
		}
	}

	if connections.Mongo != nil {
		if err := connections.Mongo.Disconnect(ctx); err != nil {
			logger.Error("Ошибка при закрытии соединения с MongoDB: %v", err)
		}
	}

	logger.Info("Соединения с базами данных закрыты")
}
