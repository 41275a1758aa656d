package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/AhirraoYash/BuzzBuilder-build-buzz-automatically/internal/config"
	"github.com/AhirraoYash/BuzzBuilder-build-buzz-automatically/internal/storage"
)

// OpenStores connects the backend selected by cfg.Driver and returns its
// repositories together with a function releasing the connection.
func OpenStores(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (storage.Stores, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Driver {
	case "memory", "":
		logger.Warn("using in-memory store, data will not survive a restart")
		return storage.NewMemoryStores(), noop, nil

	case "postgres":
		logger.Info("connecting to database")
		db, err := Connect(ctx, cfg.DatabaseURL, DefaultPoolConfig())
		if err != nil {
			return storage.Stores{}, nil, err
		}
		logger.Info("database connected")

		if err := RunMigrations(ctx, db, logger); err != nil {
			db.Close()
			return storage.Stores{}, nil, fmt.Errorf("run migrations: %w", err)
		}

		stores := storage.Stores{
			Posts:    NewPostgresPostRepository(db),
			History:  NewPostgresHistoryRepository(db),
			Activity: NewPostgresActivityRepository(db),
			Health:   HealthCheck(db),
		}
		return stores, db.Close, nil

	case "mongo":
		logger.Info("connecting to mongo", "database", cfg.MongoDatabase)
		client, err := ConnectMongo(ctx, cfg.MongoURI, 10*time.Second)
		if err != nil {
			return storage.Stores{}, nil, err
		}

		db := client.Database(cfg.MongoDatabase)
		if err := EnsureMongoIndexes(ctx, db); err != nil {
			logger.Warn("failed to ensure mongo indexes, continuing anyway", "error", err)
		}

		ping := func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		}
		stores := storage.Stores{
			Posts:    NewMongoPostRepository(db),
			History:  NewMongoHistoryRepository(db),
			Activity: NewMongoActivityRepository(db),
			Health:   ping,
		}
		closeFn := func() error { return client.Disconnect(context.Background()) }
		return stores, closeFn, nil

	default:
		return storage.Stores{}, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
