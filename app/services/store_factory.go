package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/price-tracker/app/config"
)

// NewStore builds the backend named by store.driver. It is called once at
// startup and the result is injected into every service.
func NewStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (KVStore, error) {
	ns := cfg.Store.Namespace

	switch cfg.Store.Driver {
	case config.DriverMemory:
		return NewMemoryStore(logger), nil

	case config.DriverSQLite:
		store, err := NewSQLiteStore(ctx, cfg.Store.SQLitePath, ns, logger)
		if err != nil {
			return nil, err
		}
		return store, nil

	case config.DriverRedis:
		store, err := NewRedisStore(cfg.Redis.URL, ns, cfg.Redis.TTL, logger)
		if err != nil {
			return nil, err
		}
		return store, nil

	case config.DriverMongo:
		store, err := newMongoStoreFromConfig(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return store, nil

	case config.DriverHybrid:
		redisStore, err := NewRedisStore(cfg.Redis.URL, ns, cfg.Redis.TTL, logger)
		if err != nil {
			return nil, err
		}
		mongoStore, err := newMongoStoreFromConfig(ctx, cfg, logger)
		if err != nil {
			redisStore.Close()
			return nil, err
		}
		hybrid := NewHybridStore(redisStore, mongoStore, logger)
		if err := hybrid.WarmUp(ctx, cfg.Cache.L1Size/2); err != nil {
			logger.Warn("Failed to warm up cache", zap.Error(err))
		}
		return hybrid, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func newMongoStoreFromConfig(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*MongoStore, error) {
	client, err := ConnectMongo(ctx, cfg.Mongo.URL, logger)
	if err != nil {
		return nil, err
	}
	collection := client.Database(cfg.Mongo.Database).Collection(cfg.Mongo.Collection)
	store, err := NewMongoStore(ctx, client, collection, cfg.Store.Namespace, cfg.Cache.L1Size, logger)
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return store, nil
}
