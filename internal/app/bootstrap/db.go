// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	orgstore "github.com/dalemusser/eduflow/internal/app/store/organizations"
	"github.com/dalemusser/eduflow/internal/app/store/records"
	"github.com/dalemusser/eduflow/internal/app/system/indexes"
	"github.com/dalemusser/eduflow/internal/app/system/modules"
	"github.com/dalemusser/eduflow/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB connects the configured record store and module cache and builds
// the module registry on top of them.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	var deps DBDeps

	switch appCfg.StoreBackend {
	case BackendMemory:
		logger.Info("using in-memory record store")
		deps.Records = records.NewMemory(logger)
	default:
		client, err := connectMongo(ctx, appCfg, logger)
		if err != nil {
			return DBDeps{}, err
		}
		deps.MongoClient = client
		deps.MongoDatabase = client.Database(appCfg.MongoDatabase)
		deps.Records = records.NewMongo(deps.MongoDatabase, logger)
	}

	var cache modules.Cache
	switch appCfg.ModuleCache {
	case CacheRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     appCfg.RedisAddr,
			Password: appCfg.RedisPassword,
			DB:       appCfg.RedisDB,
		})
		pctx, cancel := context.WithTimeout(ctx, timeouts.Ping())
		err := rdb.Ping(pctx).Err()
		cancel()
		if err != nil {
			_ = rdb.Close()
			disconnect(deps, logger)
			logger.Error("redis ping failed", zap.String("addr", appCfg.RedisAddr), zap.Error(err))
			return DBDeps{}, fmt.Errorf("redis %s: %w", appCfg.RedisAddr, err)
		}
		logger.Info("module cache on redis", zap.String("addr", appCfg.RedisAddr), zap.Int("db", appCfg.RedisDB))
		deps.Redis = rdb
		cache = modules.NewRedisCache(rdb)
	default:
		cache = modules.NewMemoryCache()
	}

	deps.Orgs = orgstore.New(deps.Records, logger)
	deps.Modules = modules.NewRegistry(cache, deps.Orgs, appCfg.CacheKeyFor, logger)
	return deps, nil
}

func connectMongo(ctx context.Context, appCfg AppConfig, logger *zap.Logger) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)

	cctx, cancel := context.WithTimeout(ctx, timeouts.Medium())
	defer cancel()

	client, err := mongo.Connect(cctx, opts)
	if err != nil {
		logger.Error("mongo connect failed", zap.Error(err))
		return nil, err
	}
	if err := client.Ping(cctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		logger.Error("mongo ping failed", zap.Error(err))
		return nil, err
	}
	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase),
		zap.Uint64("max_pool", appCfg.MongoMaxPoolSize))
	return client, nil
}

// EnsureSchema reconciles the indexes every scoped query relies on. The
// memory store needs none.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if deps.MongoDatabase == nil {
		return nil
	}
	ictx, cancel := timeouts.WithTimeout(ctx, timeouts.Long(), logger, "ensure indexes")
	defer cancel()
	if err := indexes.EnsureAll(ictx, deps.MongoDatabase); err != nil {
		logger.Error("index reconciliation failed", zap.Error(err))
		return err
	}
	return nil
}
