// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown closes module services first so their queued remote writes reach
// the store, then tears down the backend clients.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	var firstErr error
	if deps.Modules != nil {
		logger.Info("closing module services", zap.Int("organizations", deps.Modules.Len()))
		if err := deps.Modules.Close(ctx); err != nil {
			logger.Error("module services close failed", zap.Error(err))
			firstErr = err
		}
	}
	if deps.Redis != nil {
		if err := deps.Redis.Close(); err != nil {
			logger.Error("redis close failed", zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	if deps.MongoClient != nil {
		logger.Info("disconnecting MongoDB client")
		if err := deps.MongoClient.Disconnect(ctx); err != nil {
			logger.Error("MongoDB disconnect failed", zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// disconnect releases whatever ConnectDB had opened before it failed.
func disconnect(deps DBDeps, logger *zap.Logger) {
	if deps.MongoClient != nil {
		if err := deps.MongoClient.Disconnect(context.Background()); err != nil {
			logger.Warn("MongoDB disconnect failed", zap.Error(err))
		}
	}
}
