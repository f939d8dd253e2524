// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown cleanly tears down the notification dispatcher and DB
// connections. The dispatcher is stopped first so queued events drain
// before the process exits.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if notifier != nil {
		logger.Info("stopping notification dispatcher",
			zap.Int64("dropped_events", notifier.Dropped()))
		notifier.Stop()
	}

	if deps.KinHubMongoClient != nil {
		logger.Info("disconnecting KinHub MongoDB client")
		if err := deps.KinHubMongoClient.Disconnect(ctx); err != nil {
			logger.Error("MongoDB disconnect failed", zap.Error(err))
			return err
		}
	}
	return nil
}
