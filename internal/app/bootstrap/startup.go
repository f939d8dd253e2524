// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/kinhub/internal/app/system/notify"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// notifier is the app-wide notification dispatcher. It is built in
// Startup, shared with feature handlers in BuildHandler, and stopped
// in Shutdown.
var notifier *notify.Dispatcher

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. KinHub
// uses it to construct and start the notification dispatcher with the
// backend chosen in config.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	var sender notify.Sender
	switch appCfg.NotifyBackend {
	case "ses":
		s, err := notify.NewSESSender(ctx, appCfg.SESRegion, appCfg.NotifyFrom, appCfg.NotifyFromName, logger)
		if err != nil {
			return fmt.Errorf("build SES sender: %w", err)
		}
		sender = s
	case "log":
		sender = &notify.LogSender{Log: logger}
	default:
		return fmt.Errorf("unknown notify_backend %q", appCfg.NotifyBackend)
	}

	notifier = notify.NewDispatcher(sender, logger, appCfg.NotifyBuffer)
	notifier.Start()
	logger.Info("notification dispatcher started",
		zap.String("backend", appCfg.NotifyBackend),
		zap.Int("buffer", appCfg.NotifyBuffer))
	return nil
}
