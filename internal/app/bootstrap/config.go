// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for KinHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: KINHUB_MONGO_URI, KINHUB_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "kinhub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "kinhub-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},

	// Notification configuration
	{Name: "notify_backend", Default: "log", Desc: "Notification backend: 'log' or 'ses'"},
	{Name: "notify_buffer", Default: 256, Desc: "Notification dispatch queue depth"},
	{Name: "notify_from", Default: "noreply@kinhub.example.com", Desc: "From email address for notifications"},
	{Name: "notify_from_name", Default: "KinHub", Desc: "From display name for notifications"},
	{Name: "ses_region", Default: "", Desc: "AWS region for SES (required when notify_backend is 'ses')"},

	// Base URL for links embedded in notifications
	{Name: "base_url", Default: "http://localhost:3000", Desc: "Base URL for notification links"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// It is called early in startup so that both WAFFLE and the app have
// access to configuration before any backends or handlers are built.
// CoreConfig comes from the shared WAFFLE layer; AppConfig is specific
// to this app and can be extended as the app grows.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, KINHUB_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "KINHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),
		SessionKey:       appValues.String("session_key"),
		SessionName:      appValues.String("session_name"),
		SessionDomain:    appValues.String("session_domain"),

		// Notifications
		NotifyBackend:  appValues.String("notify_backend"),
		NotifyBuffer:   appValues.Int("notify_buffer"),
		NotifyFrom:     appValues.String("notify_from"),
		NotifyFromName: appValues.String("notify_from_name"),
		SESRegion:      appValues.String("ses_region"),

		// Base URL
		BaseURL: appValues.String("base_url"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// This is the right place to enforce required fields or invariants that
// involve both the core and app configs.
//
// KinHub validates the MongoDB URI format to catch configuration errors
// early, before attempting to connect, and checks that the notification
// backend is one we know how to build.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	switch appCfg.NotifyBackend {
	case "log", "ses":
	default:
		return fmt.Errorf("unknown notify_backend %q (want 'log' or 'ses')", appCfg.NotifyBackend)
	}

	if appCfg.NotifyBackend == "ses" && appCfg.SESRegion == "" {
		return fmt.Errorf("notify_backend 'ses' requires ses_region to be set")
	}

	return nil
}
