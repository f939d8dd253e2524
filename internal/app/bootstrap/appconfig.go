// internal/app/bootstrap/appconfig.go
package bootstrap

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like HTTP/HTTPS
// ports, TLS, logging level, CORS, and request body limits. AppConfig is
// where everything specific to KinHub lives: the MongoDB connection,
// session cookies, and the notification backend.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions (default: kinhub-session)
	SessionDomain string // Cookie domain (blank means current host)

	// Notification configuration
	NotifyBackend  string // "log" or "ses"
	NotifyBuffer   int    // Dispatch queue depth before events are dropped
	NotifyFrom     string // From email address for SES notifications
	NotifyFromName string // From display name (e.g., KinHub)
	SESRegion      string // AWS region for SES (only used if NotifyBackend is "ses")

	// Base URL used when composing notification links
	BaseURL string // e.g., "https://kinhub.example.com" or "http://localhost:3000"
}
