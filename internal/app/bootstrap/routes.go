// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	familiesfeature "github.com/dalemusser/kinhub/internal/app/features/families"
	healthfeature "github.com/dalemusser/kinhub/internal/app/features/health"
	linksfeature "github.com/dalemusser/kinhub/internal/app/features/links"
	membersfeature "github.com/dalemusser/kinhub/internal/app/features/members"
	"github.com/dalemusser/kinhub/internal/app/system/auth"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. At this point you have access to:
//   - coreCfg: WAFFLE core configuration (ports, env, timeouts, etc.)
//   - appCfg: app-specific configuration defined in AppConfig
//   - deps: any DB or backend clients bundled in DBDeps
//   - logger: the fully configured zap.Logger for this app
//
// KinHub applies session middleware, mounts the health endpoint, and
// mounts feature routers for families (with member routes nested under
// each family) and family links.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionReader, err := auth.NewSessionReader(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session reader init failed", zap.Error(err))
		return nil, err
	}

	r := chi.NewRouter()

	// Global auth middleware: loads the Principal into context if a
	// valid session cookie is present. Handlers that require a signed-in
	// caller add auth.RequirePrincipal on top of this.
	r.Use(sessionReader.LoadPrincipal)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.KinHubMongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Families, with member management nested under each family
	membersHandler := membersfeature.NewHandler(deps.KinHubMongoDatabase, notifier, logger)
	familiesHandler := familiesfeature.NewHandler(deps.KinHubMongoDatabase, notifier, logger)
	r.Mount("/families", familiesfeature.Routes(familiesHandler, membersfeature.Routes(membersHandler)))

	// Family linking
	linksHandler := linksfeature.NewHandler(deps.KinHubMongoDatabase, notifier, logger)
	r.Mount("/links", linksfeature.Routes(linksHandler))

	return r, nil
}
