// internal/app/features/families/handler.go
package families

import (
	"github.com/dalemusser/kinhub/internal/app/creation"
	branchstore "github.com/dalemusser/kinhub/internal/app/store/branches"
	familystore "github.com/dalemusser/kinhub/internal/app/store/families"
	flowstore "github.com/dalemusser/kinhub/internal/app/store/flows"
	linkstore "github.com/dalemusser/kinhub/internal/app/store/links"
	memberstore "github.com/dalemusser/kinhub/internal/app/store/members"
	"github.com/dalemusser/kinhub/internal/app/system/notify"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the feature-level entry point for families: creation, the
// aggregate view, main-family selection, and the guided setup steps.
type Handler struct {
	DB     *mongo.Database
	Log    *zap.Logger
	Engine *creation.Engine

	families *familystore.Store
	members  *memberstore.Store
	branches *branchstore.Store
	flows    *flowstore.Store
	links    *linkstore.Store
}

// NewHandler constructs a families handler bound to a DB and logger.
func NewHandler(db *mongo.Database, notifier *notify.Dispatcher, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Log:      logger,
		Engine:   creation.NewEngine(db, notifier, logger),
		families: familystore.New(db),
		members:  memberstore.New(db),
		branches: branchstore.New(db),
		flows:    flowstore.New(db),
		links:    linkstore.New(db),
	}
}
