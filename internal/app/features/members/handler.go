// internal/app/features/members/handler.go
package members

import (
	branchstore "github.com/dalemusser/kinhub/internal/app/store/branches"
	familystore "github.com/dalemusser/kinhub/internal/app/store/families"
	memberstore "github.com/dalemusser/kinhub/internal/app/store/members"
	"github.com/dalemusser/kinhub/internal/app/system/notify"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the feature-level entry point for member records inside a
// family: listing, ad hoc additions, display updates, and deletion.
type Handler struct {
	DB       *mongo.Database
	Log      *zap.Logger
	Notifier *notify.Dispatcher

	families *familystore.Store
	members  *memberstore.Store
	branches *branchstore.Store
}

// NewHandler constructs a members handler bound to a DB and logger.
// notifier may be nil.
func NewHandler(db *mongo.Database, notifier *notify.Dispatcher, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Log:      logger,
		Notifier: notifier,
		families: familystore.New(db),
		members:  memberstore.New(db),
		branches: branchstore.New(db),
	}
}
