// internal/app/features/links/handler.go
package links

import (
	"context"
	"net/http"

	"github.com/dalemusser/kinhub/internal/app/features/shared"
	"github.com/dalemusser/kinhub/internal/app/linkage"
	familystore "github.com/dalemusser/kinhub/internal/app/store/families"
	linkstore "github.com/dalemusser/kinhub/internal/app/store/links"
	"github.com/dalemusser/kinhub/internal/app/system/auth"
	"github.com/dalemusser/kinhub/internal/app/system/notify"
	"github.com/dalemusser/kinhub/internal/app/system/ratelimit"
	"github.com/dalemusser/kinhub/internal/app/system/timeouts"
	"github.com/dalemusser/kinhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the feature-level entry point for family linking.
type Handler struct {
	DB     *mongo.Database
	Log    *zap.Logger
	Engine *linkage.Engine

	families *familystore.Store
	links    *linkstore.Store
	limiter  *ratelimit.LinkLimiter
}

// NewHandler constructs a links handler bound to a DB and logger.
func NewHandler(db *mongo.Database, notifier *notify.Dispatcher, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Log:      logger,
		Engine:   linkage.NewEngine(db, notifier, logger),
		families: familystore.New(db),
		links:    linkstore.New(db),
		limiter:  ratelimit.NewLinkLimiter(),
	}
}

type linkRequest struct {
	JoinCode string `json:"join_code"`
}

type linkResponse struct {
	Link            models.FamilyLink `json:"link"`
	TargetFamily    models.Family     `json:"target_family"`
	MirrorsInCaller int               `json:"mirrors_in_caller"`
	MirrorsInTarget int               `json:"mirrors_in_target"`
}

// HandleLink handles POST /links: merges the join code owner's family
// with the caller's main family.
func (h *Handler) HandleLink(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	p, _ := auth.CurrentPrincipal(r)

	// Join codes are guessable in principle, so redemption attempts are
	// throttled per IP and per account.
	if allowed, reason := h.limiter.Check(r, p.ID.Hex()); !allowed {
		shared.WriteJSON(w, http.StatusTooManyRequests, map[string]string{
			"code":    "rate_limited",
			"message": reason,
		})
		return
	}

	var req linkRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}

	res, err := h.Engine.LinkFamilies(ctx, req.JoinCode, p.ID)
	if err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}
	h.limiter.ResetPrincipal(p.ID.Hex())

	shared.WriteJSON(w, http.StatusCreated, linkResponse{
		Link:            res.Link,
		TargetFamily:    res.TargetFamily,
		MirrorsInCaller: res.MirrorsInCaller,
		MirrorsInTarget: res.MirrorsInTarget,
	})
}

// ServeList handles GET /links: the active links touching the caller's
// main family.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, _ := auth.CurrentPrincipal(r)

	fam, err := h.families.MainByCreator(ctx, p.ID)
	if err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}
	links, err := h.links.ActiveForFamily(ctx, fam.ID)
	if err != nil {
		shared.WriteError(w, h.Log, err)
		return
	}
	if links == nil {
		links = []models.FamilyLink{}
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"links": links})
}
