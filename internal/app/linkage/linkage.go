// internal/app/linkage/linkage.go
//
// Package linkage merges two independently created family trees. A root
// member's unconsumed join code is the capability token: whoever holds
// it may link that member's family with their own main family. The merge
// consumes the code, records the link, and mirrors each family's members
// into the other as flattened display-only copies.
package linkage

import (
	"context"

	familystore "github.com/dalemusser/kinhub/internal/app/store/families"
	linkstore "github.com/dalemusser/kinhub/internal/app/store/links"
	memberstore "github.com/dalemusser/kinhub/internal/app/store/members"
	"github.com/dalemusser/kinhub/internal/app/system/apperrors"
	"github.com/dalemusser/kinhub/internal/app/system/joincode"
	"github.com/dalemusser/kinhub/internal/app/system/normalize"
	"github.com/dalemusser/kinhub/internal/app/system/notify"
	"github.com/dalemusser/kinhub/internal/app/system/txn"
	"github.com/dalemusser/kinhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Engine struct {
	client   *mongo.Client
	families *familystore.Store
	members  *memberstore.Store
	links    *linkstore.Store
	notifier *notify.Dispatcher
	logger   *zap.Logger
}

// NewEngine wires the engine against the database. notifier may be nil.
func NewEngine(db *mongo.Database, notifier *notify.Dispatcher, logger *zap.Logger) *Engine {
	return &Engine{
		client:   db.Client(),
		families: familystore.New(db),
		members:  memberstore.New(db),
		links:    linkstore.New(db),
		notifier: notifier,
		logger:   logger,
	}
}

// Result reports what a successful link produced.
type Result struct {
	Link            models.FamilyLink
	CallerFamily    models.Family
	TargetFamily    models.Family
	MirrorsInCaller int
	MirrorsInTarget int
}

// LinkFamilies validates the join code and merges the code owner's
// family with the caller's main family.
//
// Preconditions are checked in order, each with its own failure: the
// code resolves to a member, the code is unconsumed, the member is a
// root member, the caller has a main family distinct from the target,
// and the pair is not already linked. The mutation itself runs in one
// transaction: consume the code, insert the link, mirror members both
// ways, and stamp the back-references. Consuming the code first inside
// the transaction makes a retry of an already-merged code fail cleanly
// with join_code_already_used instead of re-running the merge.
func (e *Engine) LinkFamilies(ctx context.Context, code string, callerPrincipalID primitive.ObjectID) (Result, error) {
	code = normalize.JoinCode(code)
	if !joincode.Valid(code) {
		return Result{}, apperrors.Validation(apperrors.CodeInvalidJoinCode, "malformed join code")
	}

	anchor, err := e.members.GetByJoinCode(ctx, code)
	if err != nil {
		return Result{}, err
	}
	if anchor.JoinCodeConsumed {
		return Result{}, apperrors.Conflict(apperrors.CodeJoinCodeAlreadyUsed, "join code already consumed")
	}
	if !anchor.IsRoot() {
		return Result{}, apperrors.Validation(apperrors.CodeJoinCodeNotEligible,
			"only a root member's code can anchor a family link")
	}

	callerFam, err := e.families.MainByCreator(ctx, callerPrincipalID)
	if err != nil {
		return Result{}, err
	}
	if callerFam.ID == anchor.FamilyID {
		return Result{}, apperrors.Validation(apperrors.CodeSelfLinkForbidden,
			"a family cannot link to itself")
	}
	targetFam, err := e.families.GetByID(ctx, anchor.FamilyID)
	if err != nil {
		return Result{}, err
	}
	if _, linked, err := e.links.ActiveByPair(ctx, callerFam.ID, targetFam.ID); err != nil {
		return Result{}, err
	} else if linked {
		return Result{}, apperrors.Conflict(apperrors.CodeAlreadyLinked,
			"these families are already linked")
	}

	res := Result{CallerFamily: callerFam, TargetFamily: targetFam}
	err = txn.WithTransaction(ctx, e.client, func(ctx context.Context) error {
		if err := e.members.MarkJoinCodeConsumed(ctx, anchor.ID); err != nil {
			return err
		}

		link, err := e.links.InsertActive(ctx, callerFam.ID, targetFam.ID, callerPrincipalID)
		if err != nil {
			return err
		}
		res.Link = link

		callerCreator, err := e.members.CreatorOf(ctx, callerFam.ID)
		if err != nil {
			return err
		}

		// Target members mirror into the caller's family, minus the
		// anchor; caller members mirror into the target, minus the
		// caller's own creator member.
		res.MirrorsInCaller, err = e.mirrorMembers(ctx, targetFam.ID, callerFam.ID, anchor.ID)
		if err != nil {
			return err
		}
		res.MirrorsInTarget, err = e.mirrorMembers(ctx, callerFam.ID, targetFam.ID, callerCreator.ID)
		if err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	e.logger.Info("families linked",
		zap.String("caller_family_id", callerFam.ID.Hex()),
		zap.String("target_family_id", targetFam.ID.Hex()),
		zap.Int("mirrors_in_caller", res.MirrorsInCaller),
		zap.Int("mirrors_in_target", res.MirrorsInTarget))
	e.notify(ctx, callerFam, targetFam)
	e.notify(ctx, targetFam, callerFam)
	return res, nil
}

// mirrorMembers copies every member of srcFamily except excludeID into
// dstFamily as a flattened display-only mirror, and stamps the
// back-reference on each original. Members that are themselves mirrors
// are skipped so a chain of links never produces mirrors of mirrors.
func (e *Engine) mirrorMembers(ctx context.Context, srcFamily, dstFamily, excludeID primitive.ObjectID) (int, error) {
	src, err := e.members.ByFamily(ctx, srcFamily)
	if err != nil {
		return 0, err
	}

	n := 0
	for _, m := range src {
		if m.ID == excludeID || m.IsLinkedMember {
			continue
		}
		mirror := mirrorOf(m, dstFamily)
		created, err := e.members.Create(ctx, mirror)
		if err != nil {
			return 0, err
		}
		if err := e.members.SetMirrorRef(ctx, m.ID, created.ID); err != nil {
			return 0, err
		}
		n++
	}
	return n, nil
}

// mirrorOf builds the display-only copy: display fields carry over,
// structural fields (role payloads, creator and root flags) do not.
func mirrorOf(m models.Member, dstFamily primitive.ObjectID) models.Member {
	origID := m.ID
	return models.Member{
		FamilyID:         dstFamily,
		FullName:         m.FullName,
		Role:             models.RoleChild,
		Relationship:     m.Relationship,
		BirthYear:        m.BirthYear,
		Deceased:         m.Deceased,
		DeathYear:        m.DeathYear,
		Verified:         m.Verified,
		AvatarURL:        m.AvatarURL,
		Bio:              m.Bio,
		ContactEmail:     m.ContactEmail,
		ContactPhone:     m.ContactPhone,
		SocialLinks:      m.SocialLinks,
		IsLinkedMember:   true,
		OriginalMemberID: &origID,
	}
}

func (e *Engine) notify(ctx context.Context, fam, other models.Family) {
	if e.notifier == nil {
		return
	}
	fields := map[string]string{
		notify.FieldFamilyName:       fam.Name,
		notify.FieldLinkedFamilyName: other.Name,
	}
	if creator, err := e.members.CreatorOf(ctx, fam.ID); err == nil && creator.ContactEmail != "" {
		fields[notify.FieldEmail] = creator.ContactEmail
	}
	e.notifier.Dispatch(fam.CreatorPrincipalID, notify.EventFamiliesLinked, fields)
}
