// internal/app/creation/creation.go
//
// Package creation drives family initialization and the guided setup
// steps. Each operation groups its writes into one transaction so a
// family never ends up with, say, mothers but no branches, or the
// parent step flagged without the branches it implies.
package creation

import (
	"context"

	"github.com/dalemusser/kinhub/internal/app/policy/familypolicy"
	branchstore "github.com/dalemusser/kinhub/internal/app/store/branches"
	familystore "github.com/dalemusser/kinhub/internal/app/store/families"
	flowstore "github.com/dalemusser/kinhub/internal/app/store/flows"
	memberstore "github.com/dalemusser/kinhub/internal/app/store/members"
	"github.com/dalemusser/kinhub/internal/app/system/apperrors"
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
	branches *branchstore.Store
	flows    *flowstore.Store
	notifier *notify.Dispatcher
	logger   *zap.Logger
}

// NewEngine wires the engine against the database. notifier may be nil;
// notifications are fire and forget either way.
func NewEngine(db *mongo.Database, notifier *notify.Dispatcher, logger *zap.Logger) *Engine {
	return &Engine{
		client:   db.Client(),
		families: familystore.New(db),
		members:  memberstore.New(db),
		branches: branchstore.New(db),
		flows:    flowstore.New(db),
		notifier: notifier,
		logger:   logger,
	}
}

// CreateFamilyInput carries the initialization payload. CreatorName and
// CreatorBirthYear describe the creator's own member record.
type CreateFamilyInput struct {
	Name             string
	CreationType     string
	CreatorName      string
	CreatorBirthYear int
}

// CreateFamilyResult bundles everything initialization produced.
type CreateFamilyResult struct {
	Family        models.Family
	CreatorMember models.Member
	Flow          models.CreationFlow
}

// CreateFamily initializes a new tree: the family record (flagged as
// the principal's main family), the creator's own member, and the
// creation-flow tracker, in one transaction. A principal that already
// has a main family cannot create another.
func (e *Engine) CreateFamily(ctx context.Context, principalID primitive.ObjectID, in CreateFamilyInput) (CreateFamilyResult, error) {
	in.Name = normalize.Name(in.Name)
	if in.Name == "" {
		return CreateFamilyResult{}, apperrors.Validation(apperrors.CodeInvalidInput, "family name is required")
	}
	creationType := normalize.CreationType(in.CreationType)
	if creationType != models.CreationOwnFamily && creationType != models.CreationParentsFamily {
		return CreateFamilyResult{}, apperrors.Validation(apperrors.CodeInvalidInput, "unknown creation type")
	}
	if normalize.Name(in.CreatorName) == "" {
		return CreateFamilyResult{}, apperrors.Validation(apperrors.CodeInvalidInput, "creator name is required")
	}

	has, err := e.families.HasMain(ctx, principalID)
	if err != nil {
		return CreateFamilyResult{}, err
	}
	if has {
		return CreateFamilyResult{}, apperrors.Conflict(apperrors.CodeDuplicateMainFamily,
			"principal already has a main family")
	}

	var res CreateFamilyResult
	err = txn.WithTransaction(ctx, e.client, func(ctx context.Context) error {
		fam, err := e.families.Create(ctx, models.Family{
			CreatorPrincipalID: principalID,
			Name:               in.Name,
			IsMainFamily:       true,
			CreationType:       creationType,
		})
		if err != nil {
			return err
		}

		// own_family roots the tree at the creator as father; a
		// parents_family tree roots at the creator's parents, so the
		// creator joins as an unassigned child until setup binds them.
		var creator models.Member
		if creationType == models.CreationOwnFamily {
			creator = models.NewFather(fam.ID, in.CreatorName, in.CreatorBirthYear)
		} else {
			creator = models.NewChild(fam.ID, in.CreatorName, in.CreatorBirthYear, nil)
		}
		creator.IsFamilyCreator = true
		creator.PrincipalID = &principalID

		created, err := e.members.Create(ctx, creator)
		if err != nil {
			return err
		}
		if err := e.families.SetCreatorJoinCode(ctx, fam.ID, created.JoinCode); err != nil {
			return err
		}
		fam.CreatorJoinCode = created.JoinCode

		flow, err := e.flows.CreateForFamily(ctx, fam.ID, principalID)
		if err != nil {
			return err
		}

		res = CreateFamilyResult{Family: fam, CreatorMember: created, Flow: flow}
		return nil
	})
	if err != nil {
		return CreateFamilyResult{}, err
	}

	e.logger.Info("family created",
		zap.String("family_id", res.Family.ID.Hex()),
		zap.String("creation_type", res.Family.CreationType))
	return res, nil
}

// ParentInput describes a father or mother in the guided parent step.
type ParentInput struct {
	FullName    string
	BirthYear   int
	SpouseOrder int // mothers only, 1-based
}

// SetupParentsResult reports what the parent step created.
type SetupParentsResult struct {
	Father   *models.Member
	Mothers  []models.Member
	Branches []models.Branch
}

// SetupParents performs the guided parent step: creates the father (when
// the creator is not already the root father), the mothers with their
// branches, and flags the step, all in one transaction.
//
// Spouse orders must be exactly 1..N; every mother must be born after
// the father.
func (e *Engine) SetupParents(ctx context.Context, familyID, principalID primitive.ObjectID, father *ParentInput, mothers []ParentInput) (SetupParentsResult, error) {
	fam, err := e.families.GetByID(ctx, familyID)
	if err != nil {
		return SetupParentsResult{}, err
	}
	if err := familypolicy.RequireCreator(fam, principalID); err != nil {
		return SetupParentsResult{}, err
	}

	flow, err := e.flows.GetByFamily(ctx, familyID)
	if err != nil {
		return SetupParentsResult{}, err
	}
	if flow.ParentsSetup {
		return SetupParentsResult{}, apperrors.Conflict(apperrors.CodeInvalidInput,
			"parents are already set up for this family")
	}
	if len(mothers) == 0 {
		return SetupParentsResult{}, apperrors.Validation(apperrors.CodeInvalidInput,
			"at least one mother is required")
	}
	if err := validateSpouseOrders(mothers); err != nil {
		return SetupParentsResult{}, err
	}

	fatherBirthYear, err := e.resolveFatherBirthYear(ctx, familyID, father)
	if err != nil {
		return SetupParentsResult{}, err
	}
	for _, m := range mothers {
		if m.BirthYear <= fatherBirthYear {
			return SetupParentsResult{}, apperrors.Validation(apperrors.CodeAgeOrderingViolation,
				"every mother must be born after the father").WithDetails(map[string]any{
				"father_birth_year": fatherBirthYear,
				"mother_birth_year": m.BirthYear,
			})
		}
	}

	var res SetupParentsResult
	err = txn.WithTransaction(ctx, e.client, func(ctx context.Context) error {
		if father != nil {
			created, err := e.members.Create(ctx, models.NewFather(familyID, father.FullName, father.BirthYear))
			if err != nil {
				return err
			}
			res.Father = &created
		}
		for _, in := range mothers {
			mother, err := e.members.Create(ctx, models.NewMother(familyID, in.FullName, in.BirthYear, in.SpouseOrder))
			if err != nil {
				return err
			}
			branch, err := e.branches.CreateForMother(ctx, familyID, mother.ID, in.SpouseOrder)
			if err != nil {
				return err
			}
			res.Mothers = append(res.Mothers, mother)
			res.Branches = append(res.Branches, branch)
		}
		return e.flows.MarkParentsSetup(ctx, familyID)
	})
	if err != nil {
		return SetupParentsResult{}, err
	}

	e.logger.Info("parents set up",
		zap.String("family_id", familyID.Hex()),
		zap.Int("mothers", len(res.Mothers)))
	e.notifyCreator(ctx, fam, notify.EventMemberAdded, map[string]string{
		notify.FieldFamilyName: fam.Name,
		notify.FieldStep:       models.StepParentSetup,
	})
	return res, nil
}

// ChildInput describes one child in the guided children step. MotherID
// may be nil for a child not yet bound to a branch.
type ChildInput struct {
	FullName  string
	BirthYear int
	MotherID  *primitive.ObjectID
}

// SetupChildren performs the guided children step: creates the children
// and flags the step in one transaction. An empty list is allowed; the
// step then simply completes.
func (e *Engine) SetupChildren(ctx context.Context, familyID, principalID primitive.ObjectID, children []ChildInput) ([]models.Member, error) {
	fam, err := e.families.GetByID(ctx, familyID)
	if err != nil {
		return nil, err
	}
	if err := familypolicy.RequireCreator(fam, principalID); err != nil {
		return nil, err
	}

	flow, err := e.flows.GetByFamily(ctx, familyID)
	if err != nil {
		return nil, err
	}
	if !flow.ParentsSetup {
		return nil, apperrors.Conflict(apperrors.CodeInvalidInput,
			"parents must be set up before children")
	}
	if flow.ChildrenSetup {
		return nil, apperrors.Conflict(apperrors.CodeInvalidInput,
			"children are already set up for this family")
	}

	var created []models.Member
	err = txn.WithTransaction(ctx, e.client, func(ctx context.Context) error {
		for _, in := range children {
			child, err := e.members.Create(ctx, models.NewChild(familyID, in.FullName, in.BirthYear, in.MotherID))
			if err != nil {
				return err
			}
			created = append(created, child)
		}
		return e.flows.MarkChildrenSetup(ctx, familyID)
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("children set up",
		zap.String("family_id", familyID.Hex()),
		zap.Int("children", len(created)))
	e.notifyCreator(ctx, fam, notify.EventMemberAdded, map[string]string{
		notify.FieldFamilyName: fam.Name,
		notify.FieldStep:       models.StepChildrenSetup,
	})
	return created, nil
}

// resolveFatherBirthYear returns the birth year the mothers are checked
// against: the supplied father's, or the existing root father's when the
// creator already anchors the tree.
func (e *Engine) resolveFatherBirthYear(ctx context.Context, familyID primitive.ObjectID, father *ParentInput) (int, error) {
	if father != nil {
		return father.BirthYear, nil
	}
	creator, err := e.members.CreatorOf(ctx, familyID)
	if err != nil {
		return 0, err
	}
	if creator.Role != models.RoleFather {
		return 0, apperrors.Validation(apperrors.CodeInvalidInput,
			"a father is required for this step")
	}
	return creator.BirthYear, nil
}

// validateSpouseOrders requires the orders to be exactly 1..N.
func validateSpouseOrders(mothers []ParentInput) error {
	seen := make(map[int]bool, len(mothers))
	for _, m := range mothers {
		if m.SpouseOrder < 1 || m.SpouseOrder > len(mothers) || seen[m.SpouseOrder] {
			return apperrors.Validation(apperrors.CodeInvalidSpouseOrder,
				"spouse orders must be the sequence 1..N with no gaps or duplicates")
		}
		seen[m.SpouseOrder] = true
	}
	return nil
}

func (e *Engine) notifyCreator(ctx context.Context, fam models.Family, kind string, fields map[string]string) {
	if e.notifier == nil {
		return
	}
	creator, err := e.members.CreatorOf(ctx, fam.ID)
	if err == nil && creator.ContactEmail != "" {
		fields[notify.FieldEmail] = creator.ContactEmail
	}
	e.notifier.Dispatch(fam.CreatorPrincipalID, kind, fields)
}
