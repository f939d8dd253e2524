package linkage_test

import (
	"testing"

	"github.com/dalemusser/kinhub/internal/app/linkage"
	linkstore "github.com/dalemusser/kinhub/internal/app/store/links"
	memberstore "github.com/dalemusser/kinhub/internal/app/store/members"
	"github.com/dalemusser/kinhub/internal/app/system/apperrors"
	"github.com/dalemusser/kinhub/internal/domain/models"
	"github.com/dalemusser/kinhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// linkedPair stages two families: the target with a father (the join
// code anchor), a mother, and a child; the caller with just its creator
// member. Returns the anchor father and the caller principal.
func linkedPair(t *testing.T, db *mongo.Database) (models.Member, primitive.ObjectID, models.Family, models.Family) {
	t.Helper()
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	targetPrincipal := primitive.NewObjectID()
	target := fixtures.CreateMainFamily(ctx, "Okafor Family", targetPrincipal)
	father := fixtures.CreateCreatorMember(ctx, target.ID, "Adewale Okafor", 1950, targetPrincipal)
	mother, branch := fixtures.CreateMother(ctx, target.ID, "Ngozi Okafor", 1955, 1)
	fixtures.CreateChild(ctx, target.ID, "Chidi Okafor", 1980, mother.ID, branch.ID)

	callerPrincipal := primitive.NewObjectID()
	caller := fixtures.CreateMainFamily(ctx, "Eze Family", callerPrincipal)
	fixtures.CreateCreatorMember(ctx, caller.ID, "Obi Eze", 1948, callerPrincipal)

	return father, callerPrincipal, caller, target
}

func TestEngine_LinkFamilies(t *testing.T) {
	db := testutil.SetupTestDB(t)
	engine := linkage.NewEngine(db, nil, zap.NewNop())
	members := memberstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	father, callerPrincipal, caller, target := linkedPair(t, db)

	res, err := engine.LinkFamilies(ctx, father.JoinCode, callerPrincipal)
	if err != nil {
		t.Fatalf("LinkFamilies failed: %v", err)
	}

	if res.Link.Status != models.LinkActive {
		t.Errorf("link status: got %q, want %q", res.Link.Status, models.LinkActive)
	}
	// Target has 3 members; the anchor father is excluded.
	if res.MirrorsInCaller != 2 {
		t.Errorf("mirrors in caller: got %d, want 2", res.MirrorsInCaller)
	}
	// Caller has only its creator member, which is excluded.
	if res.MirrorsInTarget != 0 {
		t.Errorf("mirrors in target: got %d, want 0", res.MirrorsInTarget)
	}

	// The anchor's code is consumed and carries no mirror itself.
	anchor, err := members.GetByID(ctx, father.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if !anchor.JoinCodeConsumed {
		t.Error("expected the anchor's join code to be consumed")
	}
	if anchor.MirroredAsMemberID != nil {
		t.Error("expected no mirror of the anchor member")
	}

	// Mirrors are flattened display copies with back-references.
	callerMembers, err := members.ByFamily(ctx, caller.ID)
	if err != nil {
		t.Fatalf("ByFamily failed: %v", err)
	}
	mirrors := 0
	for _, m := range callerMembers {
		if !m.IsLinkedMember {
			continue
		}
		mirrors++
		if m.OriginalMemberID == nil {
			t.Error("expected mirror to reference its original")
			continue
		}
		orig, err := members.GetByID(ctx, *m.OriginalMemberID)
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if orig.FamilyID != target.ID {
			t.Error("expected the original to live in the target family")
		}
		if orig.MirroredAsMemberID == nil || *orig.MirroredAsMemberID != m.ID {
			t.Error("expected the original to back-reference its mirror")
		}
		if m.MotherID != nil || m.BranchID != nil || m.IsRootMember {
			t.Error("expected mirrors to carry no structural fields")
		}
	}
	if mirrors != 2 {
		t.Errorf("linked members in caller family: got %d, want 2", mirrors)
	}
}

func TestEngine_LinkFamilies_ConsumedCodeReplay(t *testing.T) {
	db := testutil.SetupTestDB(t)
	engine := linkage.NewEngine(db, nil, zap.NewNop())
	links := linkstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	father, callerPrincipal, caller, target := linkedPair(t, db)

	if _, err := engine.LinkFamilies(ctx, father.JoinCode, callerPrincipal); err != nil {
		t.Fatalf("LinkFamilies failed: %v", err)
	}

	_, err := engine.LinkFamilies(ctx, father.JoinCode, callerPrincipal)
	if !apperrors.IsCode(err, apperrors.CodeJoinCodeAlreadyUsed) {
		t.Errorf("expected join_code_already_used, got %v", err)
	}

	// Still exactly one active relation for the pair.
	all, err := links.ActiveForFamily(ctx, caller.ID)
	if err != nil {
		t.Fatalf("ActiveForFamily failed: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("active links: got %d, want 1", len(all))
	}
	if _, found, err := links.ActiveByPair(ctx, caller.ID, target.ID); err != nil || !found {
		t.Errorf("expected the pair to remain linked (found=%v, err=%v)", found, err)
	}
}

func TestEngine_LinkFamilies_Preconditions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	engine := linkage.NewEngine(db, nil, zap.NewNop())
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	father, callerPrincipal, _, target := linkedPair(t, db)

	t.Run("unknown code", func(t *testing.T) {
		_, err := engine.LinkFamilies(ctx, "ZZZZ9999", callerPrincipal)
		if !apperrors.IsCode(err, apperrors.CodeInvalidJoinCode) {
			t.Errorf("expected invalid_join_code, got %v", err)
		}
	})

	t.Run("malformed code", func(t *testing.T) {
		_, err := engine.LinkFamilies(ctx, "short", callerPrincipal)
		if !apperrors.IsCode(err, apperrors.CodeInvalidJoinCode) {
			t.Errorf("expected invalid_join_code, got %v", err)
		}
	})

	t.Run("child code not eligible", func(t *testing.T) {
		mother, branch := fixtures.CreateMother(ctx, target.ID, "Amara Okafor", 1960, 2)
		child := fixtures.CreateChild(ctx, target.ID, "Nkem Okafor", 1985, mother.ID, branch.ID)
		_, err := engine.LinkFamilies(ctx, child.JoinCode, callerPrincipal)
		if !apperrors.IsCode(err, apperrors.CodeJoinCodeNotEligible) {
			t.Errorf("expected join_code_not_eligible, got %v", err)
		}
	})

	t.Run("caller without main family", func(t *testing.T) {
		_, err := engine.LinkFamilies(ctx, father.JoinCode, primitive.NewObjectID())
		if !apperrors.IsCode(err, apperrors.CodeNoMainFamily) {
			t.Errorf("expected no_main_family, got %v", err)
		}
	})

	t.Run("self link", func(t *testing.T) {
		_, err := engine.LinkFamilies(ctx, father.JoinCode, target.CreatorPrincipalID)
		if !apperrors.IsCode(err, apperrors.CodeSelfLinkForbidden) {
			t.Errorf("expected self_link_forbidden, got %v", err)
		}
	})
}

func TestEngine_LinkFamilies_AlreadyLinked(t *testing.T) {
	db := testutil.SetupTestDB(t)
	engine := linkage.NewEngine(db, nil, zap.NewNop())
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	father, callerPrincipal, _, target := linkedPair(t, db)

	if _, err := engine.LinkFamilies(ctx, father.JoinCode, callerPrincipal); err != nil {
		t.Fatalf("LinkFamilies failed: %v", err)
	}

	// A second unconsumed root code in the target family cannot re-link
	// the same pair.
	mother, _ := fixtures.CreateMother(ctx, target.ID, "Amara Okafor", 1960, 2)
	_, err := engine.LinkFamilies(ctx, mother.JoinCode, callerPrincipal)
	if !apperrors.IsCode(err, apperrors.CodeAlreadyLinked) {
		t.Errorf("expected already_linked, got %v", err)
	}
}
