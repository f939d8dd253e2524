package memberstore_test

import (
	"testing"

	memberstore "github.com/dalemusser/kinhub/internal/app/store/members"
	"github.com/dalemusser/kinhub/internal/app/system/apperrors"
	"github.com/dalemusser/kinhub/internal/app/system/joincode"
	"github.com/dalemusser/kinhub/internal/domain/models"
	"github.com/dalemusser/kinhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Create_Father(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := memberstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	familyID := primitive.NewObjectID()
	created, err := store.Create(ctx, models.NewFather(familyID, "Adewale Okafor", 1950))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if !created.IsRootMember {
		t.Error("expected father to be a root member")
	}
	if !joincode.Valid(created.JoinCode) {
		t.Errorf("expected a valid join code, got %q", created.JoinCode)
	}
	if created.JoinCodeConsumed {
		t.Error("expected a fresh join code to be unconsumed")
	}
}

func TestStore_Create_MotherRequiresSpouseOrder(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := memberstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	m := models.NewFather(primitive.NewObjectID(), "Ngozi Okafor", 1955)
	m.Role = models.RoleMother
	m.IsRootMember = false

	_, err := store.Create(ctx, m)
	if !apperrors.IsCode(err, apperrors.CodeInvalidSpouseOrder) {
		t.Errorf("expected invalid_spouse_order, got %v", err)
	}
}

func TestStore_Create_ChildResolvesBranch(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := memberstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	familyID := primitive.NewObjectID()
	mother, branch := fixtures.CreateMother(ctx, familyID, "Ngozi Okafor", 1955, 1)

	created, err := store.Create(ctx, models.NewChild(familyID, "Chidi Okafor", 1980, &mother.ID))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.BranchID == nil || *created.BranchID != branch.ID {
		t.Error("expected child to be stamped with the mother's branch")
	}
	if created.IsRootMember {
		t.Error("expected child not to be a root member")
	}
}

func TestStore_Create_ChildAgeOrdering(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := memberstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	familyID := primitive.NewObjectID()
	mother, _ := fixtures.CreateMother(ctx, familyID, "Ngozi Okafor", 1955, 1)

	// Born the same year as the mother.
	_, err := store.Create(ctx, models.NewChild(familyID, "Chidi Okafor", 1955, &mother.ID))
	if !apperrors.IsCode(err, apperrors.CodeAgeOrderingViolation) {
		t.Errorf("expected age_ordering_violation, got %v", err)
	}
	if apperrors.KindOf(err) != apperrors.KindValidation {
		t.Errorf("expected validation kind, got %v", apperrors.KindOf(err))
	}
}

func TestStore_Create_ChildMotherInOtherFamily(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := memberstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	mother, _ := fixtures.CreateMother(ctx, primitive.NewObjectID(), "Ngozi Okafor", 1955, 1)

	_, err := store.Create(ctx, models.NewChild(primitive.NewObjectID(), "Chidi Okafor", 1980, &mother.ID))
	if !apperrors.IsCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("expected invalid_input for cross-family mother, got %v", err)
	}
}

func TestStore_Create_DeceasedRequiresDeathYear(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := memberstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	m := models.NewFather(primitive.NewObjectID(), "Adewale Okafor", 1920)
	m.Deceased = true

	_, err := store.Create(ctx, m)
	if !apperrors.IsCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("expected invalid_input, got %v", err)
	}
}

func TestStore_GetByJoinCode(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := memberstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.NewFather(primitive.NewObjectID(), "Adewale Okafor", 1950))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := store.GetByJoinCode(ctx, created.JoinCode)
	if err != nil {
		t.Fatalf("GetByJoinCode failed: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("resolved member: got %s, want %s", got.ID.Hex(), created.ID.Hex())
	}

	_, err = store.GetByJoinCode(ctx, "ZZZZ9999")
	if !apperrors.IsCode(err, apperrors.CodeInvalidJoinCode) {
		t.Errorf("expected invalid_join_code, got %v", err)
	}
}

func TestStore_MarkJoinCodeConsumed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := memberstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.NewFather(primitive.NewObjectID(), "Adewale Okafor", 1950))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.MarkJoinCodeConsumed(ctx, created.ID); err != nil {
		t.Fatalf("MarkJoinCodeConsumed failed: %v", err)
	}

	// A second consumption of the same code is the replay case.
	err = store.MarkJoinCodeConsumed(ctx, created.ID)
	if !apperrors.IsCode(err, apperrors.CodeJoinCodeAlreadyUsed) {
		t.Errorf("expected join_code_already_used, got %v", err)
	}
}

func TestStore_Update(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := memberstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.NewFather(primitive.NewObjectID(), "Adewale Okafor", 1950))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	bio := "Family patriarch."
	deceased := true
	deathYear := 2020
	updated, err := store.Update(ctx, created.ID, memberstore.UpdateFields{
		Bio:       &bio,
		Deceased:  &deceased,
		DeathYear: &deathYear,
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Bio != bio {
		t.Errorf("bio: got %q, want %q", updated.Bio, bio)
	}
	if !updated.Deceased || updated.DeathYear == nil || *updated.DeathYear != deathYear {
		t.Error("expected deceased with death year set")
	}

	// Deceased without a death year must be rejected.
	fresh, err := store.Create(ctx, models.NewFather(primitive.NewObjectID(), "Emeka Okafor", 1948))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	_, err = store.Update(ctx, fresh.ID, memberstore.UpdateFields{Deceased: &deceased})
	if !apperrors.IsCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("expected invalid_input, got %v", err)
	}
}

func TestStore_Delete_ProtectsCreator(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := memberstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	familyID := primitive.NewObjectID()
	creator := fixtures.CreateCreatorMember(ctx, familyID, "Adewale Okafor", 1950, primitive.NewObjectID())

	err := store.Delete(ctx, creator.ID)
	if !apperrors.IsCode(err, apperrors.CodeProtectedMemberDeletion) {
		t.Errorf("expected protected_member_deletion, got %v", err)
	}

	other := fixtures.CreateFather(ctx, primitive.NewObjectID(), "Emeka Okafor", 1948)
	if err := store.Delete(ctx, other.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	_, err = store.GetByID(ctx, other.ID)
	if !apperrors.IsCode(err, apperrors.CodeMemberNotFound) {
		t.Errorf("expected member_not_found after delete, got %v", err)
	}
}

func TestStore_MothersByFamily_SpouseOrder(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := memberstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	familyID := primitive.NewObjectID()
	fixtures.CreateMother(ctx, familyID, "Second Mother", 1960, 2)
	fixtures.CreateMother(ctx, familyID, "First Mother", 1955, 1)

	mothers, err := store.MothersByFamily(ctx, familyID)
	if err != nil {
		t.Fatalf("MothersByFamily failed: %v", err)
	}
	if len(mothers) != 2 {
		t.Fatalf("expected 2 mothers, got %d", len(mothers))
	}
	if *mothers[0].SpouseOrder != 1 || *mothers[1].SpouseOrder != 2 {
		t.Error("expected mothers sorted by spouse order")
	}
}
