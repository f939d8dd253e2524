package flowstore_test

import (
	"testing"

	flowstore "github.com/dalemusser/kinhub/internal/app/store/flows"
	"github.com/dalemusser/kinhub/internal/app/system/apperrors"
	"github.com/dalemusser/kinhub/internal/domain/models"
	"github.com/dalemusser/kinhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_CreateForFamily(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := flowstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	familyID := primitive.NewObjectID()
	flow, err := store.CreateForFamily(ctx, familyID, primitive.NewObjectID())
	if err != nil {
		t.Fatalf("CreateForFamily failed: %v", err)
	}
	if flow.CurrentStep() != models.StepInitialized {
		t.Errorf("step: got %q, want %q", flow.CurrentStep(), models.StepInitialized)
	}

	// One tracker per family.
	_, err = store.CreateForFamily(ctx, familyID, primitive.NewObjectID())
	if apperrors.KindOf(err) != apperrors.KindConflict {
		t.Errorf("expected conflict for second tracker, got %v", err)
	}
}

func TestStore_StepProgression(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := flowstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	familyID := primitive.NewObjectID()
	if _, err := store.CreateForFamily(ctx, familyID, primitive.NewObjectID()); err != nil {
		t.Fatalf("CreateForFamily failed: %v", err)
	}

	if err := store.MarkParentsSetup(ctx, familyID); err != nil {
		t.Fatalf("MarkParentsSetup failed: %v", err)
	}
	flow, err := store.GetByFamily(ctx, familyID)
	if err != nil {
		t.Fatalf("GetByFamily failed: %v", err)
	}
	if !flow.ParentsSetup || !flow.BranchesCreated {
		t.Error("expected parents_setup and branches_created after parent step")
	}
	if flow.CurrentStep() != models.StepChildrenSetup {
		t.Errorf("step: got %q, want %q", flow.CurrentStep(), models.StepChildrenSetup)
	}

	if err := store.MarkChildrenSetup(ctx, familyID); err != nil {
		t.Fatalf("MarkChildrenSetup failed: %v", err)
	}
	flow, err = store.GetByFamily(ctx, familyID)
	if err != nil {
		t.Fatalf("GetByFamily failed: %v", err)
	}
	if flow.CurrentStep() != models.StepCompleted {
		t.Errorf("step: got %q, want %q", flow.CurrentStep(), models.StepCompleted)
	}
}

func TestStore_MarkSteps_MissingFlow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := flowstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := store.MarkParentsSetup(ctx, primitive.NewObjectID())
	if !apperrors.IsCode(err, apperrors.CodeFlowNotFound) {
		t.Errorf("expected flow_not_found, got %v", err)
	}

	_, err = store.GetByFamily(ctx, primitive.NewObjectID())
	if !apperrors.IsCode(err, apperrors.CodeFlowNotFound) {
		t.Errorf("expected flow_not_found, got %v", err)
	}
}
