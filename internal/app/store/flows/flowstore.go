// internal/app/store/flows/flowstore.go
package flowstore

import (
	"context"
	"time"

	"github.com/dalemusser/kinhub/internal/app/system/apperrors"
	"github.com/dalemusser/kinhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store manages creation_flows, one tracker document per family.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("creation_flows")}
}

// CreateForFamily starts the flow tracker for a new family. The unique
// index on family_id makes a second tracker a conflict.
func (s *Store) CreateForFamily(ctx context.Context, familyID, principalID primitive.ObjectID) (models.CreationFlow, error) {
	now := time.Now().UTC()
	f := models.CreationFlow{
		ID:          primitive.NewObjectID(),
		FamilyID:    familyID,
		PrincipalID: principalID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := s.c.InsertOne(ctx, f); err != nil {
		if wafflemongo.IsDup(err) {
			return models.CreationFlow{}, apperrors.Conflict(apperrors.CodeInvalidInput,
				"family already has a creation flow")
		}
		return models.CreationFlow{}, apperrors.Transient("insert creation flow failed", err)
	}
	return f, nil
}

// GetByFamily returns the family's flow tracker.
func (s *Store) GetByFamily(ctx context.Context, familyID primitive.ObjectID) (models.CreationFlow, error) {
	var f models.CreationFlow
	if err := s.c.FindOne(ctx, bson.M{"family_id": familyID}).Decode(&f); err != nil {
		if err == mongo.ErrNoDocuments {
			return models.CreationFlow{}, apperrors.NotFound(apperrors.CodeFlowNotFound,
				"family has no creation flow")
		}
		return models.CreationFlow{}, apperrors.Transient("load creation flow failed", err)
	}
	return f, nil
}

// MarkParentsSetup flags the parent step and the branch creation that
// rides along with it. Branches exist only because mothers do, and the
// guided parents step creates every mother together with her branch in
// one transaction, so both flags flip here. The derived step therefore
// moves straight from initialized to children_setup; completed would be
// unreachable if branches_created waited for a step of its own.
func (s *Store) MarkParentsSetup(ctx context.Context, familyID primitive.ObjectID) error {
	return s.setFlags(ctx, familyID, bson.M{
		"parents_setup":    true,
		"branches_created": true,
	})
}

// MarkChildrenSetup flags the children step.
func (s *Store) MarkChildrenSetup(ctx context.Context, familyID primitive.ObjectID) error {
	return s.setFlags(ctx, familyID, bson.M{"children_setup": true})
}

func (s *Store) setFlags(ctx context.Context, familyID primitive.ObjectID, flags bson.M) error {
	flags["updated_at"] = time.Now().UTC()
	res, err := s.c.UpdateOne(ctx, bson.M{"family_id": familyID}, bson.M{"$set": flags})
	if err != nil {
		return apperrors.Transient("update creation flow failed", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.NotFound(apperrors.CodeFlowNotFound, "family has no creation flow")
	}
	return nil
}
