// internal/app/store/branches/branchstore.go
package branchstore

import (
	"context"
	"time"

	"github.com/dalemusser/kinhub/internal/app/system/apperrors"
	"github.com/dalemusser/kinhub/internal/app/system/ordinal"
	"github.com/dalemusser/kinhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store manages the branches collection. Branches are 1:1 with mothers
// and ordered within their family; both uniqueness rules are backed by
// indexes and surface here as conflicts.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("branches")}
}

// CreateForMother inserts the branch for a mother at the given order,
// named by ordinal ("First Wife's Branch", ...).
func (s *Store) CreateForMother(ctx context.Context, familyID, motherID primitive.ObjectID, order int) (models.Branch, error) {
	if order < 1 {
		return models.Branch{}, apperrors.Validation(apperrors.CodeInvalidInput,
			"branch order must be positive")
	}
	now := time.Now().UTC()
	b := models.Branch{
		ID:          primitive.NewObjectID(),
		FamilyID:    familyID,
		MotherID:    motherID,
		BranchOrder: order,
		BranchName:  ordinal.BranchName(order),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := s.c.InsertOne(ctx, b); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Branch{}, apperrors.Conflict(apperrors.CodeDuplicateBranchOrder,
				"a branch with this order or mother already exists in the family")
		}
		return models.Branch{}, apperrors.Transient("insert branch failed", err)
	}
	return b, nil
}

// ByFamily returns the family's branches in branch order.
func (s *Store) ByFamily(ctx context.Context, familyID primitive.ObjectID) ([]models.Branch, error) {
	opts := options.Find().SetSort(bson.D{{Key: "branch_order", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"family_id": familyID}, opts)
	if err != nil {
		return nil, apperrors.Transient("list branches failed", err)
	}
	defer cur.Close(ctx)

	var out []models.Branch
	if err := cur.All(ctx, &out); err != nil {
		return nil, apperrors.Transient("decode branches failed", err)
	}
	return out, nil
}

// GetByMother returns the mother's branch.
func (s *Store) GetByMother(ctx context.Context, motherID primitive.ObjectID) (models.Branch, error) {
	var b models.Branch
	if err := s.c.FindOne(ctx, bson.M{"mother_id": motherID}).Decode(&b); err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Branch{}, apperrors.NotFound(apperrors.CodeBranchNotFound, "mother has no branch")
		}
		return models.Branch{}, apperrors.Transient("load branch failed", err)
	}
	return b, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Branch, error) {
	var b models.Branch
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&b); err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Branch{}, apperrors.NotFound(apperrors.CodeBranchNotFound, "branch not found")
		}
		return models.Branch{}, apperrors.Transient("load branch failed", err)
	}
	return b, nil
}
