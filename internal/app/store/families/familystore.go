// internal/app/store/families/familystore.go
package familystore

import (
	"context"
	"time"

	"github.com/dalemusser/kinhub/internal/app/system/apperrors"
	"github.com/dalemusser/kinhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("families")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Family, error) {
	var f models.Family
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&f); err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Family{}, apperrors.NotFound(apperrors.CodeFamilyNotFound, "family not found")
		}
		return models.Family{}, apperrors.Transient("load family failed", err)
	}
	return f, nil
}

// MainByCreator returns the principal's main family.
func (s *Store) MainByCreator(ctx context.Context, principalID primitive.ObjectID) (models.Family, error) {
	var f models.Family
	err := s.c.FindOne(ctx, bson.M{
		"creator_principal_id": principalID,
		"is_main_family":       true,
	}).Decode(&f)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Family{}, apperrors.NotFound(apperrors.CodeNoMainFamily, "principal has no main family")
		}
		return models.Family{}, apperrors.Transient("load main family failed", err)
	}
	return f, nil
}

// HasMain reports whether the principal already owns a main family.
func (s *Store) HasMain(ctx context.Context, principalID primitive.ObjectID) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{
		"creator_principal_id": principalID,
		"is_main_family":       true,
	})
	if err != nil {
		return false, apperrors.Transient("count main families failed", err)
	}
	return n > 0, nil
}

// Create inserts a family. The partial unique index on
// (creator_principal_id, is_main_family=true) backs the one-main-family
// invariant; a duplicate-key insert surfaces as duplicate_main_family.
func (s *Store) Create(ctx context.Context, f models.Family) (models.Family, error) {
	now := time.Now().UTC()
	f.ID = primitive.NewObjectID()
	f.NameCI = text.Fold(f.Name)
	f.CreatedAt = now
	f.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, f); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Family{}, apperrors.Conflict(apperrors.CodeDuplicateMainFamily,
				"principal already owns a main family")
		}
		return models.Family{}, apperrors.Transient("insert family failed", err)
	}
	return f, nil
}

// SetMain promotes the given family to the principal's main family,
// demoting any prior holder first. Run inside a transaction so the
// demote and promote land together.
func (s *Store) SetMain(ctx context.Context, familyID, principalID primitive.ObjectID) error {
	now := time.Now().UTC()

	if _, err := s.c.UpdateMany(ctx,
		bson.M{
			"creator_principal_id": principalID,
			"is_main_family":       true,
			"_id":                  bson.M{"$ne": familyID},
		},
		bson.M{"$set": bson.M{"is_main_family": false, "updated_at": now}},
	); err != nil {
		return apperrors.Transient("demote prior main family failed", err)
	}

	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": familyID, "creator_principal_id": principalID},
		bson.M{"$set": bson.M{"is_main_family": true, "updated_at": now}},
	)
	if err != nil {
		return apperrors.Transient("promote main family failed", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.NotFound(apperrors.CodeFamilyNotFound, "family not found for principal")
	}
	return nil
}

// UpdateName renames the family.
func (s *Store) UpdateName(ctx context.Context, id primitive.ObjectID, name string) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"name":       name,
		"name_ci":    text.Fold(name),
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return apperrors.Transient("rename family failed", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.NotFound(apperrors.CodeFamilyNotFound, "family not found")
	}
	return nil
}

// SetCreatorJoinCode stamps the creator member's join code onto the
// family once the member exists.
func (s *Store) SetCreatorJoinCode(ctx context.Context, id primitive.ObjectID, code string) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"creator_join_code": code,
		"updated_at":        time.Now().UTC(),
	}})
	if err != nil {
		return apperrors.Transient("set creator join code failed", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.NotFound(apperrors.CodeFamilyNotFound, "family not found")
	}
	return nil
}
