// internal/app/store/links/linkstore.go
package linkstore

import (
	"context"
	"time"

	"github.com/dalemusser/kinhub/internal/app/system/apperrors"
	"github.com/dalemusser/kinhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store manages family_links. The partial unique index on pair_key
// (active links only) is the arbiter for double-linking; InsertActive
// relies on it rather than a read-then-write check.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("family_links")}
}

// InsertActive records an active link between the two families. A
// duplicate pair key means the pair is already linked.
func (s *Store) InsertActive(ctx context.Context, familyA, familyB, establishedBy primitive.ObjectID) (models.FamilyLink, error) {
	l := models.FamilyLink{
		ID:                       primitive.NewObjectID(),
		FamilyA:                  familyA,
		FamilyB:                  familyB,
		PairKey:                  models.LinkPairKey(familyA, familyB),
		EstablishedByPrincipalID: establishedBy,
		EstablishedAt:            time.Now().UTC(),
		Status:                   models.LinkActive,
	}
	if _, err := s.c.InsertOne(ctx, l); err != nil {
		if wafflemongo.IsDup(err) {
			return models.FamilyLink{}, apperrors.Conflict(apperrors.CodeAlreadyLinked,
				"these families are already linked")
		}
		return models.FamilyLink{}, apperrors.Transient("insert link failed", err)
	}
	return l, nil
}

// ActiveByPair returns the active link between two families, if any.
func (s *Store) ActiveByPair(ctx context.Context, a, b primitive.ObjectID) (models.FamilyLink, bool, error) {
	var l models.FamilyLink
	err := s.c.FindOne(ctx, bson.M{
		"pair_key": models.LinkPairKey(a, b),
		"status":   models.LinkActive,
	}).Decode(&l)
	if err == mongo.ErrNoDocuments {
		return models.FamilyLink{}, false, nil
	}
	if err != nil {
		return models.FamilyLink{}, false, apperrors.Transient("lookup link failed", err)
	}
	return l, true, nil
}

// ActiveForFamily returns every active link touching the family, newest
// first.
func (s *Store) ActiveForFamily(ctx context.Context, familyID primitive.ObjectID) ([]models.FamilyLink, error) {
	filter := bson.M{
		"status": models.LinkActive,
		"$or": []bson.M{
			{"family_a": familyID},
			{"family_b": familyID},
		},
	}
	opts := options.Find().SetSort(bson.D{{Key: "established_at", Value: -1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, apperrors.Transient("list links failed", err)
	}
	defer cur.Close(ctx)

	var out []models.FamilyLink
	if err := cur.All(ctx, &out); err != nil {
		return nil, apperrors.Transient("decode links failed", err)
	}
	return out, nil
}
