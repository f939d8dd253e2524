// internal/domain/models/familylink.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Link statuses.
const (
	LinkActive   = "active"
	LinkInactive = "inactive"
)

// FamilyLink is the undirected edge between two linked families. The pair
// is stored unordered; PairKey is the sorted hex concatenation of the two
// ids and backs the partial unique index that forbids duplicate active
// links.
type FamilyLink struct {
	ID                       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FamilyA                  primitive.ObjectID `bson:"family_a" json:"family_a"`
	FamilyB                  primitive.ObjectID `bson:"family_b" json:"family_b"`
	PairKey                  string             `bson:"pair_key" json:"-"`
	EstablishedByPrincipalID primitive.ObjectID `bson:"established_by_principal_id" json:"established_by_principal_id"`
	EstablishedAt            time.Time          `bson:"established_at" json:"established_at"`
	Status                   string             `bson:"status" json:"status"` // active | inactive
}

// LinkPairKey returns the canonical unordered key for two family ids.
func LinkPairKey(a, b primitive.ObjectID) string {
	ah, bh := a.Hex(), b.Hex()
	if bh < ah {
		ah, bh = bh, ah
	}
	return ah + ":" + bh
}
