// internal/domain/models/family.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Creation types describe how a tree was started: rooted at the creator's
// own household, or at the creator's parents.
const (
	CreationOwnFamily     = "own_family"
	CreationParentsFamily = "parents_family"
)

// Family represents one genealogical tree rooted at its creator.
//
// NOTE:
//   - Members are not embedded; use the family_members collection.
//   - At most one family per creator_principal_id may have is_main_family
//     set. The partial unique index enforces it; SetMain demotes the
//     previous holder.
type Family struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatorPrincipalID primitive.ObjectID `bson:"creator_principal_id" json:"creator_principal_id"`
	Name               string             `bson:"name" json:"name"`
	NameCI             string             `bson:"name_ci" json:"name_ci"` // lowercase, diacritics-stripped
	CreatorJoinCode    string             `bson:"creator_join_code" json:"creator_join_code"`
	IsMainFamily       bool               `bson:"is_main_family" json:"is_main_family"`
	CreationType       string             `bson:"creation_type" json:"creation_type"` // own_family | parents_family

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
