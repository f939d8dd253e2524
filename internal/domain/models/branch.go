// internal/domain/models/branch.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Branch groups one mother's descendants. Exactly one branch per mother;
// branch_order is unique within a family and gives the left-to-right
// display order. It starts equal to the mother's spouse order but is kept
// as its own field so branches can be reordered independently.
type Branch struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FamilyID    primitive.ObjectID `bson:"family_id" json:"family_id"`
	MotherID    primitive.ObjectID `bson:"mother_id" json:"mother_id"`
	BranchOrder int                `bson:"branch_order" json:"branch_order"`
	BranchName  string             `bson:"branch_name" json:"branch_name"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
