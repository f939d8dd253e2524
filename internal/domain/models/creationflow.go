// internal/domain/models/creationflow.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Guided-setup step names, derived from how many step booleans are set.
const (
	StepInitialized   = "initialized"
	StepParentSetup   = "parent_setup"
	StepChildrenSetup = "children_setup"
	StepCompleted     = "completed"
)

// CreationFlow records how far a family's guided setup has progressed.
// One document per family. The step booleans are the only stored facts;
// the current step is always computed from them, never persisted.
type CreationFlow struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FamilyID    primitive.ObjectID `bson:"family_id" json:"family_id"`
	PrincipalID primitive.ObjectID `bson:"principal_id" json:"principal_id"`

	ParentsSetup    bool `bson:"parents_setup" json:"parents_setup"`
	ChildrenSetup   bool `bson:"children_setup" json:"children_setup"`
	BranchesCreated bool `bson:"branches_created" json:"branches_created"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// CurrentStep derives the step name from the number of completed steps.
func (f CreationFlow) CurrentStep() string {
	n := 0
	for _, done := range []bool{f.ParentsSetup, f.ChildrenSetup, f.BranchesCreated} {
		if done {
			n++
		}
	}
	switch n {
	case 0:
		return StepInitialized
	case 1:
		return StepParentSetup
	case 2:
		return StepChildrenSetup
	default:
		return StepCompleted
	}
}
