// internal/domain/models/member.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Member roles. A father or mother is a root member; children hang off a
// mother's branch.
const (
	RoleFather = "father"
	RoleMother = "mother"
	RoleChild  = "child"
)

// Member represents one person node inside exactly one family.
//
// Role payloads are mutually exclusive: SpouseOrder is set only for
// mothers, MotherID/BranchID only for children. Use NewFather, NewMother,
// and NewChild rather than filling the struct by hand so the combinations
// stay coherent.
type Member struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	FamilyID    primitive.ObjectID  `bson:"family_id" json:"family_id"`
	PrincipalID *primitive.ObjectID `bson:"principal_id,omitempty" json:"principal_id,omitempty"` // set when the member is a registered user

	FullName   string `bson:"full_name" json:"full_name"`
	FullNameCI string `bson:"full_name_ci" json:"full_name_ci"`

	Role        string              `bson:"role" json:"role"`
	SpouseOrder *int                `bson:"spouse_order,omitempty" json:"spouse_order,omitempty"` // mothers only, 1-based
	MotherID    *primitive.ObjectID `bson:"mother_id,omitempty" json:"mother_id,omitempty"`       // children only
	BranchID    *primitive.ObjectID `bson:"branch_id,omitempty" json:"branch_id,omitempty"`       // children only, resolved from the mother

	IsRootMember    bool `bson:"is_root_member" json:"is_root_member"`
	IsFamilyCreator bool `bson:"is_family_creator" json:"is_family_creator"`

	Relationship string `bson:"relationship,omitempty" json:"relationship,omitempty"` // display label, e.g. "Grandfather"
	BirthYear    int    `bson:"birth_year" json:"birth_year"`
	Deceased     bool   `bson:"deceased" json:"deceased"`
	DeathYear    *int   `bson:"death_year,omitempty" json:"death_year,omitempty"` // required iff deceased

	Verified     bool              `bson:"verified" json:"verified"`
	AvatarURL    string            `bson:"avatar_url,omitempty" json:"avatar_url,omitempty"`
	Bio          string            `bson:"bio,omitempty" json:"bio,omitempty"`
	ContactEmail string            `bson:"contact_email,omitempty" json:"contact_email,omitempty"`
	ContactPhone string            `bson:"contact_phone,omitempty" json:"contact_phone,omitempty"`
	SocialLinks  map[string]string `bson:"social_links,omitempty" json:"social_links,omitempty"`

	// Join codes are single-use capability tokens; unique across the store.
	JoinCode         string `bson:"join_code" json:"join_code"`
	JoinCodeConsumed bool   `bson:"join_code_consumed" json:"join_code_consumed"`

	// Mirror bookkeeping for linked families. Both references are weak:
	// lookup only, never traversed for cascading writes.
	IsLinkedMember     bool                `bson:"is_linked_member" json:"is_linked_member"`
	OriginalMemberID   *primitive.ObjectID `bson:"original_member_id,omitempty" json:"original_member_id,omitempty"`
	MirroredAsMemberID *primitive.ObjectID `bson:"mirrored_as_member_id,omitempty" json:"mirrored_as_member_id,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// NewFather returns a father-role member for the given family.
func NewFather(familyID primitive.ObjectID, fullName string, birthYear int) Member {
	return Member{
		FamilyID:     familyID,
		FullName:     fullName,
		Role:         RoleFather,
		IsRootMember: true,
		BirthYear:    birthYear,
	}
}

// NewMother returns a mother-role member with its 1-based spouse order.
func NewMother(familyID primitive.ObjectID, fullName string, birthYear, spouseOrder int) Member {
	return Member{
		FamilyID:     familyID,
		FullName:     fullName,
		Role:         RoleMother,
		SpouseOrder:  &spouseOrder,
		IsRootMember: true,
		BirthYear:    birthYear,
	}
}

// NewChild returns a child-role member. motherID may be nil for a child
// that has not been bound to a branch yet.
func NewChild(familyID primitive.ObjectID, fullName string, birthYear int, motherID *primitive.ObjectID) Member {
	return Member{
		FamilyID:  familyID,
		FullName:  fullName,
		Role:      RoleChild,
		MotherID:  motherID,
		BirthYear: birthYear,
	}
}

// IsRoot reports whether the role anchors the tree (father or mother).
func (m Member) IsRoot() bool {
	return m.Role == RoleFather || m.Role == RoleMother
}
