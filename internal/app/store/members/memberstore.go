// internal/app/store/members/memberstore.go
//
// Package memberstore is the member ledger: every person node in every
// family lives in the family_members collection. The store owns the
// per-member invariants (role payloads, age ordering against the mother,
// branch stamping, join-code uniqueness and single use) so that both the
// ad hoc add paths and the guided setup go through the same checks.
package memberstore

import (
	"context"
	"time"

	"github.com/dalemusser/kinhub/internal/app/system/apperrors"
	"github.com/dalemusser/kinhub/internal/app/system/joincode"
	"github.com/dalemusser/kinhub/internal/app/system/normalize"
	"github.com/dalemusser/kinhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// insertAttempts bounds the code-reissue loop when an insert loses the
// uniqueness race on join_code.
const insertAttempts = 3

type Store struct {
	c        *mongo.Collection
	branches *mongo.Collection
	codes    *joincode.Issuer
}

func New(db *mongo.Database) *Store {
	s := &Store{
		c:        db.Collection("family_members"),
		branches: db.Collection("branches"),
	}
	s.codes = joincode.New(s.ExistsByJoinCode)
	return s
}

// ExistsByJoinCode reports whether any member holds the code, store-wide.
func (s *Store) ExistsByJoinCode(ctx context.Context, code string) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"join_code": code})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Create validates and inserts a member, issuing its join code. For a
// child with a mother reference it enforces the age-ordering rule and
// stamps the branch resolved from the mother. A duplicate-key insert on
// join_code is the commit-time uniqueness race; the store reissues and
// retries a bounded number of times.
func (s *Store) Create(ctx context.Context, m models.Member) (models.Member, error) {
	m.FullName = normalize.Name(m.FullName)
	m.FullNameCI = text.Fold(m.FullName)

	if err := s.validateRole(ctx, &m); err != nil {
		return models.Member{}, err
	}
	if m.Deceased && m.DeathYear == nil {
		return models.Member{}, apperrors.Validation(apperrors.CodeInvalidInput,
			"death year is required for a deceased member")
	}
	if !m.Deceased && m.DeathYear != nil {
		return models.Member{}, apperrors.Validation(apperrors.CodeInvalidInput,
			"death year is only allowed for a deceased member")
	}

	now := time.Now().UTC()
	m.IsRootMember = m.IsRoot()
	m.CreatedAt = now
	m.UpdatedAt = now

	for attempt := 0; attempt < insertAttempts; attempt++ {
		if m.JoinCode == "" {
			code, err := s.codes.Issue(ctx)
			if err != nil {
				return models.Member{}, err
			}
			m.JoinCode = code
		}
		m.ID = primitive.NewObjectID()
		_, err := s.c.InsertOne(ctx, m)
		if err == nil {
			return m, nil
		}
		if wafflemongo.IsDup(err) {
			// Lost the join-code race; draw again.
			m.JoinCode = ""
			continue
		}
		return models.Member{}, apperrors.Transient("insert member failed", err)
	}
	return models.Member{}, apperrors.New(apperrors.KindTransient, apperrors.CodeIssuanceExhausted,
		"could not insert member with a unique join code")
}

// validateRole enforces the role payload rules and, for children with a
// mother, the cross-document invariants.
func (s *Store) validateRole(ctx context.Context, m *models.Member) error {
	switch m.Role {
	case models.RoleFather:
		if m.SpouseOrder != nil || m.MotherID != nil || m.BranchID != nil {
			return apperrors.Validation(apperrors.CodeInvalidInput,
				"a father carries no spouse order or mother reference")
		}
	case models.RoleMother:
		if m.SpouseOrder == nil || *m.SpouseOrder < 1 {
			return apperrors.Validation(apperrors.CodeInvalidSpouseOrder,
				"a mother requires a positive spouse order")
		}
		if m.MotherID != nil || m.BranchID != nil {
			return apperrors.Validation(apperrors.CodeInvalidInput,
				"a mother carries no mother reference")
		}
	case models.RoleChild:
		if m.SpouseOrder != nil {
			return apperrors.Validation(apperrors.CodeInvalidInput,
				"a child carries no spouse order")
		}
		if m.MotherID == nil {
			// Unassigned child; bound to a branch later.
			m.BranchID = nil
			return nil
		}
		branchID, err := s.resolveChildBranch(ctx, m.FamilyID, *m.MotherID, m.BirthYear)
		if err != nil {
			return err
		}
		m.BranchID = &branchID
	default:
		return apperrors.Validation(apperrors.CodeInvalidInput, "unknown member role")
	}
	return nil
}

// resolveChildBranch checks the mother belongs to the family, enforces
// birthYear(child) > birthYear(mother), and returns the mother's branch.
func (s *Store) resolveChildBranch(ctx context.Context, familyID, motherID primitive.ObjectID, childBirthYear int) (primitive.ObjectID, error) {
	var mother models.Member
	if err := s.c.FindOne(ctx, bson.M{"_id": motherID}).Decode(&mother); err != nil {
		if err == mongo.ErrNoDocuments {
			return primitive.NilObjectID, apperrors.NotFound(apperrors.CodeMemberNotFound, "mother not found")
		}
		return primitive.NilObjectID, apperrors.Transient("load mother failed", err)
	}
	if mother.Role != models.RoleMother {
		return primitive.NilObjectID, apperrors.Validation(apperrors.CodeInvalidInput,
			"referenced member is not a mother")
	}
	if mother.FamilyID != familyID {
		return primitive.NilObjectID, apperrors.Validation(apperrors.CodeInvalidInput,
			"mother belongs to a different family")
	}
	if childBirthYear <= mother.BirthYear {
		return primitive.NilObjectID, apperrors.Validation(apperrors.CodeAgeOrderingViolation,
			"child must be born after the mother").WithDetails(map[string]any{
			"child_birth_year":  childBirthYear,
			"mother_birth_year": mother.BirthYear,
		})
	}

	var branch models.Branch
	if err := s.branches.FindOne(ctx, bson.M{"mother_id": motherID}).Decode(&branch); err != nil {
		if err == mongo.ErrNoDocuments {
			return primitive.NilObjectID, apperrors.NotFound(apperrors.CodeBranchNotFound, "mother has no branch")
		}
		return primitive.NilObjectID, apperrors.Transient("load branch failed", err)
	}
	return branch.ID, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Member, error) {
	var m models.Member
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&m); err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Member{}, apperrors.NotFound(apperrors.CodeMemberNotFound, "member not found")
		}
		return models.Member{}, apperrors.Transient("load member failed", err)
	}
	return m, nil
}

// GetByJoinCode resolves the member holding the code.
func (s *Store) GetByJoinCode(ctx context.Context, code string) (models.Member, error) {
	var m models.Member
	if err := s.c.FindOne(ctx, bson.M{"join_code": code}).Decode(&m); err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Member{}, apperrors.NotFound(apperrors.CodeInvalidJoinCode, "no member holds this join code")
		}
		return models.Member{}, apperrors.Transient("lookup by join code failed", err)
	}
	return m, nil
}

// ByFamily returns all members of a family, root members first, then by
// name.
func (s *Store) ByFamily(ctx context.Context, familyID primitive.ObjectID) ([]models.Member, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "is_root_member", Value: -1},
		{Key: "full_name_ci", Value: 1},
	})
	cur, err := s.c.Find(ctx, bson.M{"family_id": familyID}, opts)
	if err != nil {
		return nil, apperrors.Transient("list members failed", err)
	}
	defer cur.Close(ctx)

	var out []models.Member
	if err := cur.All(ctx, &out); err != nil {
		return nil, apperrors.Transient("decode members failed", err)
	}
	return out, nil
}

// MothersByFamily returns the family's mothers in spouse order.
func (s *Store) MothersByFamily(ctx context.Context, familyID primitive.ObjectID) ([]models.Member, error) {
	opts := options.Find().SetSort(bson.D{{Key: "spouse_order", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"family_id": familyID, "role": models.RoleMother}, opts)
	if err != nil {
		return nil, apperrors.Transient("list mothers failed", err)
	}
	defer cur.Close(ctx)

	var out []models.Member
	if err := cur.All(ctx, &out); err != nil {
		return nil, apperrors.Transient("decode mothers failed", err)
	}
	return out, nil
}

// CreatorOf returns the family's creator member.
func (s *Store) CreatorOf(ctx context.Context, familyID primitive.ObjectID) (models.Member, error) {
	var m models.Member
	err := s.c.FindOne(ctx, bson.M{"family_id": familyID, "is_family_creator": true}).Decode(&m)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Member{}, apperrors.NotFound(apperrors.CodeMemberNotFound, "family has no creator member")
		}
		return models.Member{}, apperrors.Transient("load creator member failed", err)
	}
	return m, nil
}

// UpdateFields is the set of mutable display fields on a member. Nil
// pointers leave the stored value untouched.
type UpdateFields struct {
	FullName     *string
	Relationship *string
	BirthYear    *int
	Deceased     *bool
	DeathYear    *int
	ClearDeath   bool
	AvatarURL    *string
	Bio          *string
	ContactEmail *string
	ContactPhone *string
	SocialLinks  map[string]string
	Verified     *bool
}

// Update applies display-field changes. Structural fields (role, family,
// mother, branch) are deliberately not updatable here.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd UpdateFields) (models.Member, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	unset := bson.M{}

	if upd.FullName != nil {
		name := normalize.Name(*upd.FullName)
		if name == "" {
			return models.Member{}, apperrors.Validation(apperrors.CodeInvalidInput, "full name cannot be empty")
		}
		set["full_name"] = name
		set["full_name_ci"] = text.Fold(name)
	}
	if upd.Relationship != nil {
		set["relationship"] = *upd.Relationship
	}
	if upd.BirthYear != nil {
		set["birth_year"] = *upd.BirthYear
	}
	if upd.Deceased != nil {
		set["deceased"] = *upd.Deceased
		if *upd.Deceased {
			if upd.DeathYear == nil {
				return models.Member{}, apperrors.Validation(apperrors.CodeInvalidInput,
					"death year is required for a deceased member")
			}
		} else {
			unset["death_year"] = ""
		}
	}
	if upd.DeathYear != nil {
		set["death_year"] = *upd.DeathYear
	}
	if upd.ClearDeath {
		unset["death_year"] = ""
		set["deceased"] = false
	}
	if upd.AvatarURL != nil {
		set["avatar_url"] = *upd.AvatarURL
	}
	if upd.Bio != nil {
		set["bio"] = *upd.Bio
	}
	if upd.ContactEmail != nil {
		set["contact_email"] = normalize.Email(*upd.ContactEmail)
	}
	if upd.ContactPhone != nil {
		set["contact_phone"] = *upd.ContactPhone
	}
	if upd.SocialLinks != nil {
		set["social_links"] = upd.SocialLinks
	}
	if upd.Verified != nil {
		set["verified"] = *upd.Verified
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	res := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After))
	var m models.Member
	if err := res.Decode(&m); err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Member{}, apperrors.NotFound(apperrors.CodeMemberNotFound, "member not found")
		}
		return models.Member{}, apperrors.Transient("update member failed", err)
	}
	return m, nil
}

// Delete removes a member. The family's creator member can never be
// deleted.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	m, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if m.IsFamilyCreator {
		return apperrors.Conflict(apperrors.CodeProtectedMemberDeletion,
			"the family creator member cannot be deleted")
	}
	if _, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "is_family_creator": false}); err != nil {
		return apperrors.Transient("delete member failed", err)
	}
	return nil
}

// MarkJoinCodeConsumed transitions join_code_consumed false -> true. The
// filter makes the transition atomic: a concurrent or repeated call finds
// no matching document and fails with join_code_already_used, which is
// the replay guard the linkage engine relies on.
func (s *Store) MarkJoinCodeConsumed(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "join_code_consumed": false},
		bson.M{"$set": bson.M{"join_code_consumed": true, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return apperrors.Transient("consume join code failed", err)
	}
	if res.MatchedCount == 0 {
		// Distinguish a missing member from an already-consumed code.
		if _, gerr := s.GetByID(ctx, id); gerr != nil {
			return gerr
		}
		return apperrors.Conflict(apperrors.CodeJoinCodeAlreadyUsed, "join code already consumed")
	}
	return nil
}

// SetMirrorRef stamps the weak back-reference from an original member to
// its mirror in the linked family.
func (s *Store) SetMirrorRef(ctx context.Context, originalID, mirrorID primitive.ObjectID) error {
	_, err := s.c.UpdateByID(ctx, originalID, bson.M{"$set": bson.M{
		"mirrored_as_member_id": mirrorID,
		"updated_at":            time.Now().UTC(),
	}})
	if err != nil {
		return apperrors.Transient("set mirror reference failed", err)
	}
	return nil
}
