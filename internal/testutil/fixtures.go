package testutil

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/kinhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
// Repeated calls accumulate parameters on the same route context.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data. Fixtures
// insert directly into the collections so tests can stage exact
// documents without going through store validation.
type Fixtures struct {
	db  *mongo.Database
	t   *testing.T
	seq int
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// nextCode returns a fixture join code that satisfies the unique index
// without colliding across calls.
func (f *Fixtures) nextCode() string {
	f.seq++
	return fmt.Sprintf("TST%05d", f.seq)
}

// CreateFamily creates a test family with the given name and creator.
func (f *Fixtures) CreateFamily(ctx context.Context, name string, creator primitive.ObjectID) models.Family {
	f.t.Helper()

	now := time.Now().UTC()
	fam := models.Family{
		ID:                 primitive.NewObjectID(),
		CreatorPrincipalID: creator,
		Name:               name,
		NameCI:             text.Fold(name),
		CreatorJoinCode:    f.nextCode(),
		CreationType:       models.CreationOwnFamily,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if _, err := f.db.Collection("families").InsertOne(ctx, fam); err != nil {
		f.t.Fatalf("failed to create test family: %v", err)
	}
	return fam
}

// CreateMainFamily creates a test family flagged as the creator's main
// family.
func (f *Fixtures) CreateMainFamily(ctx context.Context, name string, creator primitive.ObjectID) models.Family {
	f.t.Helper()

	fam := f.CreateFamily(ctx, name, creator)
	_, err := f.db.Collection("families").UpdateByID(ctx, fam.ID,
		map[string]any{"$set": map[string]any{"is_main_family": true}})
	if err != nil {
		f.t.Fatalf("failed to flag main family: %v", err)
	}
	fam.IsMainFamily = true
	return fam
}

func (f *Fixtures) insertMember(ctx context.Context, m models.Member) models.Member {
	f.t.Helper()

	now := time.Now().UTC()
	m.ID = primitive.NewObjectID()
	m.FullNameCI = text.Fold(m.FullName)
	m.IsRootMember = m.IsRoot()
	if m.JoinCode == "" {
		m.JoinCode = f.nextCode()
	}
	m.CreatedAt = now
	m.UpdatedAt = now

	if _, err := f.db.Collection("family_members").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("failed to create test member: %v", err)
	}
	return m
}

// CreateFather creates a test father in the given family.
func (f *Fixtures) CreateFather(ctx context.Context, familyID primitive.ObjectID, name string, birthYear int) models.Member {
	f.t.Helper()
	return f.insertMember(ctx, models.NewFather(familyID, name, birthYear))
}

// CreateMother creates a test mother with the given spouse order, plus
// her branch.
func (f *Fixtures) CreateMother(ctx context.Context, familyID primitive.ObjectID, name string, birthYear, spouseOrder int) (models.Member, models.Branch) {
	f.t.Helper()

	mother := f.insertMember(ctx, models.NewMother(familyID, name, birthYear, spouseOrder))

	now := time.Now().UTC()
	branch := models.Branch{
		ID:          primitive.NewObjectID(),
		FamilyID:    familyID,
		MotherID:    mother.ID,
		BranchOrder: spouseOrder,
		BranchName:  fmt.Sprintf("Branch %d", spouseOrder),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := f.db.Collection("branches").InsertOne(ctx, branch); err != nil {
		f.t.Fatalf("failed to create test branch: %v", err)
	}
	return mother, branch
}

// CreateChild creates a test child bound to the mother's branch.
func (f *Fixtures) CreateChild(ctx context.Context, familyID primitive.ObjectID, name string, birthYear int, motherID, branchID primitive.ObjectID) models.Member {
	f.t.Helper()

	m := models.NewChild(familyID, name, birthYear, &motherID)
	m.BranchID = &branchID
	return f.insertMember(ctx, m)
}

// CreateCreatorMember creates the family's creator member (a root
// father by default) and returns it.
func (f *Fixtures) CreateCreatorMember(ctx context.Context, familyID primitive.ObjectID, name string, birthYear int, principalID primitive.ObjectID) models.Member {
	f.t.Helper()

	m := models.NewFather(familyID, name, birthYear)
	m.IsFamilyCreator = true
	m.PrincipalID = &principalID
	return f.insertMember(ctx, m)
}

// CreateFlow creates a creation-flow tracker for the family.
func (f *Fixtures) CreateFlow(ctx context.Context, familyID, principalID primitive.ObjectID) models.CreationFlow {
	f.t.Helper()

	now := time.Now().UTC()
	flow := models.CreationFlow{
		ID:          primitive.NewObjectID(),
		FamilyID:    familyID,
		PrincipalID: principalID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := f.db.Collection("creation_flows").InsertOne(ctx, flow); err != nil {
		f.t.Fatalf("failed to create test creation flow: %v", err)
	}
	return flow
}
