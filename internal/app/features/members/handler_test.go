package members_test

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/dalemusser/kinhub/internal/app/features/members"
	branchstore "github.com/dalemusser/kinhub/internal/app/store/branches"
	"github.com/dalemusser/kinhub/internal/app/system/auth"
	"github.com/dalemusser/kinhub/internal/domain/models"
	"github.com/dalemusser/kinhub/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func stageFamily(t *testing.T, db *mongo.Database) (*auth.Principal, models.Family) {
	t.Helper()
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := testutil.TestPrincipal()
	fam := fixtures.CreateMainFamily(ctx, "Okafor Family", p.ID)
	fixtures.CreateCreatorMember(ctx, fam.ID, "Adewale Okafor", 1950, p.ID)
	return p, fam
}

func TestHandleAdd_MotherCreatesBranch(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := members.NewHandler(db, nil, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p, fam := stageFamily(t, db)

	body := `{"role":"mother","full_name":"Ngozi Okafor","birth_year":1955,"spouse_order":1}`
	req := testutil.NewAuthenticatedRequest(http.MethodPost, "/", strings.NewReader(body), p)
	req = testutil.WithChiURLParam(req, "familyID", fam.ID.Hex())
	rec := testutil.NewRecorder()

	h.HandleAdd(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusCreated)

	var created models.Member
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if created.Role != models.RoleMother || created.SpouseOrder == nil || *created.SpouseOrder != 1 {
		t.Error("expected a mother with spouse order 1")
	}

	branch, err := branchstore.New(db).GetByMother(ctx, created.ID)
	if err != nil {
		t.Fatalf("expected the mother's branch to exist: %v", err)
	}
	if branch.BranchName != "First Wife's Branch" {
		t.Errorf("branch name: got %q", branch.BranchName)
	}
}

func TestHandleAdd_SanitizesBio(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := members.NewHandler(db, nil, zap.NewNop())

	p, fam := stageFamily(t, db)

	body := `{"role":"father","full_name":"Emeka Okafor","birth_year":1948,
		"bio":"<p>Elder</p><script>alert('xss')</script>",
		"relationship":"<b>Grandfather</b>"}`
	req := testutil.NewAuthenticatedRequest(http.MethodPost, "/", strings.NewReader(body), p)
	req = testutil.WithChiURLParam(req, "familyID", fam.ID.Hex())
	rec := testutil.NewRecorder()

	h.HandleAdd(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusCreated)

	var created models.Member
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if strings.Contains(created.Bio, "script") {
		t.Errorf("bio not sanitized: %q", created.Bio)
	}
	if created.Relationship != "Grandfather" {
		t.Errorf("relationship not stripped: %q", created.Relationship)
	}
}

func TestHandleAdd_MalformedContactEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := members.NewHandler(db, nil, zap.NewNop())

	p, fam := stageFamily(t, db)

	body := `{"role":"father","full_name":"Emeka Okafor","birth_year":1948,
		"contact_email":"not-an-email"}`
	req := testutil.NewAuthenticatedRequest(http.MethodPost, "/", strings.NewReader(body), p)
	req = testutil.WithChiURLParam(req, "familyID", fam.ID.Hex())
	rec := testutil.NewRecorder()

	h.HandleAdd(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusUnprocessableEntity)
	rec.AssertContains(t, "contact email")
}

func TestHandleAdd_NotCreator(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := members.NewHandler(db, nil, zap.NewNop())

	_, fam := stageFamily(t, db)

	body := `{"role":"father","full_name":"Intruder","birth_year":1940}`
	req := testutil.NewAuthenticatedRequest(http.MethodPost, "/", strings.NewReader(body), testutil.TestPrincipal())
	req = testutil.WithChiURLParam(req, "familyID", fam.ID.Hex())
	rec := testutil.NewRecorder()

	h.HandleAdd(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusForbidden)
}

func TestHandleUpdate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := members.NewHandler(db, nil, zap.NewNop())
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p, fam := stageFamily(t, db)
	member := fixtures.CreateFather(ctx, fam.ID, "Emeka Okafor", 1948)

	body := `{"bio":"<p>Elder</p>","verified":true}`
	req := testutil.NewAuthenticatedRequest(http.MethodPatch, "/", strings.NewReader(body), p)
	req = testutil.WithChiURLParam(req, "familyID", fam.ID.Hex())
	req = testutil.WithChiURLParam(req, "memberID", member.ID.Hex())
	rec := testutil.NewRecorder()

	h.HandleUpdate(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusOK)

	var updated models.Member
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if updated.Bio != "<p>Elder</p>" || !updated.Verified {
		t.Errorf("unexpected update result: bio=%q verified=%v", updated.Bio, updated.Verified)
	}
}

func TestHandleDelete_ProtectedCreator(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := members.NewHandler(db, nil, zap.NewNop())
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := testutil.TestPrincipal()
	fam := fixtures.CreateMainFamily(ctx, "Okafor Family", p.ID)
	creator := fixtures.CreateCreatorMember(ctx, fam.ID, "Adewale Okafor", 1950, p.ID)

	req := testutil.NewAuthenticatedRequest(http.MethodDelete, "/", nil, p)
	req = testutil.WithChiURLParam(req, "familyID", fam.ID.Hex())
	req = testutil.WithChiURLParam(req, "memberID", creator.ID.Hex())
	rec := testutil.NewRecorder()

	h.HandleDelete(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusConflict)
	rec.AssertContains(t, "protected_member_deletion")
}

func TestServeList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := members.NewHandler(db, nil, zap.NewNop())
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p, fam := stageFamily(t, db)
	fixtures.CreateMother(ctx, fam.ID, "Ngozi Okafor", 1955, 1)

	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/", nil, p)
	req = testutil.WithChiURLParam(req, "familyID", fam.ID.Hex())
	rec := testutil.NewRecorder()

	h.ServeList(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusOK)

	var resp struct {
		Members []models.Member `json:"members"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(resp.Members) != 2 {
		t.Errorf("members: got %d, want 2", len(resp.Members))
	}
}
