package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"

	"github.com/dalemusser/kinhub/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TestPrincipal returns a principal with a fresh id for handler tests.
func TestPrincipal() *auth.Principal {
	return &auth.Principal{
		ID:    primitive.NewObjectID(),
		Name:  "Test Principal",
		Email: "principal@test.com",
	}
}

// WithPrincipal adds a principal to the request context for testing
// authenticated handlers. This bypasses the session middleware and
// injects the principal directly.
func WithPrincipal(r *http.Request, p *auth.Principal) *http.Request {
	return auth.WithTestPrincipal(r, p)
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, target string, body io.Reader) *http.Request {
	return httptest.NewRequest(method, target, body)
}

// NewAuthenticatedRequest creates an HTTP request with a principal in
// context.
func NewAuthenticatedRequest(method, target string, body io.Reader, p *auth.Principal) *http.Request {
	return WithPrincipal(httptest.NewRequest(method, target, body), p)
}

// ResponseRecorder wraps httptest.ResponseRecorder with helper methods.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

// NewRecorder creates a new ResponseRecorder.
func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

// AssertStatus checks the response status code.
func (r *ResponseRecorder) AssertStatus(t interface{ Errorf(string, ...any) }, expected int) {
	if r.Code != expected {
		t.Errorf("status code: got %d, want %d", r.Code, expected)
	}
}

// AssertContains checks if the response body contains the expected string.
func (r *ResponseRecorder) AssertContains(t interface{ Errorf(string, ...any) }, expected string) {
	body := r.Body.String()
	if !contains(body, expected) {
		t.Errorf("response body does not contain %q", expected)
	}
}

func contains(s, substr string) bool {
	return len(s) >= len(substr) && (s == substr || len(substr) == 0 || findSubstring(s, substr))
}

func findSubstring(s, substr string) bool {
	for i := 0; i <= len(s)-len(substr); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
