// internal/app/system/auth/auth.go
//
// Package auth loads the authenticated principal from the signed session
// cookie issued by the external identity service. This service never
// issues sessions itself; it only reads them. Handlers obtain the caller
// through CurrentPrincipal and guard routes with RequirePrincipal.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	principalIDKey   = "principal_id"
	principalNameKey = "principal_name"
	principalMailKey = "principal_email"
	isAuthKey        = "is_authenticated"
)

// Principal is the authenticated caller injected into the request context.
type Principal struct {
	ID    primitive.ObjectID
	Name  string
	Email string
}

type ctxKey string

const principalCtxKey ctxKey = "principal"

// SessionReader validates session cookies and resolves principals.
type SessionReader struct {
	store *sessions.CookieStore
	name  string
	log   *zap.Logger
}

// NewSessionReader builds a reader over the shared cookie secret. The
// secret must match the one the identity service signs with.
func NewSessionReader(sessionKey, sessionName, domain string, secure bool, logger *zap.Logger) (*SessionReader, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide 32+ random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended", zap.Int("length", len(sessionKey)))
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	store.Options = &sessions.Options{
		Domain:   domain,
		Path:     "/",
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if secure {
		store.Options.SameSite = http.SameSiteNoneMode
	}

	return &SessionReader{store: store, name: sessionName, log: logger}, nil
}

// LoadPrincipal injects the principal into the request context when the
// session cookie is valid. Requests without a session pass through; route
// guards decide whether that matters.
func (sr *SessionReader) LoadPrincipal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := sr.store.Get(r, sr.name)
		if err != nil {
			// Tampered or stale cookie: treat as anonymous.
			if _, ok := err.(securecookie.Error); !ok {
				sr.log.Debug("session decode failed", zap.Error(err))
			}
			next.ServeHTTP(w, r)
			return
		}

		if isAuth, _ := sess.Values[isAuthKey].(bool); isAuth {
			idHex, _ := sess.Values[principalIDKey].(string)
			if id, err := primitive.ObjectIDFromHex(idHex); err == nil {
				name, _ := sess.Values[principalNameKey].(string)
				email, _ := sess.Values[principalMailKey].(string)
				r = withPrincipal(r, &Principal{ID: id, Name: name, Email: email})
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequirePrincipal rejects anonymous requests with a JSON 401.
func RequirePrincipal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentPrincipal(r); !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"code":    "unauthenticated",
				"message": "sign in required",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CurrentPrincipal returns the caller and a found flag.
func CurrentPrincipal(r *http.Request) (*Principal, bool) {
	p, ok := r.Context().Value(principalCtxKey).(*Principal)
	return p, ok
}

// WithTestPrincipal injects a principal directly, bypassing the session
// middleware. For handler tests only.
func WithTestPrincipal(r *http.Request, p *Principal) *http.Request {
	return withPrincipal(r, p)
}

func withPrincipal(r *http.Request, p *Principal) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), principalCtxKey, p))
}
