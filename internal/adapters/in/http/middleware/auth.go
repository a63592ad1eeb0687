// internal/adapters/in/http/middleware/auth.go
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"
	"go.uber.org/zap"

	sessiondom "storefront/internal/domain/session"
)

// FirebaseAuthClient is the firebase auth client alias used by the DI layer.
type FirebaseAuthClient = fbauth.Client

// TokenVerifier is the subset of the firebase auth client the middleware needs.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// context keys use their own type to avoid collisions (SA1029).
type ctxKey struct{ name string }

var ctxKeyIdentity = ctxKey{name: "identity"}

// Auth verifies "Authorization: Bearer <ID_TOKEN>" and stores the identity in context.
type Auth struct {
	Verifier TokenVerifier
	Log      *zap.Logger
}

// Optional lets anonymous requests through. A missing, stale or malformed
// bearer token is served as anonymous instead of 401.
func (m *Auth) Optional(next http.Handler) http.Handler {
	return m.handler(next, false)
}

// Required answers 401 when no valid identity is present.
func (m *Auth) Required(next http.Handler) http.Handler {
	return m.handler(next, true)
}

func (m *Auth) handler(next http.Handler, required bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// already verified further out
		if _, ok := CurrentIdentity(r); ok {
			next.ServeHTTP(w, r)
			return
		}

		// reject answers 401 on required routes and serves optional ones anonymously.
		reject := func(code int, msg string) {
			if !required {
				m.logger().Debug("bearer ignored on optional route", zap.String("reason", msg))
				next.ServeHTTP(w, r)
				return
			}
			writeErrJSON(w, code, msg)
		}

		authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
		if authHeader == "" {
			reject(http.StatusUnauthorized, "unauthorized: missing bearer token")
			return
		}

		if m.Verifier == nil {
			reject(http.StatusServiceUnavailable, "auth middleware not initialized")
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			reject(http.StatusUnauthorized, "unauthorized: missing bearer token")
			return
		}
		idToken := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if idToken == "" {
			reject(http.StatusUnauthorized, "unauthorized: empty bearer token")
			return
		}

		token, err := m.Verifier.VerifyIDToken(r.Context(), idToken)
		if err != nil {
			m.logger().Debug("verify id token failed", zap.Error(err))
			reject(http.StatusUnauthorized, "invalid token")
			return
		}

		id := sessiondom.Identity{UID: strings.TrimSpace(token.UID)}
		if !id.Valid() {
			reject(http.StatusUnauthorized, "invalid uid in token")
			return
		}
		if e, ok := token.Claims["email"].(string); ok {
			id.Email = strings.TrimSpace(e)
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

func (m *Auth) logger() *zap.Logger {
	if m.Log == nil {
		return zap.NewNop()
	}
	return m.Log
}

// WithIdentity returns ctx carrying id.
func WithIdentity(ctx context.Context, id sessiondom.Identity) context.Context {
	return context.WithValue(ctx, ctxKeyIdentity, id)
}

// CurrentIdentity returns the verified identity of the request, if any.
func CurrentIdentity(r *http.Request) (*sessiondom.Identity, bool) {
	id, ok := r.Context().Value(ctxKeyIdentity).(sessiondom.Identity)
	if !ok || !id.Valid() {
		return nil, false
	}
	return &id, true
}

func writeErrJSON(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
