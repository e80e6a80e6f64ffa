// internal/app/system/auth/auth.go

// Package auth issues and verifies the signed tokens that authenticate API
// requests, and injects the current user into the request context.
//
// Tokens are HS256 JWTs carried either in an Authorization: Bearer header or
// in the "token" cookie (set at login for browser clients). Absence or an
// invalid signature yields a 401.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// CookieName is the cookie carrying the token for browser clients.
const CookieName = "token"

// SessionUser is the identity extracted from a verified token and injected
// into r.Context().
type SessionUser struct {
	ID       string
	Email    string
	Username string
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// Claims is the JWT payload for platform tokens.
type Claims struct {
	jwt.RegisteredClaims
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
}

// Manager signs and verifies tokens.
type Manager struct {
	secret []byte
	ttl    time.Duration
	log    *zap.Logger
}

// NewManager creates a token manager. The secret must be at least 32 bytes.
func NewManager(secret string, ttl time.Duration, logger *zap.Logger) (*Manager, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("jwt secret too short; provide at least 32 random chars")
	}
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &Manager{secret: []byte(secret), ttl: ttl, log: logger}, nil
}

// TTL returns the configured token lifetime.
func (m *Manager) TTL() time.Duration { return m.ttl }

// Issue signs a token for the given user.
func (m *Manager) Issue(userID, email, username string) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
		Email:    email,
		Username: username,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Verify parses and validates a token string.
func (m *Manager) Verify(tokenStr string) (*SessionUser, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("invalid token")
	}
	return &SessionUser{ID: claims.Subject, Email: claims.Email, Username: claims.Username}, nil
}

// SetCookie attaches the token cookie to the response.
func (m *Manager) SetCookie(w http.ResponseWriter, token string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(m.ttl),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// ClearCookie expires the token cookie.
func (m *Manager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// CurrentUser returns the user from context and a found flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

// WithTestUser injects a user into the request context, bypassing token
// verification. Tests only.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

// tokenFromRequest extracts the raw token from the bearer header or cookie.
func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}

// LoadUser injects the user into context when a valid token accompanies the
// request. Requests without a token pass through anonymous; handlers that
// need authentication stack RequireSignedIn on top.
func (m *Manager) LoadUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if tok := tokenFromRequest(r); tok != "" {
			if u, err := m.Verify(tok); err == nil {
				r = withUser(r, u)
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSignedIn ensures there is a user in context (set by LoadUser) and
// responds 401 otherwise.
func RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"kind":"unauthorized","message":"authentication required"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}
