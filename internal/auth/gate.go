package auth

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"poolside-catalog/internal/logger"

	"github.com/asaskevich/EventBus"
	"golang.org/x/crypto/bcrypt"
)

// TopicSessionRevoked is published with the session's subject whenever a
// session ends. Subscribers (the admin editor) drop any in-progress drafts
// for that operator.
const TopicSessionRevoked = "auth.session.revoked"

// SessionTTL bounds how long an issued admin token stays valid.
const SessionTTL = 12 * time.Hour

type ctxKey struct{}

// ContextWithClaims attaches validated session claims to a request context.
func ContextWithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// ClaimsFromContext returns the claims RequireAdmin attached, or nil.
func ClaimsFromContext(ctx context.Context) *Claims {
	c, _ := ctx.Value(ctxKey{}).(*Claims)
	return c
}

// Gate is the authentication gate: it issues sessions against the configured
// operator credentials, revokes them on sign-out, and publishes
// session-change events on the bus.
type Gate struct {
	email        string
	passwordHash []byte
	bus          EventBus.Bus

	mu      sync.Mutex
	revoked map[string]time.Time // jti -> token expiry
}

// NewGate builds a gate from ADMIN_EMAIL and ADMIN_PASSWORD_HASH (bcrypt).
func NewGate(bus EventBus.Bus) (*Gate, error) {
	email := os.Getenv("ADMIN_EMAIL")
	hash := os.Getenv("ADMIN_PASSWORD_HASH")
	if email == "" || hash == "" {
		return nil, fmt.Errorf("ADMIN_EMAIL and ADMIN_PASSWORD_HASH must be set")
	}

	return &Gate{
		email:        email,
		passwordHash: []byte(hash),
		bus:          bus,
		revoked:      map[string]time.Time{},
	}, nil
}

// Login checks the credentials and issues an admin session token.
func (g *Gate) Login(email, password string) (string, error) {
	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(g.email)) == 1
	passErr := bcrypt.CompareHashAndPassword(g.passwordHash, []byte(password))
	if !emailOK || passErr != nil {
		return "", fmt.Errorf("invalid credentials")
	}

	return IssueToken(email, []string{"admin"}, SessionTTL)
}

// SignOut revokes the session and notifies subscribers that it ended.
func (g *Gate) SignOut(c *Claims) {
	expiry := time.Now().Add(SessionTTL)
	if c.ExpiresAt != nil {
		expiry = c.ExpiresAt.Time
	}

	g.mu.Lock()
	g.revoked[c.ID] = expiry
	for jti, exp := range g.revoked {
		if time.Now().After(exp) {
			delete(g.revoked, jti)
		}
	}
	g.mu.Unlock()

	if g.bus != nil {
		g.bus.Publish(TopicSessionRevoked, c.Subject)
	}
}

// Validate parses the token and rejects revoked sessions. Any failure means
// "no session".
func (g *Gate) Validate(tokenStr string) (*Claims, error) {
	claims, err := ParseToken(tokenStr)
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	_, revoked := g.revoked[claims.ID]
	g.mu.Unlock()
	if revoked {
		return nil, fmt.Errorf("session revoked")
	}

	return claims, nil
}

// RequireAdmin is middleware that requires a live session with the admin
// role. Validated claims are attached to the request context.
func (g *Gate) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokenStr := GetBearerToken(r)
		if tokenStr == "" {
			logger.Debugf("RequireAdmin: no bearer token provided")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		claims, err := g.Validate(tokenStr)
		if err != nil {
			logger.Debugf("RequireAdmin: %v", err)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		if !HasRole(claims.Roles, "admin") {
			logger.Debugf("RequireAdmin: user lacks admin role")
			http.Error(w, "forbidden - admin role required", http.StatusForbidden)
			return
		}

		next(w, r.WithContext(ContextWithClaims(r.Context(), claims)))
	}
}

// HandleLogin handles POST /api/auth/login
func (g *Gate) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	token, err := g.Login(req.Email, req.Password)
	if err != nil {
		logger.Debugf("HandleLogin: %v", err)
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"token": token})
}

// HandleLogout handles POST /api/auth/logout (behind RequireAdmin)
func (g *Gate) HandleLogout(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	if claims == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	g.SignOut(claims)
	w.WriteHeader(http.StatusNoContent)
}
