// Package session models wallet sign-in state as an explicit immutable value.
//
// The session is passed to every component that needs caller identity instead
// of being read from shared mutable globals. Connect and Disconnect return
// new values; an existing Session is never mutated.
package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session is one viewer's wallet connection state.
type Session struct {
	Principal   string    `json:"principal,omitempty"`
	Network     string    `json:"network,omitempty"`
	ConnectedAt time.Time `json:"connected_at,omitempty"`
	signedIn    bool
}

// Anonymous is the session of a viewer with no connected wallet.
func Anonymous() Session {
	return Session{}
}

// Connect returns a signed-in session for the given principal.
func Connect(principal, network string) (Session, error) {
	principal = strings.TrimSpace(principal)
	if principal == "" {
		return Session{}, fmt.Errorf("principal is required")
	}
	if network == "" {
		network = "testnet"
	}
	return Session{
		Principal:   principal,
		Network:     network,
		ConnectedAt: time.Now().UTC(),
		signedIn:    true,
	}, nil
}

// Disconnect returns the anonymous session.
func (s Session) Disconnect() Session {
	return Anonymous()
}

// SignedIn reports whether a wallet is connected.
func (s Session) SignedIn() bool {
	return s.signedIn
}

// =============================================================================
// Session Tokens
// =============================================================================

// Manager mints and verifies the bearer tokens that carry a session across
// HTTP requests.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

// NewManager creates a token manager. The secret must be non-empty.
func NewManager(secret string, ttl time.Duration) (*Manager, error) {
	if secret == "" {
		return nil, fmt.Errorf("session secret required")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{secret: []byte(secret), ttl: ttl}, nil
}

type claims struct {
	Principal string `json:"principal"`
	Network   string `json:"network"`
	jwt.RegisteredClaims
}

// Issue mints a signed token for a connected session.
func (m *Manager) Issue(s Session) (string, error) {
	if !s.SignedIn() {
		return "", fmt.Errorf("cannot issue token for anonymous session")
	}
	now := time.Now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Principal: s.Principal,
		Network:   s.Network,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	})
	return token.SignedString(m.secret)
}

// Verify parses a token and reconstructs the session it carries. Invalid or
// expired tokens yield the anonymous session together with the error.
func (m *Manager) Verify(tokenString string) (Session, error) {
	var c claims
	token, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		if err == nil {
			err = fmt.Errorf("invalid token")
		}
		return Anonymous(), err
	}

	return Session{
		Principal:   c.Principal,
		Network:     c.Network,
		ConnectedAt: c.IssuedAt.Time,
		signedIn:    true,
	}, nil
}
