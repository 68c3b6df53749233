// Package admin gates the catalog write path behind a shared password.
package admin

import (
	"crypto/subtle"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// DefaultPassword is the credential used when none is configured.
const DefaultPassword = "admin123"

// ErrAuthentication is returned by Check when the password does not match.
var ErrAuthentication = errors.New("admin: authentication failed")

// Gate answers whether a password unlocks the admin write path. It does not
// lock out or rate limit.
type Gate struct {
	password []byte
	hash     []byte
}

// NewGate compares against a plain password. An empty password selects
// DefaultPassword.
func NewGate(password string) *Gate {
	if password == "" {
		password = DefaultPassword
	}
	return &Gate{password: []byte(password)}
}

// NewHashedGate compares against a bcrypt hash.
func NewHashedGate(hash string) (*Gate, error) {
	hash = strings.TrimSpace(hash)
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return nil, err
	}
	return &Gate{hash: []byte(hash)}, nil
}

// Authenticate reports whether password matches the configured credential.
func (g *Gate) Authenticate(password string) bool {
	if g == nil {
		return false
	}
	if g.hash != nil {
		return bcrypt.CompareHashAndPassword(g.hash, []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare(g.password, []byte(password)) == 1
}

// Check is Authenticate returning ErrAuthentication on mismatch.
func (g *Gate) Check(password string) error {
	if !g.Authenticate(password) {
		return ErrAuthentication
	}
	return nil
}

// Hash returns a bcrypt hash of password suitable for NewHashedGate.
func Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
