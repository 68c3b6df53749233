package httpapi

import (
	"errors"
	"net/http"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
)

const (
	sessionName = "resourcebank_session"
	adminKey    = "admin"
)

// Sessions tracks the admin capability in a signed cookie.
type Sessions struct {
	store *sessions.CookieStore
}

// NewSessions returns a cookie-backed session store. An empty key generates
// a random one, so sessions do not survive a restart.
func NewSessions(key string, secure bool) (*Sessions, error) {
	raw := []byte(key)
	if key == "" {
		raw = securecookie.GenerateRandomKey(32)
		if raw == nil {
			return nil, errors.New("httpapi: generate session key")
		}
	}
	store := sessions.NewCookieStore(raw)
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		MaxAge:   8 * 60 * 60,
		SameSite: http.SameSiteLaxMode,
	}
	return &Sessions{store: store}, nil
}

// Grant marks the caller's session as admin.
func (s *Sessions) Grant(w http.ResponseWriter, r *http.Request) error {
	sess, _ := s.store.Get(r, sessionName)
	sess.Values[adminKey] = true
	return sess.Save(r, w)
}

// Revoke clears the caller's session.
func (s *Sessions) Revoke(w http.ResponseWriter, r *http.Request) error {
	sess, _ := s.store.Get(r, sessionName)
	delete(sess.Values, adminKey)
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// IsAdmin reports whether the request carries a valid admin session.
func (s *Sessions) IsAdmin(r *http.Request) bool {
	sess, err := s.store.Get(r, sessionName)
	if err != nil {
		return false
	}
	v, ok := sess.Values[adminKey].(bool)
	return ok && v
}
