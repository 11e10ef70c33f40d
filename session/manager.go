// Package session keeps users logged in with signed cookies.
package session

import (
	"errors"
	"net/http"
	"time"
)

const (
	// DefaultCookieName names the session cookie.
	DefaultCookieName = "todomvc_session"
	// DefaultTTL bounds a session cookie that isn't remembered.
	DefaultTTL = 24 * time.Hour
	// DefaultRememberTTL bounds a remembered session.
	DefaultRememberTTL = 7 * 24 * time.Hour
)

// ErrNoSession indicates the request carries no valid session.
var ErrNoSession = errors.New("no session")

// Options configures a Manager.
type Options struct {
	CookieName  string
	TTL         time.Duration
	RememberTTL time.Duration
	// Secure marks cookies HTTPS-only.
	Secure bool
	Now    func() time.Time
}

// Manager issues and checks session cookies.
type Manager struct {
	secret      []byte
	cookieName  string
	ttl         time.Duration
	rememberTTL time.Duration
	secure      bool
	now         func() time.Time
}

// NewManager returns a manager signing with secret.
func NewManager(secret []byte, opts Options) (*Manager, error) {
	if len(secret) == 0 {
		return nil, errors.New("session secret is empty")
	}

	m := &Manager{
		secret:      append([]byte(nil), secret...),
		cookieName:  opts.CookieName,
		ttl:         opts.TTL,
		rememberTTL: opts.RememberTTL,
		secure:      opts.Secure,
		now:         opts.Now,
	}
	if m.cookieName == "" {
		m.cookieName = DefaultCookieName
	}
	if m.ttl <= 0 {
		m.ttl = DefaultTTL
	}
	if m.rememberTTL <= 0 {
		m.rememberTTL = DefaultRememberTTL
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m, nil
}

// Login sets a session cookie for userID. A remembered session outlives
// the browser session.
func (m *Manager) Login(w http.ResponseWriter, userID string, remember bool) error {
	if userID == "" {
		return errors.New("missing user id")
	}
	nonce, err := newNonce()
	if err != nil {
		return err
	}

	ttl := m.ttl
	if remember {
		ttl = m.rememberTTL
	}
	now := m.now()
	token, err := signToken(m.secret, payload{Sub: userID, N: nonce, Exp: now.Add(ttl).Unix()})
	if err != nil {
		return err
	}

	cookie := m.cookie(token)
	if remember {
		cookie.MaxAge = int(ttl / time.Second)
		cookie.Expires = now.Add(ttl)
	}
	http.SetCookie(w, cookie)
	return nil
}

// Logout clears the session cookie.
func (m *Manager) Logout(w http.ResponseWriter) {
	cookie := m.cookie("")
	cookie.MaxAge = -1
	cookie.Expires = time.Unix(0, 0)
	http.SetCookie(w, cookie)
}

// UserID returns the user the request's session belongs to.
func (m *Manager) UserID(r *http.Request) (string, error) {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil || cookie.Value == "" {
		return "", ErrNoSession
	}
	p, err := verifyToken(m.secret, cookie.Value, m.now())
	if err != nil {
		return "", errors.Join(ErrNoSession, err)
	}
	return p.Sub, nil
}

func (m *Manager) cookie(value string) *http.Cookie {
	return &http.Cookie{
		Name:     m.cookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
