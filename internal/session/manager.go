// Package session issues and reads the admin session cookie.
//
// The cookie value is an HS256 JWT carrying the admin projection, sealed with
// AES-256-GCM. Nothing is stored server-side: the cookie is the session, so a
// token stays valid until its expiry even after logout on another device.
//
// Secrets are an ordered list. The first secret signs and seals new tokens;
// every secret is tried when reading, which allows rotation without logging
// everyone out.
package session

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/techplan/admin-server-go/internal/config"
	"github.com/techplan/admin-server-go/internal/model"
	"github.com/techplan/admin-server-go/internal/util"
)

const CookieName = "__admin_session"

var ErrNoSecrets = errors.New("session: at least one secret is required")

type claims struct {
	Admin model.AdminIdentity `json:"admin"`
	jwt.RegisteredClaims
}

type Manager struct {
	secrets []string
	ttl     time.Duration
	secure  bool
	now     func() time.Time
}

type Option func(*Manager)

// WithClock replaces time.Now, used by tests to move past expiry.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) { m.ttl = ttl }
}

// NewManager builds a manager. secure controls the cookie Secure attribute
// and should be true in production.
func NewManager(secrets []string, secure bool, opts ...Option) (*Manager, error) {
	if len(secrets) == 0 || secrets[0] == "" {
		return nil, ErrNoSecrets
	}

	m := &Manager{
		secrets: append([]string(nil), secrets...),
		ttl:     config.SessionMaxAge,
		secure:  secure,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Encode produces a sealed token for admin and its expiry time.
func (m *Manager) Encode(admin *model.AdminIdentity) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Admin: *admin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   admin.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})

	signed, err := token.SignedString([]byte(m.secrets[0]))
	if err != nil {
		return "", time.Time{}, err
	}

	sealed, err := util.Seal(m.secrets[0], []byte(signed))
	if err != nil {
		return "", time.Time{}, err
	}
	return sealed, expiresAt, nil
}

// Decode returns the admin carried by token, or nil when the token is
// missing, expired, tampered with or sealed under an unknown secret.
func (m *Manager) Decode(token string) *model.AdminIdentity {
	if token == "" {
		return nil
	}

	for _, secret := range m.secrets {
		raw, err := util.Open(secret, token)
		if err != nil {
			continue
		}

		var c claims
		_, err = jwt.ParseWithClaims(string(raw), &c, func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		},
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
			jwt.WithTimeFunc(m.now),
		)
		if err != nil {
			return nil
		}

		if c.Admin.ID == "" || c.Admin.Role != model.RoleAdmin || c.Subject != c.Admin.ID {
			return nil
		}
		admin := c.Admin
		return &admin
	}
	return nil
}

// Issue writes a fresh session cookie for admin.
func (m *Manager) Issue(w http.ResponseWriter, admin *model.AdminIdentity) error {
	token, expiresAt, err := m.Encode(admin)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Read returns the admin of the request's session cookie, or nil.
func (m *Manager) Read(r *http.Request) *model.AdminIdentity {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil
	}
	return m.Decode(cookie.Value)
}

// Destroy clears the session cookie on the client.
func (m *Manager) Destroy(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
