// Package auth issues and validates the back-office admin sessions. Each
// login mints its own revocable token with an expiry; tokens are stored
// HMAC-hashed so a leaked session store does not leak usable cookies.
package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

// CookieName is the admin session cookie.
const CookieName = "admin_session"

// ErrUnauthorized covers every authentication failure: bad credentials,
// unknown token, expired or revoked session. Callers get no more detail.
var ErrUnauthorized = errors.New("unauthorized")

// TokenStore persists session token hashes with a time-to-live.
type TokenStore interface {
	Save(ctx context.Context, tokenHash string, ttl time.Duration) error
	Exists(ctx context.Context, tokenHash string) (bool, error)
	Delete(ctx context.Context, tokenHash string) error
}

// Config holds the admin credential pair and session parameters.
type Config struct {
	AdminUser     string        `usage:"Back-office admin username" flag:"admin-user"`
	AdminPassword string        `usage:"Back-office admin password" flag:"admin-password"`
	TokenPepper   string        `usage:"HMAC pepper for session token hashing" flag:"token-pepper"`
	SessionTTL    time.Duration `default:"168h" usage:"Admin session lifetime" flag:"session-ttl"`
}

// Service is the admin session service.
type Service struct {
	cfg   Config
	store TokenStore
}

// NewService creates the session service.
func NewService(cfg Config, store TokenStore) *Service {
	return &Service{cfg: cfg, store: store}
}

// SessionTTL returns the configured session lifetime.
func (s *Service) SessionTTL() time.Duration {
	return s.cfg.SessionTTL
}

// Login checks the credential pair and, on success, issues a fresh session
// token. The raw token goes to the client; only its HMAC hash is stored.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	if s.cfg.AdminUser == "" || s.cfg.AdminPassword == "" {
		return "", ErrUnauthorized
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.cfg.AdminUser)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.cfg.AdminPassword)) == 1
	if !userOK || !passOK {
		return "", ErrUnauthorized
	}

	token := uuid.New().String() + uuid.New().String()
	if err := s.store.Save(ctx, s.hash(token), s.cfg.SessionTTL); err != nil {
		return "", errors.Wrap(err, "save session")
	}
	return token, nil
}

// Validate reports whether the token belongs to a live session.
func (s *Service) Validate(ctx context.Context, token string) error {
	if token == "" {
		return ErrUnauthorized
	}
	ok, err := s.store.Exists(ctx, s.hash(token))
	if err != nil {
		return errors.Wrap(err, "lookup session")
	}
	if !ok {
		return ErrUnauthorized
	}
	return nil
}

// Revoke ends the session for the given token. Revoking an unknown token
// is a no-op.
func (s *Service) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.store.Delete(ctx, s.hash(token)); err != nil {
		return errors.Wrap(err, "delete session")
	}
	return nil
}

func (s *Service) hash(token string) string {
	mac := hmac.New(sha256.New, []byte(s.cfg.TokenPepper))
	mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))
}
