// Package auth implements password login and rolling cookie sessions.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"spendwise/internal/core"
	"spendwise/internal/log"
	"spendwise/internal/store"
)

const (
	// CookieName is the name of the session cookie.
	CookieName = "session"
	// DefaultSessionTTL is how long a session lasts without activity.
	DefaultSessionTTL = 30 * 24 * time.Hour

	tokenBytes = 32
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrSessionExpired     = errors.New("session expired")
	ErrEmptyPassword      = errors.New("password cannot be empty")
	ErrEmptyUsername      = errors.New("username cannot be empty")
)

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// GenerateSessionToken returns 32 random bytes, hex encoded.
func GenerateSessionToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Service authenticates users against the user and session stores.
type Service struct {
	users    store.UserStore
	sessions store.SessionStore
	ttl      time.Duration
	now      func() time.Time
	logger   *log.Logger
}

func NewService(users store.UserStore, sessions store.SessionStore, ttl time.Duration, logger *log.Logger) *Service {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &Service{
		users:    users,
		sessions: sessions,
		ttl:      ttl,
		now:      time.Now,
		logger:   logger.WithComponent(log.ComponentAuth),
	}
}

// TTL is the lifetime given to new and renewed sessions.
func (s *Service) TTL() time.Duration { return s.ttl }

// Register creates a user with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, username, password string) (core.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return core.User{}, ErrEmptyUsername
	}
	if strings.TrimSpace(password) == "" {
		return core.User{}, ErrEmptyPassword
	}
	hash, err := HashPassword(password)
	if err != nil {
		return core.User{}, fmt.Errorf("hash password: %w", err)
	}
	u, err := s.users.CreateUser(ctx, username, hash)
	if err != nil {
		return core.User{}, fmt.Errorf("create user: %w", err)
	}
	s.logger.InfoContext(ctx, "User created", log.FieldUserID, u.ID, log.FieldUsername, u.Username)
	return u, nil
}

// Login checks the credentials and opens a new session.
func (s *Service) Login(ctx context.Context, username, password string) (core.Session, error) {
	u, err := s.users.UserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return core.Session{}, ErrInvalidCredentials
		}
		return core.Session{}, fmt.Errorf("lookup user: %w", err)
	}
	if !CheckPassword(password, u.PasswordHash) {
		s.logger.WarnContext(ctx, "Rejected login", log.FieldOperation, log.OpLogin, log.FieldUsername, u.Username)
		return core.Session{}, ErrInvalidCredentials
	}

	token, err := GenerateSessionToken()
	if err != nil {
		return core.Session{}, fmt.Errorf("generate session token: %w", err)
	}
	sess := core.Session{Token: token, UserID: u.ID, ExpiresAt: s.now().Add(s.ttl).UTC()}
	if err := s.sessions.CreateSession(ctx, sess); err != nil {
		return core.Session{}, fmt.Errorf("create session: %w", err)
	}

	s.logger.InfoContext(ctx, "User logged in", log.FieldOperation, log.OpLogin, log.FieldUserID, u.ID)
	return sess, nil
}

// Logout deletes the session. Unknown tokens are not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.DeleteSession(ctx, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Authenticate resolves token to its user. A session past the half of its
// lifetime is extended by a full TTL; the returned session carries the new
// expiry and renewed reports whether that happened.
func (s *Service) Authenticate(ctx context.Context, token string) (u core.User, sess core.Session, renewed bool, err error) {
	if token == "" {
		return core.User{}, core.Session{}, false, core.ErrNotAuthenticated
	}
	sess, err = s.sessions.Session(ctx, token)
	if err != nil {
		return core.User{}, core.Session{}, false, err
	}

	now := s.now()
	if !sess.ExpiresAt.After(now) {
		_ = s.sessions.DeleteSession(ctx, token)
		return core.User{}, core.Session{}, false, ErrSessionExpired
	}

	u, err = s.users.UserByID(ctx, sess.UserID)
	if err != nil {
		return core.User{}, core.Session{}, false, err
	}

	if sess.ExpiresAt.Sub(now) < s.ttl/2 {
		expiresAt := now.Add(s.ttl).UTC()
		if err := s.sessions.RenewSession(ctx, token, expiresAt); err != nil {
			// The current session stays valid.
			s.logger.WarnContext(ctx, "Failed to renew session", log.FieldUserID, u.ID, log.FieldError, err)
		} else {
			sess.ExpiresAt = expiresAt
			renewed = true
		}
	}
	return u, sess, renewed, nil
}
