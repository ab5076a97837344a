// Package session issues and resolves login sessions. The browser holds a
// signed JWT naming a server-side session; the session itself lives in a
// Store so logout can revoke it.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/jwalitptl/medrec/internal/model"
)

var (
	ErrNotFound     = errors.New("session not found")
	ErrInvalidToken = errors.New("invalid session token")
)

// Session is the server-side record of a login.
type Session struct {
	ID         string     `json:"id"`
	UserID     int64      `json:"user_id"`
	Role       model.Role `json:"role"`
	Persistent bool       `json:"persistent"`
	CreatedAt  time.Time  `json:"created_at"`
	ExpiresAt  time.Time  `json:"expires_at"`
}

// Store persists sessions until they expire.
type Store interface {
	Save(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}

type Claims struct {
	Role model.Role `json:"role"`
	jwt.RegisteredClaims
}

type Options struct {
	Secret      string
	TTL         time.Duration
	RememberTTL time.Duration
	CookieName  string
	Secure      bool
}

type Manager struct {
	store       Store
	secret      []byte
	ttl         time.Duration
	rememberTTL time.Duration
	cookieName  string
	secure      bool
	now         func() time.Time
}

func NewManager(store Store, opts Options) *Manager {
	if opts.CookieName == "" {
		opts.CookieName = DefaultCookieName
	}
	return &Manager{
		store:       store,
		secret:      []byte(opts.Secret),
		ttl:         opts.TTL,
		rememberTTL: opts.RememberTTL,
		cookieName:  opts.CookieName,
		secure:      opts.Secure,
		now:         time.Now,
	}
}

// Issue opens a session for user. remember selects the long-lived lifetime.
func (m *Manager) Issue(ctx context.Context, user *model.User, remember bool) (string, *Session, error) {
	now := m.now()
	ttl := m.ttl
	if remember {
		ttl = m.rememberTTL
	}

	s := &Session{
		ID:         uuid.NewString(),
		UserID:     user.ID,
		Role:       user.Role,
		Persistent: remember,
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
	}
	if err := m.store.Save(ctx, s); err != nil {
		return "", nil, fmt.Errorf("failed to save session: %w", err)
	}

	claims := Claims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        s.ID,
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign session token: %w", err)
	}
	return token, s, nil
}

// Resolve verifies the token and returns the live session it names.
func (m *Manager) Resolve(ctx context.Context, token string) (*Session, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	s, err := m.store.Get(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if !m.now().Before(s.ExpiresAt) {
		_ = m.store.Delete(ctx, s.ID)
		return nil, ErrNotFound
	}
	if strconv.FormatInt(s.UserID, 10) != claims.Subject {
		return nil, ErrInvalidToken
	}
	return s, nil
}

// Revoke deletes the session named by token. Unparseable tokens are ignored.
func (m *Manager) Revoke(ctx context.Context, token string) error {
	claims := &Claims{}
	_, _, err := jwt.NewParser().ParseUnverified(token, claims)
	if err != nil || claims.ID == "" {
		return nil
	}
	return m.store.Delete(ctx, claims.ID)
}
