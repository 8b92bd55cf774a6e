package service

import (
	"context"
	"time"

	"pharma-market/internal/models"
	"pharma-market/internal/store"

	"github.com/google/uuid"
)

// Session binds a bearer token to a user until it expires
type Session struct {
	UserID    string    `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// SessionManager issues and resolves bearer tokens
type SessionManager struct {
	kv    store.KV
	users *store.Collection[models.User]
	ttl   time.Duration
	now   func() time.Time
}

// NewSessionManager creates a new session manager
func NewSessionManager(kv store.KV, ttl time.Duration) *SessionManager {
	return &SessionManager{
		kv:    kv,
		users: store.NewCollection[models.User](kv, store.KeyUsers),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Create stores a new session for the user and returns its token
func (m *SessionManager) Create(ctx context.Context, userID string) (string, error) {
	token := uuid.New().String()
	session := Session{UserID: userID, ExpiresAt: m.now().Add(m.ttl)}
	key := store.SessionKey(token)
	if err := store.NewDocument[Session](m.kv, key).Set(ctx, session); err != nil {
		return "", err
	}
	if err := store.Expire(ctx, m.kv, key, m.ttl); err != nil {
		return "", err
	}
	return token, nil
}

// Resolve returns the user behind a token. Expired sessions and sessions of
// deleted or unapproved users are rejected with ErrUnauthorized.
func (m *SessionManager) Resolve(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}

	doc := store.NewDocument[Session](m.kv, store.SessionKey(token))
	session, ok, err := doc.Get(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUnauthorized
	}
	if !m.now().Before(session.ExpiresAt) {
		_ = doc.Delete(ctx)
		return nil, ErrUnauthorized
	}

	users, err := m.users.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.ID == session.UserID && u.Status == models.StatusApproved {
			public := u.Public()
			return &public, nil
		}
	}

	_ = doc.Delete(ctx)
	return nil, ErrUnauthorized
}

// Revoke deletes the session; unknown tokens are ignored
func (m *SessionManager) Revoke(ctx context.Context, token string) error {
	return store.NewDocument[Session](m.kv, store.SessionKey(token)).Delete(ctx)
}
