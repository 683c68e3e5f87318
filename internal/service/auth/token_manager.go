package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"camisfut-storefront/internal/domain"
)

type sessionStore interface {
	Create(ctx context.Context, s domain.Session) error
	Get(ctx context.Context, token string) (*domain.Session, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

type tokenManager struct {
	repo sessionStore
	now  func() time.Time
}

func newTokenManager(repo sessionStore) *tokenManager {
	return &tokenManager{repo: repo, now: time.Now}
}

// Issue stores sess under a fresh random token, retrying on collision.
func (m *tokenManager) Issue(ctx context.Context, sess domain.Session, ttl time.Duration) (domain.Session, error) {
	now := m.now().UTC()
	sess.CreatedAt = now
	sess.ExpiresAt = now.Add(ttl)
	for i := 0; i < 5; i++ {
		token, err := randomToken()
		if err != nil {
			return domain.Session{}, err
		}
		sess.Token = token
		err = m.repo.Create(ctx, sess)
		if err == nil {
			return sess, nil
		}
		if errors.Is(err, domain.ErrAlreadyExists) {
			continue
		}
		return domain.Session{}, err
	}
	return domain.Session{}, errors.New("token collision")
}

// Validate returns the live session for token. Expired sessions are
// removed.
func (m *tokenManager) Validate(ctx context.Context, token string) (*domain.Session, bool) {
	sess, err := m.repo.Get(ctx, token)
	if err != nil {
		return nil, false
	}
	if m.now().After(sess.ExpiresAt) {
		_ = m.repo.Delete(ctx, token)
		return nil, false
	}
	return sess, true
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
