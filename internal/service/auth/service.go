package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"camisfut-storefront/internal/domain"
	"camisfut-storefront/internal/logging"
	"camisfut-storefront/internal/upstream"
)

// ErrInvalidToken indicates the session token is unknown or expired.
var ErrInvalidToken = errors.New("invalid token")

const DefaultSessionTTL = 7 * 24 * time.Hour

// Service handles storefront login flows. Credentials are checked by the
// upstream API; this service only keeps the resulting sessions.
type Service struct {
	upstream upstreamAuth
	tokens   *tokenManager
	repo     sessionStore
	ttl      time.Duration
}

type upstreamAuth interface {
	Register(ctx context.Context, in upstream.RegisterInput) (map[string]any, error)
	Login(ctx context.Context, email, password string) (upstream.LoginResult, error)
	Logout(ctx context.Context) error
}

func New(up upstreamAuth, repo sessionStore, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Service{
		upstream: up,
		tokens:   newTokenManager(repo),
		repo:     repo,
		ttl:      ttl,
	}
}

// Register creates an upstream account.
func (s *Service) Register(ctx context.Context, in upstream.RegisterInput) (map[string]any, error) {
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	in.Name = strings.TrimSpace(in.Name)
	if in.Email == "" || in.Name == "" {
		return nil, fmt.Errorf("%w: name and email required", domain.ErrValidation)
	}
	if strings.TrimSpace(in.Password) == "" {
		return nil, fmt.Errorf("%w: password required", domain.ErrValidation)
	}
	return s.upstream.Register(ctx, in)
}

// Login authenticates upstream and opens a session carrying the upstream
// token and the legacy login pair.
func (s *Service) Login(ctx context.Context, email, password string) (domain.Session, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return domain.Session{}, domain.ErrInvalidCredentials
	}
	res, err := s.upstream.Login(ctx, email, password)
	if err != nil {
		return domain.Session{}, err
	}
	user := res.User
	sess, err := s.tokens.Issue(ctx, domain.Session{
		UpstreamToken:  res.Token,
		User:           &user,
		LegacyLoggedIn: true,
		LegacyUserName: user.Name,
	}, s.ttl)
	if err != nil {
		return domain.Session{}, fmt.Errorf("issue session: %w", err)
	}
	logging.FromContext(ctx).Info("user logged in", "user_id", user.ID)
	return sess, nil
}

// LegacyLogin opens a session that only carries the legacy name flag.
func (s *Service) LegacyLogin(ctx context.Context, name string) (domain.Session, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Session{}, fmt.Errorf("%w: name required", domain.ErrValidation)
	}
	return s.tokens.Issue(ctx, domain.Session{LegacyLoggedIn: true, LegacyUserName: name}, s.ttl)
}

// Logout notifies the upstream and drops the session. Upstream failures
// are logged only.
func (s *Service) Logout(ctx context.Context, token string) error {
	sess, ok := s.tokens.Validate(ctx, token)
	if !ok {
		return nil
	}
	if sess.HasUsableToken() {
		if err := s.upstream.Logout(upstream.WithToken(ctx, sess.UpstreamToken)); err != nil {
			logging.FromContext(ctx).Warn("upstream logout failed", "error", err)
		}
	}
	if err := s.repo.Delete(ctx, token); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return nil
}

// Lookup returns the live session bound to token.
func (s *Service) Lookup(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	sess, ok := s.tokens.Validate(ctx, token)
	if !ok {
		return nil, ErrInvalidToken
	}
	return sess, nil
}

// PurgeExpired deletes every expired session.
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpired(ctx)
}

// TTLSeconds exposes the session lifetime in seconds.
func (s *Service) TTLSeconds() int {
	return int(s.ttl.Seconds())
}
