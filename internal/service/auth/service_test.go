package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"camisfut-storefront/internal/domain"
	"camisfut-storefront/internal/upstream"
)

// memoryRepo is a lightweight in-memory session store for tests.
type memoryRepo struct {
	sessions map[string]domain.Session
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{sessions: make(map[string]domain.Session)}
}

func (r *memoryRepo) Create(_ context.Context, s domain.Session) error {
	if _, exists := r.sessions[s.Token]; exists {
		return domain.ErrAlreadyExists
	}
	r.sessions[s.Token] = s
	return nil
}

func (r *memoryRepo) Get(_ context.Context, token string) (*domain.Session, error) {
	s, ok := r.sessions[token]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := s
	return &clone, nil
}

func (r *memoryRepo) Delete(_ context.Context, token string) error {
	if _, ok := r.sessions[token]; !ok {
		return domain.ErrNotFound
	}
	delete(r.sessions, token)
	return nil
}

func (r *memoryRepo) DeleteExpired(context.Context) (int64, error) {
	var n int64
	for k, s := range r.sessions {
		if time.Now().After(s.ExpiresAt) {
			delete(r.sessions, k)
			n++
		}
	}
	return n, nil
}

type stubUpstream struct {
	login       upstream.LoginResult
	loginErr    error
	logoutErr   error
	logoutCalls int
	registered  upstream.RegisterInput
}

func (s *stubUpstream) Register(_ context.Context, in upstream.RegisterInput) (map[string]any, error) {
	s.registered = in
	return map[string]any{"id": 1}, nil
}

func (s *stubUpstream) Login(context.Context, string, string) (upstream.LoginResult, error) {
	return s.login, s.loginErr
}

func (s *stubUpstream) Logout(context.Context) error {
	s.logoutCalls++
	return s.logoutErr
}

func validLogin() upstream.LoginResult {
	return upstream.LoginResult{
		Token: "eyJhbGciOiJIUzI1NiJ9.payload.signature",
		User:  domain.User{ID: "4", Name: "Ana", Email: "ana@example.com"},
	}
}

func TestLoginIssuesSession(t *testing.T) {
	repo := newMemoryRepo()
	svc := New(&stubUpstream{login: validLogin()}, repo, time.Hour)

	sess, err := svc.Login(context.Background(), " Ana@Example.com ", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if sess.Token == "" || sess.Token == sess.UpstreamToken {
		t.Fatalf("expected own opaque token, got %q", sess.Token)
	}
	if !sess.LegacyLoggedIn || sess.LegacyUserName != "Ana" {
		t.Fatalf("expected legacy pair set, got %+v", sess)
	}
	if !sess.IsLoggedIn() {
		t.Fatalf("session should be logged in")
	}

	got, err := svc.Lookup(context.Background(), sess.Token)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if id, ok := got.UserIDNumber(); !ok || id != 4 {
		t.Fatalf("unexpected user id %v %v", id, ok)
	}
}

func TestLoginPropagatesUpstreamError(t *testing.T) {
	svc := New(&stubUpstream{loginErr: domain.ErrInvalidCredentials}, newMemoryRepo(), time.Hour)
	if _, err := svc.Login(context.Background(), "a@b.c", "x"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, err := svc.Login(context.Background(), "", "x"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials for empty email, got %v", err)
	}
}

func TestLegacyLogin(t *testing.T) {
	svc := New(&stubUpstream{}, newMemoryRepo(), time.Hour)
	sess, err := svc.LegacyLogin(context.Background(), "Luis")
	if err != nil {
		t.Fatalf("legacy login: %v", err)
	}
	if sess.HasUsableToken() || !sess.IsLoggedIn() || sess.DisplayName() != "Luis" {
		t.Fatalf("unexpected legacy session %+v", sess)
	}
	if _, err := svc.LegacyLogin(context.Background(), " "); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLookupExpiredSession(t *testing.T) {
	repo := newMemoryRepo()
	svc := New(&stubUpstream{login: validLogin()}, repo, time.Hour)
	sess, _ := svc.Login(context.Background(), "a@b.c", "x")

	svc.tokens.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := svc.Lookup(context.Background(), sess.Token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token, got %v", err)
	}
	if _, ok := repo.sessions[sess.Token]; ok {
		t.Fatalf("expired session should be deleted")
	}
}

func TestLogoutIgnoresUpstreamFailure(t *testing.T) {
	repo := newMemoryRepo()
	up := &stubUpstream{login: validLogin(), logoutErr: domain.ErrUpstreamUnavailable}
	svc := New(up, repo, time.Hour)
	sess, _ := svc.Login(context.Background(), "a@b.c", "x")

	if err := svc.Logout(context.Background(), sess.Token); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if up.logoutCalls != 1 {
		t.Fatalf("expected upstream logout call")
	}
	if len(repo.sessions) != 0 {
		t.Fatalf("session should be gone")
	}
}

func TestRegisterValidates(t *testing.T) {
	up := &stubUpstream{}
	svc := New(up, newMemoryRepo(), time.Hour)
	if _, err := svc.Register(context.Background(), upstream.RegisterInput{Email: "a@b.c"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := svc.Register(context.Background(), upstream.RegisterInput{Name: "Ana", Email: "A@B.C", Password: "pw"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if up.registered.Email != "a@b.c" {
		t.Fatalf("email should be normalized, got %q", up.registered.Email)
	}
}
