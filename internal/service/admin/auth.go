package admin

import (
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"camisfut-storefront/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	RoleAdmin         = "admin"
	DefaultSessionTTL = 8 * time.Hour
)

var (
	// ErrInvalidToken indicates a missing, expired, revoked or non-admin token.
	ErrInvalidToken = errors.New("invalid admin token")
	// ErrLoginDisabled is returned when no admin password is configured.
	ErrLoginDisabled = errors.New("admin login disabled")
)

type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

type AuthConfig struct {
	Email        string
	Password     string
	PasswordHash string
	Secret       string
	TTL          time.Duration
}

// Authenticator checks the configured admin credentials and issues HS256
// tokens. Logged out tokens are remembered until they expire.
type Authenticator struct {
	email  string
	hash   []byte
	secret []byte
	ttl    time.Duration
	now    func() time.Time

	mu      sync.Mutex
	revoked map[string]time.Time
}

func NewAuthenticator(cfg AuthConfig) (*Authenticator, error) {
	a := &Authenticator{
		email:   strings.ToLower(strings.TrimSpace(cfg.Email)),
		ttl:     cfg.TTL,
		now:     time.Now,
		revoked: make(map[string]time.Time),
	}
	if a.ttl <= 0 {
		a.ttl = DefaultSessionTTL
	}

	switch {
	case cfg.PasswordHash != "":
		a.hash = []byte(cfg.PasswordHash)
	case cfg.Password != "":
		hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash admin password: %w", err)
		}
		a.hash = hashed
	}

	if cfg.Secret != "" {
		a.secret = []byte(cfg.Secret)
	} else {
		a.secret = make([]byte, 32)
		if _, err := rand.Read(a.secret); err != nil {
			return nil, fmt.Errorf("generate admin secret: %w", err)
		}
	}
	return a, nil
}

// Enabled reports whether admin login is possible at all.
func (a *Authenticator) Enabled() bool {
	return len(a.hash) > 0 && a.email != ""
}

// Login checks the credentials and returns a signed token.
func (a *Authenticator) Login(email, password string) (string, time.Time, error) {
	if !a.Enabled() {
		return "", time.Time{}, ErrLoginDisabled
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email != a.email {
		return "", time.Time{}, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(a.hash, []byte(password)); err != nil {
		return "", time.Time{}, domain.ErrInvalidCredentials
	}

	now := a.now()
	exp := now.Add(a.ttl)
	claims := Claims{
		Email: a.email,
		Role:  RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   a.email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign admin token: %w", err)
	}
	return signed, exp, nil
}

// Validate parses a token and checks signature, expiry, role and
// revocation.
func (a *Authenticator) Validate(raw string) (*Claims, error) {
	if raw == "" {
		return nil, ErrInvalidToken
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Role != RoleAdmin {
		return nil, ErrInvalidToken
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.revoked[claims.ID]; ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// IsLoggedIn reports whether raw is a live admin token.
func (a *Authenticator) IsLoggedIn(raw string) bool {
	_, err := a.Validate(raw)
	return err == nil
}

// Logout revokes the token. Revocations are pruned once expired.
func (a *Authenticator) Logout(raw string) error {
	claims, err := a.Validate(raw)
	if err != nil {
		return err
	}
	now := a.now()

	a.mu.Lock()
	defer a.mu.Unlock()
	for id, exp := range a.revoked {
		if now.After(exp) {
			delete(a.revoked, id)
		}
	}
	a.revoked[claims.ID] = claims.ExpiresAt.Time
	return nil
}
