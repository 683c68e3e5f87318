package domain

import (
	"slices"
	"strconv"
	"strings"
	"time"
)

// TempTokenPrefix marks placeholder tokens that must never reach the
// upstream API.
const TempTokenPrefix = "temp-token-"

type User struct {
	ID    string   `json:"id"`
	Name  string   `json:"nombre"`
	Email string   `json:"email"`
	Roles []string `json:"roles,omitempty"`
}

// Session is a storefront login. Token is the opaque id handed to the
// browser; UpstreamToken is the bearer token for the product/order API.
// LegacyLoggedIn and LegacyUserName mirror the older login flags and are
// consulted when no usable token exists.
type Session struct {
	Token          string    `json:"-"`
	UpstreamToken  string    `json:"-"`
	User           *User     `json:"user,omitempty"`
	LegacyLoggedIn bool      `json:"legacyLoggedIn"`
	LegacyUserName string    `json:"legacyUserName,omitempty"`
	ExpiresAt      time.Time `json:"expiresAt"`
	CreatedAt      time.Time `json:"createdAt"`
}

// IsTempToken reports whether tok is a placeholder token.
func IsTempToken(tok string) bool {
	return strings.HasPrefix(tok, TempTokenPrefix)
}

// HasUsableToken reports whether the session carries a real upstream token.
func (s *Session) HasUsableToken() bool {
	if s == nil {
		return false
	}
	t := s.UpstreamToken
	return t != "" && !IsTempToken(t) && len(t) > 20
}

// IsLoggedIn treats a usable token or the legacy flag as logged in.
func (s *Session) IsLoggedIn() bool {
	if s == nil {
		return false
	}
	return s.HasUsableToken() || s.LegacyLoggedIn
}

// UserIDNumber returns the numeric user id, or false when unknown.
func (s *Session) UserIDNumber() (int, bool) {
	if s == nil || s.User == nil || s.User.ID == "" {
		return 0, false
	}
	id, err := strconv.Atoi(s.User.ID)
	if err != nil {
		return 0, false
	}
	return id, true
}

func (s *Session) HasRole(role string) bool {
	if s == nil || s.User == nil {
		return false
	}
	return slices.Contains(s.User.Roles, role)
}

// DisplayName prefers the profile name and falls back to the legacy name.
func (s *Session) DisplayName() string {
	if s == nil {
		return ""
	}
	if s.User != nil && s.User.Name != "" {
		return s.User.Name
	}
	return s.LegacyUserName
}
