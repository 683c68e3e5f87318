package upstream

import (
	"context"
	"fmt"
	"net/http"

	"camisfut-storefront/internal/domain"
)

type RegisterInput struct {
	Name     string `json:"nombre"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"rol,omitempty"`
}

type wireUser struct {
	ID     flexString `json:"id"`
	Nombre string     `json:"nombre"`
	Email  string     `json:"email"`
	Roles  []string   `json:"roles"`
}

func (w wireUser) toDomain() domain.User {
	return domain.User{ID: string(w.ID), Name: w.Nombre, Email: w.Email, Roles: w.Roles}
}

type LoginResult struct {
	Token string
	User  domain.User
}

// Register creates an upstream account. The upstream answer is passed back
// as-is since its shape is not stable.
func (c *Client) Register(ctx context.Context, in RegisterInput) (map[string]any, error) {
	var out map[string]any
	if err := c.do(ctx, http.MethodPost, "/usuarios/registrar", in, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Login authenticates against the upstream and validates the answer: a
// token of at least ten characters and a user with an id.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	var resp struct {
		Token   string    `json:"token"`
		User    *wireUser `json:"user"`
		Message string    `json:"message"`
	}
	in := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", in, &resp); err != nil {
		return LoginResult{}, err
	}
	if resp.Token == "" {
		return LoginResult{}, fmt.Errorf("%w: login response without token", domain.ErrInvalidCredentials)
	}
	if resp.User == nil || resp.User.ID == "" {
		return LoginResult{}, fmt.Errorf("%w: login response without user id", domain.ErrInvalidCredentials)
	}
	if len(resp.Token) < 10 {
		return LoginResult{}, fmt.Errorf("%w: login token too short", domain.ErrInvalidCredentials)
	}
	if resp.User.Nombre == "" || resp.User.Email == "" {
		c.logger.Warn("upstream login returned incomplete profile", "user_id", string(resp.User.ID))
	}
	return LoginResult{Token: resp.Token, User: resp.User.toDomain()}, nil
}

// Logout tells the upstream the token in ctx is no longer used.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
}
