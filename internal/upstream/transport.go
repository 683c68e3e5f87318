package upstream

import (
	"context"
	"log/slog"
	"net/http"

	"camisfut-storefront/internal/domain"
)

type tokenKey struct{}

// WithToken attaches an upstream bearer token to ctx.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func tokenFrom(ctx context.Context) string {
	tok, _ := ctx.Value(tokenKey{}).(string)
	return tok
}

// BearerTransport sets the Authorization header from the request context.
// Placeholder tokens are never forwarded.
type BearerTransport struct {
	Base   http.RoundTripper
	Logger *slog.Logger
}

func (t *BearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	tok := tokenFrom(req.Context())
	if tok == "" {
		return base.RoundTrip(req)
	}
	if domain.IsTempToken(tok) {
		if t.Logger != nil {
			t.Logger.Warn("placeholder token not forwarded", "path", req.URL.Path)
		}
		return base.RoundTrip(req)
	}
	r := req.Clone(req.Context())
	r.Header.Set("Authorization", "Bearer "+tok)
	return base.RoundTrip(r)
}
