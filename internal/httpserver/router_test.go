package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"camisfut-storefront/internal/domain"
	"camisfut-storefront/internal/logging"
	"github.com/gin-gonic/gin"
)

func doRequest(env *testEnv, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func authHeader() map[string]string {
	return map[string]string{"Authorization": "Bearer " + testSessionToken}
}

func TestBuildRouterRequiresDeps(t *testing.T) {
	if _, err := buildRouter(logging.Discard(), Deps{}); err == nil {
		t.Fatalf("expected error for missing deps")
	}
}

func TestHealthAndReady(t *testing.T) {
	env := newTestEnv(t)
	if rec := doRequest(env, http.MethodGet, "/healthz", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec := doRequest(env, http.MethodGet, "/readyz", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("expected ready without checks, got %d", rec.Code)
	}
}

func TestReadyReportsFailingComponent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/readyz", readyHandler(map[string]ReadyCheck{
		"db":    func(context.Context) error { return nil },
		"redis": func(context.Context) error { return errors.New("connection refused") },
	}))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"redis":"unavailable"`) || !strings.Contains(rec.Body.String(), `"db":"ok"`) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestRequestLoggerAttachesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	router := gin.New()
	router.Use(requestLogger(logging.NewWithWriter(&buf, "info")))
	router.GET("/ping", func(c *gin.Context) {
		logging.FromContext(c.Request.Context()).Info("inside handler")
		c.Status(http.StatusTeapot)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	rid := rec.Header().Get(requestIDHeader)
	if rid == "" {
		t.Fatalf("expected request id header")
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %d: %s", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &entry); err != nil {
		t.Fatalf("decode log: %v", err)
	}
	if entry["request_id"] != rid || entry["path"] != "/ping" || entry["level"] != slog.LevelWarn.String() {
		t.Fatalf("unexpected log entry %v", entry)
	}
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("x: %w", domain.ErrNotFound), http.StatusNotFound},
		{domain.ErrAlreadyReviewed, http.StatusConflict},
		{domain.ErrEmptyCart, http.StatusBadRequest},
		{domain.ErrValidation, http.StatusBadRequest},
		{domain.ErrUnauthenticated, http.StatusUnauthorized},
		{domain.ErrSessionExpired, http.StatusUnauthorized},
		{domain.ErrUpstreamUnavailable, http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got, _ := statusFor(tc.err); got != tc.want {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.want, got)
		}
	}
}

func TestCatalogParsesFilters(t *testing.T) {
	env := newTestEnv(t)
	rec := doRequest(env, http.MethodGet, "/api/catalog?type=vintage&maxPrice=100", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp productListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 1 || resp.Products[0].ID != 2 {
		t.Fatalf("expected only the vintage jersey, got %+v", resp)
	}
	if !env.products.filter.Type["vintage"] {
		t.Fatalf("filter not parsed: %+v", env.products.filter)
	}
}

func TestCatalogUpstreamFailure(t *testing.T) {
	env := newTestEnv(t)
	env.products.err = domain.ErrUpstreamUnavailable
	rec := doRequest(env, http.MethodGet, "/api/catalog", "", nil)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
}

func TestProductByID(t *testing.T) {
	env := newTestEnv(t)
	if rec := doRequest(env, http.MethodGet, "/api/catalog/1", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec := doRequest(env, http.MethodGet, "/api/catalog/42", "", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if rec := doRequest(env, http.MethodGet, "/api/catalog/abc", "", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if rec := doRequest(env, http.MethodGet, "/api/catalog/featured", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("expected featured route, got %d", rec.Code)
	}
}

func TestCollectionUnknownHeader(t *testing.T) {
	env := newTestEnv(t)
	rec := doRequest(env, http.MethodGet, "/api/catalog/collections/nope", "", nil)
	if rec.Code != http.StatusOK || rec.Header().Get("X-Collection-Unknown") != "true" {
		t.Fatalf("expected unknown collection marker, got %d %v", rec.Code, rec.Header())
	}
}

func TestLoginAndMe(t *testing.T) {
	env := newTestEnv(t)
	rec := doRequest(env, http.MethodPost, "/api/auth/login", `{"email":"a@b.c","password":"x"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"token":"session-token"`) {
		t.Fatalf("expected session token in body: %s", rec.Body.String())
	}

	rec = doRequest(env, http.MethodGet, "/api/auth/me", "", authHeader())
	if !strings.Contains(rec.Body.String(), `"isLoggedIn":true`) || strings.Contains(rec.Body.String(), "token") {
		t.Fatalf("unexpected me body: %s", rec.Body.String())
	}

	rec = doRequest(env, http.MethodGet, "/api/auth/me", "", nil)
	if !strings.Contains(rec.Body.String(), `"isLoggedIn":false`) {
		t.Fatalf("anonymous me should not be logged in: %s", rec.Body.String())
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.auth.loginErr = domain.ErrInvalidCredentials
	rec := doRequest(env, http.MethodPost, "/api/auth/login", `{"email":"a@b.c","password":"x"}`, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	rec = doRequest(env, http.MethodPost, "/api/auth/login", `{"email":"a@b.c"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	rec := doRequest(env, http.MethodPost, "/api/auth/logout", "", authHeader())
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if len(env.auth.loggedOut) != 1 || env.auth.loggedOut[0] != testSessionToken {
		t.Fatalf("expected logout of session token, got %v", env.auth.loggedOut)
	}
}
