package httpserver

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
)

func adminToken(t *testing.T, env *testEnv) map[string]string {
	t.Helper()
	rec := doRequest(env, http.MethodPost, "/api/admin/login", `{"email":"admin@camisfut.com","password":"admin123"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin login: %d %s", rec.Code, rec.Body.String())
	}
	var resp adminLoginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return map[string]string{"Authorization": "Bearer " + resp.Token}
}

func TestAdminRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t)
	if rec := doRequest(env, http.MethodGet, "/api/admin/products", "", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if rec := doRequest(env, http.MethodGet, "/api/admin/products", "", authHeader()); rec.Code != http.StatusUnauthorized {
		t.Fatalf("storefront session must not grant admin, got %d", rec.Code)
	}
	rec := doRequest(env, http.MethodPost, "/api/admin/login", `{"email":"admin@camisfut.com","password":"nope"}`, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad password, got %d", rec.Code)
	}
}

func TestAdminProductsFlow(t *testing.T) {
	env := newTestEnv(t)
	h := adminToken(t, env)

	if rec := doRequest(env, http.MethodGet, "/api/admin/products", "", h); rec.Code != http.StatusOK {
		t.Fatalf("list: %d", rec.Code)
	}
	if rec := doRequest(env, http.MethodPost, "/api/admin/products", `{"precio":50}`, h); rec.Code != http.StatusCreated {
		t.Fatalf("create: %d", rec.Code)
	}
	if rec := doRequest(env, http.MethodPut, "/api/admin/products/42", `{"precio":50}`, h); rec.Code != http.StatusNotFound {
		t.Fatalf("update unknown: %d", rec.Code)
	}
	if rec := doRequest(env, http.MethodPut, "/api/admin/products/1", `{not json`, h); rec.Code != http.StatusBadRequest {
		t.Fatalf("update malformed: %d", rec.Code)
	}
	if rec := doRequest(env, http.MethodDelete, "/api/admin/products/1", "", h); rec.Code != http.StatusNoContent {
		t.Fatalf("delete: %d", rec.Code)
	}
	rec := doRequest(env, http.MethodPost, "/api/admin/products/1/restore", "", h)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"restored":true`) {
		t.Fatalf("restore: %d %s", rec.Code, rec.Body.String())
	}
}

func TestAdminOverlayImportExport(t *testing.T) {
	env := newTestEnv(t)
	h := adminToken(t, env)

	rec := doRequest(env, http.MethodGet, "/api/admin/overlay/export", "", h)
	if rec.Code != http.StatusOK || !strings.HasPrefix(rec.Body.String(), "[\n  {") {
		t.Fatalf("export: %d %q", rec.Code, rec.Body.String())
	}
	rec = doRequest(env, http.MethodPost, "/api/admin/overlay/import", `[{"id":3},{"id":4}]`, h)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"imported":2`) {
		t.Fatalf("import: %d %s", rec.Code, rec.Body.String())
	}
	if rec := doRequest(env, http.MethodPost, "/api/admin/overlay/import", `nope`, h); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid import, got %d", rec.Code)
	}
	if rec := doRequest(env, http.MethodPost, "/api/admin/overlay/sync", "", h); rec.Code != http.StatusOK || env.admin.synced != 1 {
		t.Fatalf("sync: %d", rec.Code)
	}
}

func TestAdminLogoutRevokes(t *testing.T) {
	env := newTestEnv(t)
	h := adminToken(t, env)
	if rec := doRequest(env, http.MethodGet, "/api/admin/session", "", h); rec.Code != http.StatusOK {
		t.Fatalf("session: %d", rec.Code)
	}
	if rec := doRequest(env, http.MethodPost, "/api/admin/logout", "", h); rec.Code != http.StatusNoContent {
		t.Fatalf("logout: %d", rec.Code)
	}
	if rec := doRequest(env, http.MethodGet, "/api/admin/session", "", h); rec.Code != http.StatusUnauthorized {
		t.Fatalf("revoked token should be rejected, got %d", rec.Code)
	}
}
