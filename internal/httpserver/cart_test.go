package httpserver

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	cartsvc "camisfut-storefront/internal/service/cart"
)

func decodeSnapshot(t *testing.T, body []byte) cartsvc.Snapshot {
	t.Helper()
	var snap cartsvc.Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		t.Fatalf("decode snapshot: %v body=%s", err, body)
	}
	return snap
}

func TestVisitorCartIssuesID(t *testing.T) {
	env := newTestEnv(t)
	rec := doRequest(env, http.MethodGet, "/api/cart", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	visitor := rec.Header().Get(visitorHeader)
	if visitor == "" {
		t.Fatalf("expected visitor id header")
	}

	item := `{"productoId":1,"talla":"M","cantidad":2,"precio":20,"nombre":"Real Madrid"}`
	rec = doRequest(env, http.MethodPost, "/api/cart/items", item, map[string]string{visitorHeader: visitor})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get(visitorHeader) != visitor {
		t.Fatalf("visitor id should be kept")
	}
	snap := decodeSnapshot(t, rec.Body.Bytes())
	if len(snap.Items) != 1 || snap.Totals.ItemCount != 2 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if _, ok := env.cartRepo.carts["visitor:"+visitor]; !ok {
		t.Fatalf("cart should be persisted under the visitor key")
	}
}

func TestCartItemRequiresSize(t *testing.T) {
	env := newTestEnv(t)
	rec := doRequest(env, http.MethodPost, "/api/cart/items", `{"productoId":1}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCartUpdateAndRemove(t *testing.T) {
	env := newTestEnv(t)
	h := authHeader()
	doRequest(env, http.MethodPost, "/api/cart/items", `{"productoId":1,"talla":"M","precio":10}`, h)

	rec := doRequest(env, http.MethodPatch, "/api/cart/items/1", `{"cantidad":4}`, h)
	if rec.Code != http.StatusOK || decodeSnapshot(t, rec.Body.Bytes()).Totals.ItemCount != 4 {
		t.Fatalf("expected qty 4, got %d %s", rec.Code, rec.Body.String())
	}
	if rec := doRequest(env, http.MethodDelete, "/api/cart/items/9", "", h); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing line, got %d", rec.Code)
	}
	rec = doRequest(env, http.MethodDelete, "/api/cart/items/1", "", h)
	if rec.Code != http.StatusOK || len(decodeSnapshot(t, rec.Body.Bytes()).Items) != 0 {
		t.Fatalf("expected empty cart, got %s", rec.Body.String())
	}
}

func TestCheckoutRequiresLogin(t *testing.T) {
	env := newTestEnv(t)
	rec := doRequest(env, http.MethodGet, "/api/cart", "", nil)
	visitor := map[string]string{visitorHeader: rec.Header().Get(visitorHeader)}
	doRequest(env, http.MethodPost, "/api/cart/items", `{"productoId":1,"talla":"M","precio":10}`, visitor)

	rec = doRequest(env, http.MethodPost, "/api/cart/checkout", "", visitor)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"redirect":"/inicio-sesion"`) {
		t.Fatalf("expected login redirect, got %s", rec.Body.String())
	}
	if env.creator.calls != 0 {
		t.Fatalf("no order must be submitted")
	}
}

func TestCheckoutSubmitsOrder(t *testing.T) {
	env := newTestEnv(t)
	h := authHeader()
	if rec := doRequest(env, http.MethodPost, "/api/cart/checkout", "", h); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty cart, got %d", rec.Code)
	}

	doRequest(env, http.MethodPost, "/api/cart/items", `{"productoId":1,"talla":"M","cantidad":2,"precio":10}`, h)
	rec := doRequest(env, http.MethodPost, "/api/cart/checkout", "", h)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rec.Code, rec.Body.String())
	}
	if env.creator.calls != 1 {
		t.Fatalf("expected one order submission")
	}
	rec = doRequest(env, http.MethodGet, "/api/cart", "", h)
	if len(decodeSnapshot(t, rec.Body.Bytes()).Items) != 0 {
		t.Fatalf("cart should be empty after checkout")
	}
}

func TestLoginMergesVisitorCart(t *testing.T) {
	env := newTestEnv(t)
	rec := doRequest(env, http.MethodGet, "/api/cart", "", nil)
	visitor := map[string]string{visitorHeader: rec.Header().Get(visitorHeader)}
	doRequest(env, http.MethodPost, "/api/cart/items", `{"productoId":2,"talla":"L","precio":60}`, visitor)

	rec = doRequest(env, http.MethodPost, "/api/auth/login", `{"email":"a@b.c","password":"x"}`, visitor)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: %d", rec.Code)
	}
	rec = doRequest(env, http.MethodGet, "/api/cart", "", authHeader())
	snap := decodeSnapshot(t, rec.Body.Bytes())
	if len(snap.Items) != 1 || snap.Items[0].ProductID != 2 {
		t.Fatalf("expected merged visitor line, got %+v", snap.Items)
	}
}
