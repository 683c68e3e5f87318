package httpserver

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"camisfut-storefront/internal/catalog"
	"camisfut-storefront/internal/domain"
	"camisfut-storefront/internal/logging"
	adminsvc "camisfut-storefront/internal/service/admin"
	"camisfut-storefront/internal/service/anonymous"
	authsvc "camisfut-storefront/internal/service/auth"
	cartsvc "camisfut-storefront/internal/service/cart"
	"camisfut-storefront/internal/upstream"
	"github.com/gin-gonic/gin"
)

const testSessionToken = "session-token"

type stubAuthService struct {
	session   *domain.Session
	loginErr  error
	loggedOut []string
}

func (s *stubAuthService) Register(context.Context, upstream.RegisterInput) (map[string]any, error) {
	return map[string]any{"id": 1}, nil
}

func (s *stubAuthService) Login(context.Context, string, string) (domain.Session, error) {
	if s.loginErr != nil {
		return domain.Session{}, s.loginErr
	}
	return *s.session, nil
}

func (s *stubAuthService) LegacyLogin(_ context.Context, name string) (domain.Session, error) {
	return domain.Session{Token: "legacy", LegacyLoggedIn: true, LegacyUserName: name}, nil
}

func (s *stubAuthService) Logout(_ context.Context, token string) error {
	s.loggedOut = append(s.loggedOut, token)
	return nil
}

func (s *stubAuthService) Lookup(_ context.Context, token string) (*domain.Session, error) {
	if s.session == nil || token != s.session.Token {
		return nil, authsvc.ErrInvalidToken
	}
	return s.session, nil
}

type stubProductService struct {
	products []domain.Product
	err      error
	filter   catalog.Filter
}

func (s *stubProductService) Catalog(_ context.Context, f catalog.Filter) ([]domain.Product, error) {
	s.filter = f
	return catalog.Apply(s.products, f), s.err
}

func (s *stubProductService) Featured(context.Context) ([]domain.Product, error) {
	return s.products, s.err
}

func (s *stubProductService) ByCategory(context.Context, string) ([]domain.Product, error) {
	return s.products, s.err
}

func (s *stubProductService) Search(context.Context, string) ([]domain.Product, error) {
	return s.products, s.err
}

func (s *stubProductService) Collection(_ context.Context, name string) ([]domain.Product, bool, error) {
	return s.products, name == "champions", s.err
}

func (s *stubProductService) Product(_ context.Context, id int) (domain.Product, error) {
	if s.err != nil {
		return domain.Product{}, s.err
	}
	for _, p := range s.products {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Product{}, domain.ErrNotFound
}

type memoryCartStore struct {
	carts map[string]domain.Cart
}

func (m *memoryCartStore) Get(_ context.Context, key string) (*domain.Cart, error) {
	c, ok := m.carts[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (m *memoryCartStore) Save(_ context.Context, c domain.Cart) error {
	m.carts[c.Key] = c
	return nil
}

type stubOrderCreator struct {
	calls int
}

func (s *stubOrderCreator) CreateOrder(_ context.Context, in domain.NewOrder) (domain.Order, error) {
	s.calls++
	return domain.Order{ID: 77, UserID: in.UserID, Status: in.Status, Total: in.Total}, nil
}

type stubOrderService struct {
	orders []domain.Order
	hidden []int
}

func (s *stubOrderService) List(context.Context, *domain.Session) ([]domain.Order, error) {
	return s.orders, nil
}

func (s *stubOrderService) Hide(_ context.Context, _ *domain.Session, id int) error {
	s.hidden = append(s.hidden, id)
	return nil
}

func (s *stubOrderService) RestoreHidden(context.Context, *domain.Session) error {
	s.hidden = nil
	return nil
}

type stubReviewService struct {
	err error
}

func (s *stubReviewService) List(context.Context) ([]domain.Review, error) {
	return nil, s.err
}

func (s *stubReviewService) CreateForProduct(_ context.Context, _ *domain.Session, productID, rating int, comment string) (domain.Review, error) {
	if s.err != nil {
		return domain.Review{}, s.err
	}
	return domain.Review{ID: 1, ProductID: productID, Rating: rating, Comment: comment}, nil
}

func (s *stubReviewService) CreateGeneral(_ context.Context, _ *domain.Session, rating int, comment string) (domain.Review, error) {
	return domain.Review{ID: 2, ProductID: 1, Rating: rating, Comment: comment}, s.err
}

func (s *stubReviewService) Update(_ context.Context, _ *domain.Session, id, rating int, comment string) (domain.Review, error) {
	return domain.Review{ID: id, Rating: rating, Comment: comment}, s.err
}

func (s *stubReviewService) Delete(context.Context, *domain.Session, int) error {
	return s.err
}

func (s *stubReviewService) HasGeneralOpinion(context.Context, *domain.Session) bool {
	return true
}

type stubAdminService struct {
	products []domain.Product
	imported []byte
	synced   int
}

func (s *stubAdminService) Products(context.Context) ([]domain.Product, error) {
	return s.products, nil
}

func (s *stubAdminService) Product(_ context.Context, id int) (domain.Product, error) {
	for _, p := range s.products {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Product{}, domain.ErrNotFound
}

func (s *stubAdminService) Create(_ context.Context, _ json.RawMessage) (domain.Product, error) {
	return domain.Product{ID: 99, Name: "Nuevo Producto"}, nil
}

func (s *stubAdminService) Update(ctx context.Context, id int, _ json.RawMessage) (domain.Product, error) {
	return s.Product(ctx, id)
}

func (s *stubAdminService) Delete(context.Context, int) error { return nil }

func (s *stubAdminService) Restore(context.Context, int) (bool, error) { return true, nil }

func (s *stubAdminService) Export(context.Context) ([]byte, error) {
	return []byte("[\n  {\n    \"id\": 1\n  }\n]"), nil
}

func (s *stubAdminService) Import(_ context.Context, data []byte) (int, error) {
	s.imported = data
	entries, err := adminsvc.ParseEntries(data)
	return len(entries), err
}

func (s *stubAdminService) Clear(context.Context) error { return nil }

func (s *stubAdminService) Modifications(context.Context) ([]domain.OverlayEntry, error) {
	return []domain.OverlayEntry{{ProductID: 1, Doc: json.RawMessage(`{"id":1}`)}}, nil
}

func (s *stubAdminService) Sync(context.Context) (int, error) {
	s.synced++
	return 1, nil
}

type testEnv struct {
	router   *gin.Engine
	auth     *stubAuthService
	products *stubProductService
	carts    *cartsvc.Service
	cartRepo *memoryCartStore
	creator  *stubOrderCreator
	orders   *stubOrderService
	reviews  *stubReviewService
	admin    *stubAdminService
	adminJWT *adminsvc.Authenticator
}

func userSession() *domain.Session {
	return &domain.Session{
		Token:         testSessionToken,
		UpstreamToken: "eyJhbGciOiJIUzI1NiJ9.payload.signature",
		User:          &domain.User{ID: "7", Name: "Ana"},
		ExpiresAt:     time.Now().Add(time.Hour),
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	adminJWT, err := adminsvc.NewAuthenticator(adminsvc.AuthConfig{Email: "admin@camisfut.com", Password: "admin123", Secret: "test"})
	if err != nil {
		t.Fatalf("admin authenticator: %v", err)
	}
	products := []domain.Product{
		{ID: 1, Name: "Real Madrid 24/25", Club: "Real Madrid", Price: 90, CategoryIDs: []int{1, 4, 9}},
		{ID: 2, Name: "Boca Retro", Club: "Boca", Price: 60, CategoryIDs: []int{2, 9}},
	}
	env := &testEnv{
		auth:     &stubAuthService{session: userSession()},
		products: &stubProductService{products: products},
		cartRepo: &memoryCartStore{carts: map[string]domain.Cart{}},
		creator:  &stubOrderCreator{},
		orders:   &stubOrderService{},
		reviews:  &stubReviewService{},
		admin:    &stubAdminService{products: []domain.Product{{ID: 1, Name: "Real Madrid"}}},
		adminJWT: adminJWT,
	}
	env.carts = cartsvc.New(env.cartRepo, env.creator, cartsvc.Options{})

	router, err := buildRouter(logging.Discard(), Deps{
		AuthSvc:    env.auth,
		VisitorSvc: anonymous.New(time.Hour),
		ProductSvc: env.products,
		CartSvc:    env.carts,
		OrderSvc:   env.orders,
		ReviewSvc:  env.reviews,
		AdminAuth:  adminJWT,
		AdminSvc:   env.admin,
	})
	if err != nil {
		t.Fatalf("build router: %v", err)
	}
	env.router = router
	return env
}
