package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"camisfut-storefront/internal/catalog"
	"camisfut-storefront/internal/domain"
	adminsvc "camisfut-storefront/internal/service/admin"
	cartsvc "camisfut-storefront/internal/service/cart"
	"camisfut-storefront/internal/upstream"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type authService interface {
	Register(ctx context.Context, in upstream.RegisterInput) (map[string]any, error)
	Login(ctx context.Context, email, password string) (domain.Session, error)
	LegacyLogin(ctx context.Context, name string) (domain.Session, error)
	Logout(ctx context.Context, token string) error
	Lookup(ctx context.Context, token string) (*domain.Session, error)
}

type visitorService interface {
	Issue() string
	Resolve(id string) (string, error)
	Forget(id string)
}

type productService interface {
	Catalog(ctx context.Context, f catalog.Filter) ([]domain.Product, error)
	Featured(ctx context.Context) ([]domain.Product, error)
	ByCategory(ctx context.Context, category string) ([]domain.Product, error)
	Search(ctx context.Context, term string) ([]domain.Product, error)
	Collection(ctx context.Context, name string) ([]domain.Product, bool, error)
	Product(ctx context.Context, id int) (domain.Product, error)
}

type cartService interface {
	Engine(ctx context.Context, key string) (*cartsvc.Engine, error)
	Merge(ctx context.Context, fromKey, toKey string) error
	Checkout(ctx context.Context, sess *domain.Session, key string) (domain.Order, error)
}

type orderService interface {
	List(ctx context.Context, sess *domain.Session) ([]domain.Order, error)
	Hide(ctx context.Context, sess *domain.Session, orderID int) error
	RestoreHidden(ctx context.Context, sess *domain.Session) error
}

type reviewService interface {
	List(ctx context.Context) ([]domain.Review, error)
	CreateForProduct(ctx context.Context, sess *domain.Session, productID, rating int, comment string) (domain.Review, error)
	CreateGeneral(ctx context.Context, sess *domain.Session, rating int, comment string) (domain.Review, error)
	Update(ctx context.Context, sess *domain.Session, id, rating int, comment string) (domain.Review, error)
	Delete(ctx context.Context, sess *domain.Session, id int) error
	HasGeneralOpinion(ctx context.Context, sess *domain.Session) bool
}

type adminAuthenticator interface {
	Login(email, password string) (string, time.Time, error)
	Validate(raw string) (*adminsvc.Claims, error)
	Logout(raw string) error
}

type adminService interface {
	Products(ctx context.Context) ([]domain.Product, error)
	Product(ctx context.Context, id int) (domain.Product, error)
	Create(ctx context.Context, patch json.RawMessage) (domain.Product, error)
	Update(ctx context.Context, id int, patch json.RawMessage) (domain.Product, error)
	Delete(ctx context.Context, id int) error
	Restore(ctx context.Context, id int) (bool, error)
	Export(ctx context.Context) ([]byte, error)
	Import(ctx context.Context, data []byte) (int, error)
	Clear(ctx context.Context) error
	Modifications(ctx context.Context) ([]domain.OverlayEntry, error)
	Sync(ctx context.Context) (int, error)
}

// Deps carries the services the router dispatches to.
type Deps struct {
	AuthSvc     authService
	VisitorSvc  visitorService
	ProductSvc  productService
	CartSvc     cartService
	OrderSvc    orderService
	ReviewSvc   reviewService
	AdminAuth   adminAuthenticator
	AdminSvc    adminService
	CORSOrigins []string
	ReadyChecks map[string]ReadyCheck
}

// buildRouter wires routes for the API.
func buildRouter(logger *slog.Logger, deps Deps) (*gin.Engine, error) {
	if deps.AuthSvc == nil || deps.VisitorSvc == nil || deps.ProductSvc == nil || deps.CartSvc == nil ||
		deps.OrderSvc == nil || deps.ReviewSvc == nil || deps.AdminAuth == nil || deps.AdminSvc == nil {
		return nil, errors.New("httpserver: missing service dependency")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))
	if len(deps.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     deps.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", visitorHeader},
			ExposeHeaders:    []string{visitorHeader, requestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(deps.ReadyChecks))

	api := router.Group("/api")
	api.Use(sessionMiddleware(deps.AuthSvc))

	authGroup := api.Group("/auth")
	authGroup.POST("/register", registerHandler(deps.AuthSvc))
	authGroup.POST("/login", loginHandler(deps.AuthSvc, deps.CartSvc, deps.VisitorSvc))
	authGroup.POST("/legacy-login", legacyLoginHandler(deps.AuthSvc))
	authGroup.POST("/logout", logoutHandler(deps.AuthSvc))
	authGroup.GET("/me", meHandler())

	catalogGroup := api.Group("/catalog")
	catalogGroup.GET("", catalogHandler(deps.ProductSvc))
	catalogGroup.GET("/featured", featuredHandler(deps.ProductSvc))
	catalogGroup.GET("/search", searchHandler(deps.ProductSvc))
	catalogGroup.GET("/category/:category", categoryHandler(deps.ProductSvc))
	catalogGroup.GET("/collections/:name", collectionHandler(deps.ProductSvc))
	catalogGroup.GET("/:id", productHandler(deps.ProductSvc))

	cartGroup := api.Group("/cart")
	cartGroup.Use(cartKeyMiddleware(deps.VisitorSvc))
	cartGroup.GET("", getCartHandler(deps.CartSvc))
	cartGroup.DELETE("", clearCartHandler(deps.CartSvc))
	cartGroup.POST("/items", addCartItemHandler(deps.CartSvc))
	cartGroup.PATCH("/items/:id", updateCartItemHandler(deps.CartSvc))
	cartGroup.DELETE("/items/:id", removeCartItemHandler(deps.CartSvc))
	cartGroup.GET("/events", cartEventsHandler(deps.CartSvc))
	cartGroup.POST("/checkout", checkoutHandler(deps.CartSvc))

	orders := api.Group("/orders")
	orders.GET("", listOrdersHandler(deps.OrderSvc))
	orders.POST("/:id/hide", hideOrderHandler(deps.OrderSvc))
	orders.DELETE("/hidden", restoreHiddenHandler(deps.OrderSvc))

	reviews := api.Group("/reviews")
	reviews.GET("", listReviewsHandler(deps.ReviewSvc))
	reviews.POST("", createReviewHandler(deps.ReviewSvc))
	reviews.POST("/general", createGeneralReviewHandler(deps.ReviewSvc))
	reviews.GET("/general/mine", hasGeneralOpinionHandler(deps.ReviewSvc))
	reviews.PUT("/:id", updateReviewHandler(deps.ReviewSvc))
	reviews.DELETE("/:id", deleteReviewHandler(deps.ReviewSvc))

	admin := api.Group("/admin")
	admin.POST("/login", adminLoginHandler(deps.AdminAuth))
	secured := admin.Group("")
	secured.Use(adminMiddleware(deps.AdminAuth))
	secured.POST("/logout", adminLogoutHandler(deps.AdminAuth))
	secured.GET("/session", adminSessionHandler())
	secured.GET("/products", adminListHandler(deps.AdminSvc))
	secured.POST("/products", adminCreateHandler(deps.AdminSvc))
	secured.GET("/products/:id", adminGetHandler(deps.AdminSvc))
	secured.PUT("/products/:id", adminUpdateHandler(deps.AdminSvc))
	secured.DELETE("/products/:id", adminDeleteHandler(deps.AdminSvc))
	secured.POST("/products/:id/restore", adminRestoreHandler(deps.AdminSvc))
	secured.GET("/overlay", adminOverlayHandler(deps.AdminSvc))
	secured.GET("/overlay/export", adminExportHandler(deps.AdminSvc))
	secured.POST("/overlay/import", adminImportHandler(deps.AdminSvc))
	secured.DELETE("/overlay", adminClearHandler(deps.AdminSvc))
	secured.POST("/overlay/sync", adminSyncHandler(deps.AdminSvc))

	return router, nil
}
