package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"camisfut-storefront/internal/cache"
	"camisfut-storefront/internal/config"
	"camisfut-storefront/internal/db"
	"camisfut-storefront/internal/events"
	"camisfut-storefront/internal/httpserver"
	"camisfut-storefront/internal/logging"
	"camisfut-storefront/internal/migrate"
	cartrepo "camisfut-storefront/internal/repository/cart"
	hiddenrepo "camisfut-storefront/internal/repository/hiddenorder"
	overlayrepo "camisfut-storefront/internal/repository/overlay"
	sessionrepo "camisfut-storefront/internal/repository/session"
	adminsvc "camisfut-storefront/internal/service/admin"
	"camisfut-storefront/internal/service/anonymous"
	authsvc "camisfut-storefront/internal/service/auth"
	cartsvc "camisfut-storefront/internal/service/cart"
	ordersvc "camisfut-storefront/internal/service/order"
	productsvc "camisfut-storefront/internal/service/product"
	reviewsvc "camisfut-storefront/internal/service/review"
	"camisfut-storefront/internal/upstream"
)

const sessionSweepInterval = time.Hour

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx := context.Background()
	dbpool, err := db.ConnectWithOptions(ctx, cfg.DBConnString, db.PoolOptions{
		MaxConns: int32(cfg.DBMaxConns),
		MinConns: int32(cfg.DBMinConns),
	})
	if err != nil {
		fatal(logger, "connect to db", err)
	}
	defer dbpool.Close()

	if err := migrate.Apply(ctx, dbpool); err != nil {
		fatal(logger, "apply migrations", err)
	}

	client := upstream.New(upstream.Options{
		BaseURL: cfg.UpstreamBaseURL,
		Timeout: cfg.UpstreamTimeout,
		Retries: cfg.UpstreamRetries,
		Logger:  logger.With("component", "upstream"),
	})

	readyChecks := map[string]httpserver.ReadyCheck{"db": dbpool.Ping}

	var productCache cache.ProductCache = cache.NewLRU(cfg.ProductCacheSize, cfg.ProductCacheTTL)
	if cfg.RedisAddr != "" {
		rdb, err := cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Warn("redis unavailable, using in-process cache", "addr", cfg.RedisAddr, "error", err)
		} else {
			redisCache := cache.NewRedis(rdb, cfg.ProductCacheTTL)
			defer redisCache.Close()
			productCache = redisCache
			readyChecks["redis"] = redisCache.Ping
		}
	}

	var publisher events.Publisher = events.NewLogPublisher(logger.With("component", "events"))
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaProducer(cfg.KafkaBrokers)
	}
	defer publisher.Close()

	pricing, err := cartsvc.ParsePricing(cfg.CartTaxRate, cfg.CartShippingFee, cfg.CartFreeShippingThreshold)
	if err != nil {
		fatal(logger, "parse cart pricing", err)
	}

	overlay := overlayrepo.NewPostgres(dbpool, logger)
	sessions := sessionrepo.NewPostgres(dbpool)

	authService := authsvc.New(client, sessions, cfg.SessionTTL)
	productService := productsvc.New(client, overlay)
	cartService := cartsvc.New(cartrepo.NewPostgres(dbpool), client, cartsvc.Options{
		Pricing:    pricing,
		Publisher:  publisher,
		OrderTopic: cfg.KafkaOrderTopic,
	})
	orderService := ordersvc.New(client, client, overlay, hiddenrepo.NewPostgres(dbpool), ordersvc.Options{
		Cache:       productCache,
		Concurrency: cfg.EnrichConcurrency,
	})
	adminAuth, err := adminsvc.NewAuthenticator(adminsvc.AuthConfig{
		Email:        cfg.AdminEmail,
		Password:     cfg.AdminPassword,
		PasswordHash: cfg.AdminPasswordHash,
		Secret:       cfg.AdminJWTSecret,
		TTL:          cfg.AdminSessionTTL,
	})
	if err != nil {
		fatal(logger, "init admin authenticator", err)
	}
	if !adminAuth.Enabled() {
		logger.Warn("admin login disabled, set ADMIN_PASSWORD or ADMIN_PASSWORD_HASH")
	}

	visitors := anonymous.New(anonymous.DefaultTTL)
	srv, err := httpserver.New(cfg.HTTPAddr, logger, httpserver.Deps{
		AuthSvc:     authService,
		VisitorSvc:  visitors,
		ProductSvc:  productService,
		CartSvc:     cartService,
		OrderSvc:    orderService,
		ReviewSvc:   reviewsvc.New(client),
		AdminAuth:   adminAuth,
		AdminSvc:    adminsvc.New(overlay, productService, publisher, cfg.KafkaOverlayTopic),
		CORSOrigins: cfg.CORSOrigins,
		ReadyChecks: readyChecks,
	})
	if err != nil {
		fatal(logger, "init server", err)
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go sweepSessions(sweepCtx, logger, authService, visitors)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Info("shutting down", "signal", sig.String())
	case err := <-serverErr:
		logger.Error("server error", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	} else {
		logger.Info("server stopped")
	}
}

func sweepSessions(ctx context.Context, logger *slog.Logger, auth *authsvc.Service, visitors *anonymous.Service) {
	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := visitors.PurgeExpired(); n > 0 {
				logger.Info("purged expired visitor ids", "count", n)
			}
			n, err := auth.PurgeExpired(ctx)
			if err != nil {
				logger.Warn("purge expired sessions", "error", err)
				continue
			}
			if n > 0 {
				logger.Info("purged expired sessions", "count", n)
			}
		}
	}
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "error", err)
	os.Exit(1)
}
