package httpserver

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"camisfut-storefront/internal/domain"
	"camisfut-storefront/internal/logging"
	adminsvc "camisfut-storefront/internal/service/admin"
	authsvc "camisfut-storefront/internal/service/auth"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	visitorHeader   = "X-Visitor-ID"
	requestIDHeader = "X-Request-ID"

	sessionCtxKey     = "session"
	sessionTokenKey   = "sessionToken"
	cartKeyCtxKey     = "cartKey"
	adminClaimsCtxKey = "adminClaims"
	adminTokenCtxKey  = "adminToken"
)

// requestLogger attaches a request-scoped slog logger to the request
// context and logs the outcome of every request.
func requestLogger(base *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(requestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		l := base.With(
			"method", c.Request.Method,
			"path", path,
			"remote_ip", c.ClientIP(),
			"request_id", rid,
		)
		c.Header(requestIDHeader, rid)
		c.Request = c.Request.WithContext(logging.IntoContext(c.Request.Context(), l))

		start := time.Now()
		c.Next()
		dur := time.Since(start)
		status := c.Writer.Status()

		switch {
		case status >= 500:
			l.Error("request completed", "status", status, "duration_ms", dur.Milliseconds(), "error", c.Errors.String())
		case status >= 400:
			l.Warn("request completed", "status", status, "duration_ms", dur.Milliseconds())
		default:
			l.Info("request completed", "status", status, "duration_ms", dur.Milliseconds(), "bytes", c.Writer.Size())
		}
	}
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// sessionMiddleware resolves the optional storefront session. Requests
// without a valid session continue anonymously.
func sessionMiddleware(auth authService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.Next()
			return
		}
		sess, err := auth.Lookup(c.Request.Context(), token)
		switch {
		case err == nil:
			c.Set(sessionCtxKey, sess)
			c.Set(sessionTokenKey, token)
		case errors.Is(err, authsvc.ErrInvalidToken):
		default:
			logging.FromContext(c.Request.Context()).Warn("session lookup failed", "error", err)
		}
		c.Next()
	}
}

// sessionFrom returns the request session, or nil when anonymous.
func sessionFrom(c *gin.Context) *domain.Session {
	v, ok := c.Get(sessionCtxKey)
	if !ok {
		return nil
	}
	sess, _ := v.(*domain.Session)
	return sess
}

func userCartKey(userID int) string {
	return "user:" + strconv.Itoa(userID)
}

// cartKeyMiddleware picks the cart: the session user's, else the visitor
// id from the header. A new visitor id is issued when none is valid.
func cartKeyMiddleware(visitors visitorService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if uid, ok := sessionFrom(c).UserIDNumber(); ok {
			c.Set(cartKeyCtxKey, userCartKey(uid))
			c.Next()
			return
		}
		id, err := visitors.Resolve(c.GetHeader(visitorHeader))
		if err != nil {
			id = visitors.Issue()
		}
		c.Header(visitorHeader, id)
		c.Set(cartKeyCtxKey, "visitor:"+id)
		c.Next()
	}
}

func cartKeyFrom(c *gin.Context) string {
	return c.GetString(cartKeyCtxKey)
}

func adminMiddleware(auth adminAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		claims, err := auth.Validate(token)
		if err != nil {
			writeError(c, adminsvc.ErrInvalidToken)
			c.Abort()
			return
		}
		c.Set(adminClaimsCtxKey, claims)
		c.Set(adminTokenCtxKey, token)
		c.Next()
	}
}
