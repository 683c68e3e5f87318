package httpserver

import (
	"net/http"
	"strings"
	"time"

	"camisfut-storefront/internal/domain"
	"camisfut-storefront/internal/logging"
	"camisfut-storefront/internal/upstream"
	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Name     string `json:"nombre" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"rol"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type legacyLoginRequest struct {
	Name string `json:"nombre" binding:"required"`
}

type sessionResponse struct {
	Token          string       `json:"token,omitempty"`
	User           *domain.User `json:"user,omitempty"`
	IsLoggedIn     bool         `json:"isLoggedIn"`
	DisplayName    string       `json:"displayName,omitempty"`
	LegacyLoggedIn bool         `json:"legacyLoggedIn"`
	ExpiresAt      *time.Time   `json:"expiresAt,omitempty"`
}

func toSessionResponse(sess *domain.Session, withToken bool) sessionResponse {
	if sess == nil {
		return sessionResponse{}
	}
	resp := sessionResponse{
		User:           sess.User,
		IsLoggedIn:     sess.IsLoggedIn(),
		DisplayName:    sess.DisplayName(),
		LegacyLoggedIn: sess.LegacyLoggedIn,
	}
	if withToken {
		resp.Token = sess.Token
		exp := sess.ExpiresAt
		resp.ExpiresAt = &exp
	}
	return resp
}

func registerHandler(auth authService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req registerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "nombre, email and password are required")
			return
		}
		out, err := auth.Register(c.Request.Context(), upstream.RegisterInput{
			Name:     req.Name,
			Email:    req.Email,
			Password: req.Password,
			Role:     req.Role,
		})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, out)
	}
}

// loginHandler opens a session and moves the visitor's cart, if any, into
// the user's cart.
func loginHandler(auth authService, carts cartService, visitors visitorService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "email and password are required")
			return
		}
		ctx := c.Request.Context()
		sess, err := auth.Login(ctx, req.Email, req.Password)
		if err != nil {
			writeError(c, err)
			return
		}

		if visitorID, err := visitors.Resolve(c.GetHeader(visitorHeader)); err == nil {
			if uid, ok := sess.UserIDNumber(); ok {
				if err := carts.Merge(ctx, "visitor:"+visitorID, userCartKey(uid)); err != nil {
					logging.FromContext(ctx).Warn("visitor cart merge failed", "error", err)
				} else {
					visitors.Forget(visitorID)
				}
			}
		}
		c.JSON(http.StatusOK, toSessionResponse(&sess, true))
	}
}

func legacyLoginHandler(auth authService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req legacyLoginRequest
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
			badRequest(c, "nombre is required")
			return
		}
		sess, err := auth.LegacyLogin(c.Request.Context(), req.Name)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, toSessionResponse(&sess, true))
	}
}

func logoutHandler(auth authService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetString(sessionTokenKey)
		if token != "" {
			if err := auth.Logout(c.Request.Context(), token); err != nil {
				writeError(c, err)
				return
			}
		}
		c.Status(http.StatusNoContent)
	}
}

func meHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, toSessionResponse(sessionFrom(c), false))
	}
}
