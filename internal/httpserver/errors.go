package httpserver

import (
	"errors"
	"net/http"

	"camisfut-storefront/internal/domain"
	"camisfut-storefront/internal/logging"
	adminsvc "camisfut-storefront/internal/service/admin"
	authsvc "camisfut-storefront/internal/service/auth"
	"github.com/gin-gonic/gin"
)

// loginRedirect is where the storefront sends users that must log in.
const loginRedirect = "/inicio-sesion"

type errorResponse struct {
	Error    string `json:"error"`
	Message  string `json:"message"`
	Redirect string `json:"redirect,omitempty"`
}

// statusFor maps domain errors to HTTP status and a stable error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrAlreadyReviewed):
		return http.StatusConflict, "already_reviewed"
	case errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict, "already_exists"
	case errors.Is(err, domain.ErrEmptyCart):
		return http.StatusBadRequest, "empty_cart"
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, "validation_failed"
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, "login_required"
	case errors.Is(err, domain.ErrSessionExpired):
		return http.StatusUnauthorized, "session_expired"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid_credentials"
	case errors.Is(err, authsvc.ErrInvalidToken), errors.Is(err, adminsvc.ErrInvalidToken):
		return http.StatusUnauthorized, "invalid_token"
	case errors.Is(err, adminsvc.ErrLoginDisabled):
		return http.StatusForbidden, "admin_login_disabled"
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return http.StatusBadGateway, "upstream_unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func writeError(c *gin.Context, err error) {
	status, code := statusFor(err)
	resp := errorResponse{Error: code, Message: err.Error()}
	if status == http.StatusInternalServerError {
		resp.Message = "internal error"
		logging.FromContext(c.Request.Context()).Error("request failed", "error", err)
	}
	if status == http.StatusUnauthorized && code != "invalid_token" {
		resp.Redirect = loginRedirect
	}
	_ = c.Error(err)
	c.JSON(status, resp)
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, errorResponse{Error: "bad_request", Message: msg})
}
