package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a uniqueness conflict.
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation failed")

	// ErrUnauthenticated is returned before any upstream call when the
	// caller has no logged-in session.
	ErrUnauthenticated    = errors.New("login required")
	ErrSessionExpired     = errors.New("session expired")
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrEmptyCart       = errors.New("cart is empty")
	ErrAlreadyReviewed = errors.New("product already reviewed")

	// ErrUpstreamUnavailable covers transport failures and 5xx answers from
	// the product/order API.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)
