package review

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"camisfut-storefront/internal/domain"
	"camisfut-storefront/internal/logging"
	"camisfut-storefront/internal/upstream"
)

// Service manages product reviews and the store-wide "general opinion",
// which the upstream only accepts attached to some product.
type Service struct {
	upstream upstreamReviews

	mu        sync.Mutex
	generalID int
}

type upstreamReviews interface {
	ListReviews(ctx context.Context) ([]domain.Review, error)
	CreateReview(ctx context.Context, in upstream.ReviewInput) (domain.Review, error)
	UpdateReview(ctx context.Context, id int, in upstream.ReviewInput) (domain.Review, error)
	DeleteReview(ctx context.Context, id int) error
}

func New(up upstreamReviews) *Service {
	return &Service{upstream: up}
}

func (s *Service) List(ctx context.Context) ([]domain.Review, error) {
	return s.upstream.ListReviews(ctx)
}

// CreateForProduct posts a review. The upstream answers 400 when the user
// already reviewed the product.
func (s *Service) CreateForProduct(ctx context.Context, sess *domain.Session, productID, rating int, comment string) (domain.Review, error) {
	in, err := s.input(sess, productID, rating, comment)
	if err != nil {
		return domain.Review{}, err
	}
	r, err := s.upstream.CreateReview(withToken(ctx, sess), in)
	if err != nil {
		if upstream.StatusOf(err) == http.StatusBadRequest {
			return domain.Review{}, fmt.Errorf("%w: product %d", domain.ErrAlreadyReviewed, productID)
		}
		return domain.Review{}, err
	}
	return r, nil
}

// CreateGeneral posts a store-wide opinion. The product it is attached to
// is found by trying, in order: the last id that worked, then 1, then the
// first product seen in existing reviews, then 2 through 10.
func (s *Service) CreateGeneral(ctx context.Context, sess *domain.Session, rating int, comment string) (domain.Review, error) {
	if _, err := s.input(sess, 1, rating, comment); err != nil {
		return domain.Review{}, err
	}
	logger := logging.FromContext(ctx)

	var lastErr error
	for _, id := range s.candidates(ctx) {
		in, _ := s.input(sess, id, rating, comment)
		r, err := s.upstream.CreateReview(withToken(ctx, sess), in)
		if err == nil {
			s.mu.Lock()
			s.generalID = id
			s.mu.Unlock()
			return r, nil
		}
		if ctx.Err() != nil || errors.Is(err, domain.ErrSessionExpired) {
			return domain.Review{}, err
		}
		logger.Debug("general opinion rejected for product", "product_id", id, "error", err)
		lastErr = err
	}
	return domain.Review{}, fmt.Errorf("no product accepted the general opinion: %w", lastErr)
}

func (s *Service) candidates(ctx context.Context) []int {
	seen := make(map[int]bool)
	var ids []int
	add := func(id int) {
		if id > 0 && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	s.mu.Lock()
	add(s.generalID)
	s.mu.Unlock()
	add(1)
	if existing, err := s.upstream.ListReviews(ctx); err == nil {
		for _, r := range existing {
			if r.ProductID > 0 {
				add(r.ProductID)
				break
			}
		}
	}
	for id := 2; id <= 10; id++ {
		add(id)
	}
	return ids
}

func (s *Service) Update(ctx context.Context, sess *domain.Session, id, rating int, comment string) (domain.Review, error) {
	if rating < 1 || rating > 5 {
		return domain.Review{}, fmt.Errorf("%w: rating must be between 1 and 5", domain.ErrValidation)
	}
	in := upstream.ReviewInput{Rating: rating, Comment: strings.TrimSpace(comment)}
	if uid, ok := sess.UserIDNumber(); ok {
		in.UserID = uid
	}
	return s.upstream.UpdateReview(withToken(ctx, sess), id, in)
}

func (s *Service) Delete(ctx context.Context, sess *domain.Session, id int) error {
	return s.upstream.DeleteReview(withToken(ctx, sess), id)
}

// HasGeneralOpinion reports whether the user already left any review.
// Lookup errors count as no.
func (s *Service) HasGeneralOpinion(ctx context.Context, sess *domain.Session) bool {
	uid, ok := sess.UserIDNumber()
	if !ok {
		return false
	}
	reviews, err := s.upstream.ListReviews(ctx)
	if err != nil {
		logging.FromContext(ctx).Warn("reviews unavailable", "error", err)
		return false
	}
	for _, r := range reviews {
		if r.UserID == uid {
			return true
		}
	}
	return false
}

func (s *Service) input(sess *domain.Session, productID, rating int, comment string) (upstream.ReviewInput, error) {
	uid, ok := sess.UserIDNumber()
	if !ok {
		return upstream.ReviewInput{}, domain.ErrUnauthenticated
	}
	if rating < 1 || rating > 5 {
		return upstream.ReviewInput{}, fmt.Errorf("%w: rating must be between 1 and 5", domain.ErrValidation)
	}
	if productID <= 0 {
		return upstream.ReviewInput{}, fmt.Errorf("%w: product id required", domain.ErrValidation)
	}
	return upstream.ReviewInput{
		ProductID: productID,
		UserID:    uid,
		Rating:    rating,
		Comment:   strings.TrimSpace(comment),
	}, nil
}

func withToken(ctx context.Context, sess *domain.Session) context.Context {
	if sess.HasUsableToken() {
		return upstream.WithToken(ctx, sess.UpstreamToken)
	}
	return ctx
}
