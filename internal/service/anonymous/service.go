package anonymous

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidVisitor = errors.New("invalid visitor id")

const DefaultTTL = 30 * 24 * time.Hour

// Service issues visitor ids for anonymous carts. Ids live in memory and
// expire after a period without use.
type Service struct {
	mu       sync.RWMutex
	visitors map[string]time.Time
	ttl      time.Duration
	now      func() time.Time
}

func New(ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		visitors: make(map[string]time.Time),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Issue creates a new visitor id.
func (s *Service) Issue() string {
	id := uuid.NewString()
	s.mu.Lock()
	s.visitors[id] = s.now().Add(s.ttl)
	s.mu.Unlock()
	return id
}

// Resolve validates a visitor id and extends its lifetime. Well-formed ids
// unknown to this process, for example after a restart, are adopted since
// their cart may still be stored.
func (s *Service) Resolve(id string) (string, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", ErrInvalidVisitor
	}
	id = parsed.String()

	s.mu.Lock()
	defer s.mu.Unlock()
	if exp, ok := s.visitors[id]; ok && s.now().After(exp) {
		delete(s.visitors, id)
		return "", ErrInvalidVisitor
	}
	s.visitors[id] = s.now().Add(s.ttl)
	return id, nil
}

// Forget drops a visitor id, used once its cart was merged into a user's.
func (s *Service) Forget(id string) {
	s.mu.Lock()
	delete(s.visitors, id)
	s.mu.Unlock()
}

// PurgeExpired drops ids past their expiry and reports how many went.
func (s *Service) PurgeExpired() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, exp := range s.visitors {
		if now.After(exp) {
			delete(s.visitors, id)
			n++
		}
	}
	return n
}

// Len reports the number of tracked visitor ids.
func (s *Service) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.visitors)
}
