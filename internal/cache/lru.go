package cache

import (
	"context"
	"time"

	"camisfut-storefront/internal/domain"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	DefaultSize = 512
	DefaultTTL  = 10 * time.Minute
)

// LRU is an in-process cache with a size cap and per-entry TTL.
type LRU struct {
	lru *expirable.LRU[int, domain.Product]
}

func NewLRU(size int, ttl time.Duration) *LRU {
	if size <= 0 {
		size = DefaultSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &LRU{lru: expirable.NewLRU[int, domain.Product](size, nil, ttl)}
}

func (c *LRU) Get(_ context.Context, id int) (domain.Product, bool, error) {
	p, ok := c.lru.Get(id)
	if !ok {
		return domain.Product{}, false, nil
	}
	return p.Clone(), true, nil
}

func (c *LRU) Set(_ context.Context, p domain.Product) error {
	c.lru.Add(p.ID, p.Clone())
	return nil
}

func (c *LRU) Purge(context.Context) error {
	c.lru.Purge()
	return nil
}

func (c *LRU) Len() int {
	return c.lru.Len()
}
