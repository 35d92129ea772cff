package in_memory

import (
	"context"
	"sync"

	"github.com/nftmarket/auction-engine/internal/domain"
	"github.com/nftmarket/auction-engine/internal/port"
)

var _ port.Cache = (*Cache)(nil)

type Cache struct {
	mu   sync.Mutex
	snap *domain.MarketSnapshot
}

func NewCache() *Cache {
	return &Cache{}
}

func (c *Cache) SetSnapshot(ctx context.Context, snap *domain.MarketSnapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := *snap
	c.snap = &cp
	return nil
}

func (c *Cache) GetSnapshot(ctx context.Context) (*domain.MarketSnapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snap == nil {
		return nil, nil
	}
	cp := *c.snap
	return &cp, nil
}

func (c *Cache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap = nil
	return nil
}
