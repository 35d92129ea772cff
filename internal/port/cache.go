package port

import (
	"context"

	"github.com/nftmarket/auction-engine/internal/domain"
)

type Cache interface {
	SetSnapshot(ctx context.Context, snap *domain.MarketSnapshot) error
	GetSnapshot(ctx context.Context) (*domain.MarketSnapshot, error)
	Invalidate(ctx context.Context) error
}
