package port

import (
	"context"

	"github.com/nftmarket/auction-engine/internal/domain"
)

// Repository persists market records. The in-memory state is authoritative;
// writes here are best-effort write-through and loads only happen on startup.
type Repository interface {
	SaveOrder(ctx context.Context, o *domain.Order) error
	DeleteOrder(ctx context.Context, id domain.OrderID) error
	SaveBid(ctx context.Context, b *domain.Bid) error
	DeleteBid(ctx context.Context, orderID domain.OrderID) error
	SaveStake(ctx context.Context, index int, s *domain.Stake) error
	DeleteStakes(ctx context.Context, orderID domain.OrderID) error
	SaveYieldReport(ctx context.Context, r *domain.YieldReport) error

	LoadOpenOrders(ctx context.Context) ([]*domain.Order, error)
	LoadBid(ctx context.Context, orderID domain.OrderID) (*domain.Bid, error)
	LoadStakes(ctx context.Context, orderID domain.OrderID) ([]domain.Stake, error)
}
