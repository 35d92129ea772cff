package in_memory

import (
	"context"
	"sort"
	"sync"

	"github.com/nftmarket/auction-engine/internal/domain"
	"github.com/nftmarket/auction-engine/internal/port"
)

var _ port.Repository = (*MemoryRepo)(nil)

// MemoryRepo keeps the write-through records in maps. It backs tests and
// standalone runs where PostgreSQL is not wired.
type MemoryRepo struct {
	mu      sync.Mutex
	orders  map[domain.OrderID]*domain.Order
	bids    map[domain.OrderID]*domain.Bid
	stakes  map[domain.OrderID][]domain.Stake
	reports map[string]*domain.YieldReport
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		orders:  make(map[domain.OrderID]*domain.Order),
		bids:    make(map[domain.OrderID]*domain.Bid),
		stakes:  make(map[domain.OrderID][]domain.Stake),
		reports: make(map[string]*domain.YieldReport),
	}
}

func (r *MemoryRepo) SaveOrder(ctx context.Context, o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *o
	r.orders[o.ID] = &cp
	return nil
}

func (r *MemoryRepo) DeleteOrder(ctx context.Context, id domain.OrderID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.orders, id)
	return nil
}

func (r *MemoryRepo) SaveBid(ctx context.Context, b *domain.Bid) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *b
	r.bids[b.OrderID] = &cp
	return nil
}

func (r *MemoryRepo) DeleteBid(ctx context.Context, orderID domain.OrderID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.bids, orderID)
	return nil
}

func (r *MemoryRepo) SaveStake(ctx context.Context, index int, s *domain.Stake) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.stakes[s.OrderID]
	if index == len(list) {
		list = append(list, *s)
	} else if index < len(list) {
		list[index] = *s
	} else {
		grown := make([]domain.Stake, index+1)
		copy(grown, list)
		grown[index] = *s
		list = grown
	}
	r.stakes[s.OrderID] = list
	return nil
}

func (r *MemoryRepo) DeleteStakes(ctx context.Context, orderID domain.OrderID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.stakes, orderID)
	return nil
}

func (r *MemoryRepo) SaveYieldReport(ctx context.Context, report *domain.YieldReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *report
	r.reports[report.ID] = &cp
	return nil
}

func (r *MemoryRepo) LoadOpenOrders(ctx context.Context) ([]*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := make([]*domain.Order, 0, len(r.orders))
	for _, o := range r.orders {
		cp := *o
		res = append(res, &cp)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func (r *MemoryRepo) LoadBid(ctx context.Context, orderID domain.OrderID) (*domain.Bid, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bids[orderID]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (r *MemoryRepo) LoadStakes(ctx context.Context, orderID domain.OrderID) ([]domain.Stake, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Stake(nil), r.stakes[orderID]...), nil
}

// YieldReports returns the persisted reports. Test helper.
func (r *MemoryRepo) YieldReports() []*domain.YieldReport {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := make([]*domain.YieldReport, 0, len(r.reports))
	for _, rep := range r.reports {
		cp := *rep
		res = append(res, &cp)
	}
	return res
}
