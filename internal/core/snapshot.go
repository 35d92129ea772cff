package core

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/nftmarket/auction-engine/internal/domain"
)

// Snapshot returns a copy of every open order, sorted by order id. Readers
// should prefer the cache; this is the authoritative fallback.
func (m *Market) Snapshot(ctx context.Context) *domain.MarketSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// CachedSnapshot serves the snapshot from the cache when possible, falling
// back to the in-memory state and repopulating the cache on a miss.
func (m *Market) CachedSnapshot(ctx context.Context) *domain.MarketSnapshot {
	if m.cache != nil {
		if snap, err := m.cache.GetSnapshot(ctx); err == nil && snap != nil {
			return snap
		}
	}
	m.mu.Lock()
	snap := m.snapshotLocked()
	m.mu.Unlock()
	if m.cache != nil {
		_ = m.cache.SetSnapshot(ctx, snap)
	}
	return snap
}

func (m *Market) snapshotLocked() *domain.MarketSnapshot {
	snap := &domain.MarketSnapshot{
		Orders:  make([]domain.OrderView, 0, len(m.orders)),
		TakenAt: m.clock.Now(),
	}
	for _, order := range m.orders {
		snap.Orders = append(snap.Orders, m.orderView(order))
	}
	sort.Slice(snap.Orders, func(i, j int) bool {
		return snap.Orders[i].Order.ID < snap.Orders[j].Order.ID
	})
	return snap
}

func (m *Market) orderView(order *domain.Order) domain.OrderView {
	view := domain.OrderView{Order: *order}
	if bid, ok := m.bids[order.ID]; ok {
		b := *bid
		view.Bid = &b
	}
	total := decimal.Zero
	for _, stake := range m.stakes[order.ID] {
		total = total.Add(stake.Amount)
	}
	view.StakeCount = len(m.stakes[order.ID])
	view.StakedTotal = total
	return view
}

// refreshSnapshot pushes the current snapshot into the cache after a
// mutation. Failures invalidate instead, so readers never see a stale book.
// Callers hold the mutex.
func (m *Market) refreshSnapshot(ctx context.Context) {
	if m.cache == nil {
		return
	}
	if err := m.cache.SetSnapshot(ctx, m.snapshotLocked()); err != nil {
		_ = m.cache.Invalidate(ctx)
	}
}
