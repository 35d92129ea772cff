package core

import (
	"context"
	"math"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/nftmarket/auction-engine/internal/domain"
	"github.com/nftmarket/auction-engine/internal/port"
)

// BidOutcome tells the caller how an accepted bid was applied.
type BidOutcome string

const (
	// BidAccepted means the bid is now the live bid on an open order.
	BidAccepted BidOutcome = "ACCEPTED"
	// BidInstantBuy means the bid met the ceiling and completed the order.
	BidInstantBuy BidOutcome = "INSTANT_BUY"
)

// Market owns the order, bid and stake records and drives every order through
// Open -> Completed | Cancelled. All public operations run to completion under
// one mutex: no caller ever observes a partially applied operation, and every
// rejection happens before any mutation.
type Market struct {
	cfg      Config
	ledger   port.Ledger
	registry port.AssetRegistry
	clock    port.Clock
	repo     port.Repository
	cache    port.Cache
	sink     port.EventSink
	log      logrus.FieldLogger

	settlement *Settlement

	mu          sync.Mutex
	orders      map[domain.OrderID]*domain.Order
	bids        map[domain.OrderID]*domain.Bid
	stakes      map[domain.OrderID][]domain.Stake
	assetOrder  map[domain.AssetID]domain.OrderID
	nextOrderID domain.OrderID
}

// NewMarket wires the market with its collaborators. repo, cache and sink may
// be nil; persistence, caching and notifications are then skipped.
func NewMarket(cfg Config, ledger port.Ledger, registry port.AssetRegistry, clock port.Clock,
	repo port.Repository, cache port.Cache, sink port.EventSink, log logrus.FieldLogger) *Market {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Market{
		cfg:        cfg,
		ledger:     ledger,
		registry:   registry,
		clock:      clock,
		repo:       repo,
		cache:      cache,
		sink:       sink,
		log:        log,
		settlement: NewSettlement(cfg, ledger, registry, repo, sink, log),
		orders:     make(map[domain.OrderID]*domain.Order),
		bids:       make(map[domain.OrderID]*domain.Bid),
		stakes:     make(map[domain.OrderID][]domain.Stake),
		assetOrder: make(map[domain.AssetID]domain.OrderID),
	}
}

// LoadFromRepository restores open orders, bids and stakes on startup.
func (m *Market) LoadFromRepository(ctx context.Context) error {
	if m.repo == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	orders, err := m.repo.LoadOpenOrders(ctx)
	if err != nil {
		return err
	}
	for _, o := range orders {
		m.orders[o.ID] = o
		m.assetOrder[o.AssetID] = o.ID
		if o.ID >= m.nextOrderID {
			m.nextOrderID = o.ID + 1
		}
		bid, err := m.repo.LoadBid(ctx, o.ID)
		if err != nil {
			return err
		}
		if bid != nil {
			m.bids[o.ID] = bid
		}
		stakes, err := m.repo.LoadStakes(ctx, o.ID)
		if err != nil {
			return err
		}
		m.stakes[o.ID] = stakes
	}
	m.log.WithField("orders", len(orders)).Info("market state restored")
	return nil
}

// CreateAsset registers a new asset owned by owner.
func (m *Market) CreateAsset(ctx context.Context, owner domain.Account, data []byte) (domain.AssetID, error) {
	id, err := m.registry.Create(ctx, owner, data)
	if err != nil {
		return 0, err
	}
	m.emit(ctx, domain.AssetCreated{Owner: owner, AssetID: id})
	return id, nil
}

// RemoveAsset deletes an asset. An asset locked by a live order cannot be
// removed.
func (m *Market) RemoveAsset(ctx context.Context, owner domain.Account, id domain.AssetID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.assetFree(ctx, owner, id); err != nil {
		return err
	}
	if err := m.registry.Remove(ctx, id); err != nil {
		return err
	}
	m.emit(ctx, domain.AssetRemoved{Owner: owner, AssetID: id})
	return nil
}

// TransferAsset moves ownership to target. An asset locked by a live order
// cannot be transferred.
func (m *Market) TransferAsset(ctx context.Context, owner, target domain.Account, id domain.AssetID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.assetFree(ctx, owner, id); err != nil {
		return err
	}
	if err := m.registry.SetOwner(ctx, id, target); err != nil {
		return err
	}
	m.emit(ctx, domain.AssetTransferred{From: owner, To: target, AssetID: id})
	return nil
}

// assetFree checks existence, ownership, and that no live order locks the
// asset. Callers hold the mutex.
func (m *Market) assetFree(ctx context.Context, owner domain.Account, id domain.AssetID) error {
	if !m.registry.Exists(ctx, id) {
		return domain.ErrAssetNotFound
	}
	actual, err := m.registry.OwnerOf(ctx, id)
	if err != nil {
		return err
	}
	if actual != owner {
		return domain.ErrNotOwner
	}
	if _, listed := m.assetOrder[id]; listed {
		return domain.ErrAlreadyListed
	}
	return nil
}

// ListOrder opens an auction for the seller's asset.
func (m *Market) ListOrder(ctx context.Context, seller domain.Account, assetID domain.AssetID,
	floor, ceiling decimal.Decimal, duration int64) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if duration < m.cfg.MinDuration || duration > m.cfg.MaxDuration {
		return nil, domain.ErrDurationOutOfBounds
	}
	if err := m.assetFree(ctx, seller, assetID); err != nil {
		return nil, err
	}
	if floor.LessThan(m.cfg.MinPrice) {
		return nil, domain.ErrPriceBelowFloor
	}
	if floor.GreaterThan(ceiling) {
		return nil, domain.ErrInvalidPriceRange
	}
	if m.nextOrderID == math.MaxUint64 {
		return nil, domain.ErrCounterOverflow
	}

	order := &domain.Order{
		ID:           m.nextOrderID,
		AssetID:      assetID,
		Seller:       seller,
		FloorPrice:   floor,
		CeilingPrice: ceiling,
		CreatedAt:    m.clock.Now(),
		Duration:     duration,
	}
	m.nextOrderID++
	m.orders[order.ID] = order
	m.assetOrder[assetID] = order.ID
	m.stakes[order.ID] = []domain.Stake{}

	if m.repo != nil {
		_ = m.repo.SaveOrder(ctx, order)
	}
	m.emit(ctx, domain.OrderOpened{Seller: seller, Order: *order})
	m.refreshSnapshot(ctx)
	return order, nil
}

// PlaceBid offers price on an open order. A bid at or above the ceiling
// completes the order immediately at the ceiling price; otherwise the bid
// replaces the previous one, releasing the outbid funds and locking the new
// bidder's in one atomic step.
func (m *Market) PlaceBid(ctx context.Context, bidder domain.Account, orderID domain.OrderID,
	price decimal.Decimal) (BidOutcome, *domain.YieldReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	order, ok := m.orders[orderID]
	if !ok {
		return "", nil, domain.ErrOrderNotFound
	}
	if order.Expired(m.clock.Now()) {
		return "", nil, domain.ErrTooLate
	}
	if price.LessThan(order.FloorPrice) {
		return "", nil, domain.ErrPriceBelowFloor
	}
	prev := m.bids[orderID]
	if prev != nil && price.LessThanOrEqual(prev.Price) {
		return "", nil, domain.ErrPriceNotIncreasing
	}

	if price.GreaterThanOrEqual(order.CeilingPrice) {
		// Instant buy: the ceiling clears the order right now. The
		// bidder pays the ceiling price directly, never through a
		// reservation.
		report, err := m.settlement.Complete(ctx, order, m.stakes[orderID], bidder, order.CeilingPrice, nil, bidder)
		if err != nil {
			return "", nil, err
		}
		m.purgeOrder(order)
		if prev != nil {
			_ = m.ledger.Unreserve(ctx, prev.Bidder, prev.Price)
		}
		m.refreshSnapshot(ctx)
		return BidInstantBuy, report, nil
	}

	if err := m.ledger.Reserve(ctx, bidder, price); err != nil {
		return "", nil, err
	}
	if prev != nil {
		_ = m.ledger.Unreserve(ctx, prev.Bidder, prev.Price)
	}
	bid := &domain.Bid{OrderID: orderID, Price: price, Bidder: bidder}
	m.bids[orderID] = bid
	if m.repo != nil {
		_ = m.repo.SaveBid(ctx, bid)
	}
	m.emit(ctx, domain.BidPlaced{Bidder: bidder, Bid: *bid})
	m.refreshSnapshot(ctx)
	return BidAccepted, nil, nil
}

// PlaceStake locks amount against an open order. Stakes accumulate in
// submission order; that order is what the yield curve walks at settlement.
func (m *Market) PlaceStake(ctx context.Context, staker domain.Account, orderID domain.OrderID,
	amount decimal.Decimal) (*domain.Stake, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	order, ok := m.orders[orderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	now := m.clock.Now()
	if order.Expired(now) {
		return nil, domain.ErrTooLate
	}
	if amount.LessThan(m.cfg.MinStake) {
		return nil, domain.ErrStakeTooLow
	}
	if order.CreatedAt > math.MaxInt64-order.Duration {
		return nil, domain.ErrArithmeticOverflow
	}
	// A stake committed on the boundary tick would have zero remaining time
	// and could never be weighted at settlement, so staking closes one tick
	// before bidding does.
	remaining := order.CreatedAt + order.Duration - now
	if remaining <= 0 {
		return nil, domain.ErrTooLate
	}

	if err := m.ledger.Reserve(ctx, staker, amount); err != nil {
		return nil, err
	}
	stake := domain.Stake{OrderID: orderID, Amount: amount, Remaining: remaining, Staker: staker}
	m.stakes[orderID] = append(m.stakes[orderID], stake)
	if m.repo != nil {
		_ = m.repo.SaveStake(ctx, len(m.stakes[orderID])-1, &stake)
	}
	m.emit(ctx, domain.StakePlaced{Staker: staker, Stake: stake})
	m.refreshSnapshot(ctx)
	return &stake, nil
}

// Settle drives an expired order to its terminal state. Anyone may call it;
// the caller's identity is only recorded in the log. With a live bid the order
// completes at the bid price, otherwise it cancels and the seller keeps the
// asset.
func (m *Market) Settle(ctx context.Context, caller domain.Account, orderID domain.OrderID) (domain.OrderStatus, *domain.YieldReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	order, ok := m.orders[orderID]
	if !ok {
		return "", nil, domain.ErrOrderNotFound
	}
	if !order.Expired(m.clock.Now()) {
		return "", nil, domain.ErrTooEarly
	}

	if bid := m.bids[orderID]; bid != nil {
		report, err := m.settlement.Complete(ctx, order, m.stakes[orderID], bid.Bidder, bid.Price, bid, caller)
		if err != nil {
			return "", nil, err
		}
		m.purgeOrder(order)
		m.refreshSnapshot(ctx)
		return domain.Completed, report, nil
	}

	m.settlement.Cancel(ctx, order, m.stakes[orderID])
	m.purgeOrder(order)
	m.refreshSnapshot(ctx)
	return domain.Cancelled, nil, nil
}

// purgeOrder drops every in-memory record of a terminated order; the
// settlement engine owns the matching repository deletes. Callers hold the
// mutex.
func (m *Market) purgeOrder(order *domain.Order) {
	delete(m.orders, order.ID)
	delete(m.bids, order.ID)
	delete(m.stakes, order.ID)
	delete(m.assetOrder, order.AssetID)
}

// GetOrder returns a read-only view of one open order.
func (m *Market) GetOrder(ctx context.Context, orderID domain.OrderID) (*domain.OrderView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[orderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	view := m.orderView(order)
	return &view, nil
}

func (m *Market) emit(ctx context.Context, e domain.Event) {
	if m.sink != nil {
		m.sink.Emit(ctx, e)
	}
}
