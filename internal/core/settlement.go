package core

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/nftmarket/auction-engine/internal/domain"
	"github.com/nftmarket/auction-engine/internal/port"
)

// Settlement executes the terminal transition of an order: money movement,
// yield computation, stake refunds and ownership transfer. The market calls it
// while holding its lock and purges its own records only after a successful
// return, so a failed settlement leaves the order fully intact.
type Settlement struct {
	ledger    port.Ledger
	registry  port.AssetRegistry
	repo      port.Repository
	sink      port.EventSink
	allocator *Allocator
	log       logrus.FieldLogger
}

func NewSettlement(cfg Config, ledger port.Ledger, registry port.AssetRegistry,
	repo port.Repository, sink port.EventSink, log logrus.FieldLogger) *Settlement {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Settlement{
		ledger:    ledger,
		registry:  registry,
		repo:      repo,
		sink:      sink,
		allocator: NewAllocator(cfg, log),
		log:       log,
	}
}

// Complete settles the order in the winner's favour at clearingPrice.
// reserved is the winning bid when its funds are currently locked (the settle
// path); it is nil on an instant buy, where the winner pays directly. A failed
// payment restores the reservation and aborts the whole settlement.
func (s *Settlement) Complete(ctx context.Context, order *domain.Order, stakes []domain.Stake,
	winner domain.Account, clearingPrice decimal.Decimal, reserved *domain.Bid,
	caller domain.Account) (*domain.YieldReport, error) {

	// The report is pure computation; producing it first means nothing has
	// moved yet if the stake list violates its invariants.
	report, err := s.allocator.Allocate(order, clearingPrice, stakes)
	if err != nil {
		return nil, err
	}

	if reserved != nil {
		_ = s.ledger.Unreserve(ctx, winner, reserved.Price)
	}
	if err := s.ledger.Transfer(ctx, winner, order.Seller, clearingPrice, true); err != nil {
		if reserved != nil {
			_ = s.ledger.Reserve(ctx, winner, reserved.Price)
		}
		return nil, err
	}

	if s.repo != nil {
		_ = s.repo.DeleteOrder(ctx, order.ID)
		_ = s.repo.DeleteBid(ctx, order.ID)
	}

	s.refundStakes(ctx, order.ID, stakes)

	_ = s.registry.SetOwner(ctx, order.AssetID, winner)

	if s.repo != nil {
		_ = s.repo.SaveYieldReport(ctx, report)
	}
	s.emit(ctx, domain.OrderCompleted{Winner: winner, OrderID: order.ID, Price: clearingPrice})
	s.emit(ctx, domain.YieldComputed{Report: *report})

	s.log.WithFields(logrus.Fields{
		"order":  order.ID,
		"winner": winner,
		"price":  clearingPrice,
		"caller": caller,
		"stakes": len(stakes),
	}).Info("order completed")
	return report, nil
}

// Cancel terminates an expired order that drew no bid. Stake principal goes
// back to the stakers; the seller keeps the asset.
func (s *Settlement) Cancel(ctx context.Context, order *domain.Order, stakes []domain.Stake) {
	if s.repo != nil {
		_ = s.repo.DeleteOrder(ctx, order.ID)
	}
	s.refundStakes(ctx, order.ID, stakes)
	s.emit(ctx, domain.OrderCancelled{Seller: order.Seller, OrderID: order.ID})

	s.log.WithFields(logrus.Fields{
		"order":  order.ID,
		"seller": order.Seller,
		"stakes": len(stakes),
	}).Info("order cancelled")
}

// refundStakes releases every stake's exact principal. The refund is
// unconditional and independent of the yield report.
func (s *Settlement) refundStakes(ctx context.Context, orderID domain.OrderID, stakes []domain.Stake) {
	for _, stake := range stakes {
		_ = s.ledger.Unreserve(ctx, stake.Staker, stake.Amount)
	}
	if s.repo != nil {
		_ = s.repo.DeleteStakes(ctx, orderID)
	}
}

func (s *Settlement) emit(ctx context.Context, e domain.Event) {
	if s.sink != nil {
		s.sink.Emit(ctx, e)
	}
}
