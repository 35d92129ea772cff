package domain

import (
	"github.com/shopspring/decimal"
)

type OrderID uint64
type Account string

type OrderStatus string

const (
	Open      OrderStatus = "OPEN"
	Completed OrderStatus = "COMPLETED"
	Cancelled OrderStatus = "CANCELLED"
)

// Order is a single-asset auction listing. It exists only while open;
// completion and cancellation remove it.
type Order struct {
	ID           OrderID
	AssetID      AssetID
	Seller       Account
	FloorPrice   decimal.Decimal
	CeilingPrice decimal.Decimal
	CreatedAt    int64
	Duration     int64
}

// Expired reports whether the bidding window has elapsed at the given tick.
// The boundary tick itself still accepts bids and stakes.
func (o *Order) Expired(now int64) bool {
	return now-o.CreatedAt > o.Duration
}

// Bid is the single currently-winning offer on an open order. The bidder's
// funds stay reserved for exactly as long as the bid is live.
type Bid struct {
	OrderID OrderID
	Price   decimal.Decimal
	Bidder  Account
}

// Stake is third-party capital locked against an open order. Remaining is the
// tick count left until the order's original expiry at the moment the stake
// was placed; it drives the yield weighting.
type Stake struct {
	OrderID   OrderID
	Amount    decimal.Decimal
	Remaining int64
	Staker    Account
}
