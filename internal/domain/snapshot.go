package domain

import (
	"github.com/shopspring/decimal"
)

// OrderView is one open order as exposed to readers: the order itself, its
// live bid if any, and the total principal currently staked on it.
type OrderView struct {
	Order       Order           `json:"order"`
	Bid         *Bid            `json:"bid,omitempty"`
	StakeCount  int             `json:"stake_count"`
	StakedTotal decimal.Decimal `json:"staked_total"`
}

// MarketSnapshot is a read-only copy of every open order, refreshed into the
// cache after each successful mutation.
type MarketSnapshot struct {
	Orders  []OrderView `json:"orders"`
	TakenAt int64       `json:"taken_at"`
}
