package domain

import (
	"github.com/shopspring/decimal"
)

// YieldEntry records what one stake earned in a settlement, in the order the
// stakes were placed. Credit is the allocated share of the reward pool;
// RunningCredit is the cumulative total up to and including this entry.
type YieldEntry struct {
	Staker        Account         `json:"staker"`
	Amount        decimal.Decimal `json:"amount"`
	StakeDays     decimal.Decimal `json:"stake_days"`
	ExchangeRate  decimal.Decimal `json:"exchange_rate"`
	AnnualRate    decimal.Decimal `json:"annual_rate"`
	Credit        decimal.Decimal `json:"credit"`
	RunningCredit decimal.Decimal `json:"running_credit"`
}

// YieldReport is the profit-sharing breakdown computed once per completed
// order. It is informational output: stakers receive back exactly their
// principal, and no ledger movement derives from the report.
type YieldReport struct {
	ID            string          `json:"id"`
	OrderID       OrderID         `json:"order_id"`
	ClearingPrice decimal.Decimal `json:"clearing_price"`
	RewardPool    decimal.Decimal `json:"reward_pool"`
	AuctionDays   decimal.Decimal `json:"auction_days"`
	Entries       []YieldEntry    `json:"entries"`
}
