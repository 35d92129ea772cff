package dto

import (
	"github.com/shopspring/decimal"
)

type CreateAssetRequest struct {
	Owner string `json:"owner" binding:"required"`
	Data  string `json:"data"`
}

type CreateAssetResponse struct {
	AssetID uint64 `json:"asset_id"`
}

type TransferAssetRequest struct {
	Owner  string `json:"owner" binding:"required"`
	Target string `json:"target" binding:"required"`
}

type TransferAssetResponse struct {
	AssetID uint64 `json:"asset_id"`
	Owner   string `json:"owner"`
}

type RemoveAssetResponse struct {
	AssetID uint64 `json:"asset_id"`
	Removed bool   `json:"removed"`
}

type ListOrderRequest struct {
	Seller       string          `json:"seller" binding:"required"`
	AssetID      uint64          `json:"asset_id"`
	FloorPrice   decimal.Decimal `json:"floor_price" binding:"required"`
	CeilingPrice decimal.Decimal `json:"ceiling_price" binding:"required"`
	Duration     int64           `json:"duration" binding:"required"`
}

type ListOrderResponse struct {
	Order Order `json:"order"`
}

type PlaceBidRequest struct {
	Bidder string          `json:"bidder" binding:"required"`
	Price  decimal.Decimal `json:"price" binding:"required"`
}

type PlaceBidResponse struct {
	OrderID uint64       `json:"order_id"`
	Outcome string       `json:"outcome"`
	Report  *YieldReport `json:"yield_report,omitempty"`
}

type PlaceStakeRequest struct {
	Staker string          `json:"staker" binding:"required"`
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

type PlaceStakeResponse struct {
	OrderID   uint64          `json:"order_id"`
	Amount    decimal.Decimal `json:"amount"`
	Remaining int64           `json:"remaining"`
}

type SettleRequest struct {
	Caller string `json:"caller" binding:"required"`
}

type SettleResponse struct {
	OrderID uint64       `json:"order_id"`
	Status  string       `json:"status"`
	Report  *YieldReport `json:"yield_report,omitempty"`
}

type GetOrderResponse struct {
	Order       Order           `json:"order"`
	Bid         *Bid            `json:"bid,omitempty"`
	StakeCount  int             `json:"stake_count"`
	StakedTotal decimal.Decimal `json:"staked_total"`
}

type SnapshotResponse struct {
	Orders  []GetOrderResponse `json:"orders"`
	TakenAt int64              `json:"taken_at"`
}

type Order struct {
	ID           uint64          `json:"id"`
	AssetID      uint64          `json:"asset_id"`
	Seller       string          `json:"seller"`
	FloorPrice   decimal.Decimal `json:"floor_price"`
	CeilingPrice decimal.Decimal `json:"ceiling_price"`
	CreatedAt    int64           `json:"created_at"`
	Duration     int64           `json:"duration"`
}

type Bid struct {
	OrderID uint64          `json:"order_id"`
	Price   decimal.Decimal `json:"price"`
	Bidder  string          `json:"bidder"`
}

type YieldEntry struct {
	Staker        string          `json:"staker"`
	Amount        decimal.Decimal `json:"amount"`
	StakeDays     decimal.Decimal `json:"stake_days"`
	ExchangeRate  decimal.Decimal `json:"exchange_rate"`
	AnnualRate    decimal.Decimal `json:"annual_rate"`
	Credit        decimal.Decimal `json:"credit"`
	RunningCredit decimal.Decimal `json:"running_credit"`
}

type YieldReport struct {
	ID            string          `json:"id"`
	OrderID       uint64          `json:"order_id"`
	ClearingPrice decimal.Decimal `json:"clearing_price"`
	RewardPool    decimal.Decimal `json:"reward_pool"`
	AuctionDays   decimal.Decimal `json:"auction_days"`
	Entries       []YieldEntry    `json:"entries"`
}
