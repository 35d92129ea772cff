package domain

import (
	"github.com/shopspring/decimal"
)

type EventType string

const (
	EventAssetCreated     EventType = "asset.created"
	EventAssetRemoved     EventType = "asset.removed"
	EventAssetTransferred EventType = "asset.transferred"
	EventOrderOpened      EventType = "order.opened"
	EventBidPlaced        EventType = "bid.placed"
	EventStakePlaced      EventType = "stake.placed"
	EventOrderCompleted   EventType = "order.completed"
	EventOrderCancelled   EventType = "order.cancelled"
	EventYieldComputed    EventType = "yield.computed"
)

// Event is a notification the engine emits after a successful state change.
type Event interface {
	Type() EventType
}

type AssetCreated struct {
	Owner   Account `json:"owner"`
	AssetID AssetID `json:"asset_id"`
}

type AssetRemoved struct {
	Owner   Account `json:"owner"`
	AssetID AssetID `json:"asset_id"`
}

type AssetTransferred struct {
	From    Account `json:"from"`
	To      Account `json:"to"`
	AssetID AssetID `json:"asset_id"`
}

type OrderOpened struct {
	Seller Account `json:"seller"`
	Order  Order   `json:"order"`
}

type BidPlaced struct {
	Bidder Account `json:"bidder"`
	Bid    Bid     `json:"bid"`
}

type StakePlaced struct {
	Staker Account `json:"staker"`
	Stake  Stake   `json:"stake"`
}

type OrderCompleted struct {
	Winner  Account         `json:"winner"`
	OrderID OrderID         `json:"order_id"`
	Price   decimal.Decimal `json:"price"`
}

type OrderCancelled struct {
	Seller  Account `json:"seller"`
	OrderID OrderID `json:"order_id"`
}

type YieldComputed struct {
	Report YieldReport `json:"report"`
}

func (AssetCreated) Type() EventType     { return EventAssetCreated }
func (AssetRemoved) Type() EventType     { return EventAssetRemoved }
func (AssetTransferred) Type() EventType { return EventAssetTransferred }
func (OrderOpened) Type() EventType      { return EventOrderOpened }
func (BidPlaced) Type() EventType        { return EventBidPlaced }
func (StakePlaced) Type() EventType      { return EventStakePlaced }
func (OrderCompleted) Type() EventType   { return EventOrderCompleted }
func (OrderCancelled) Type() EventType   { return EventOrderCancelled }
func (YieldComputed) Type() EventType    { return EventYieldComputed }
