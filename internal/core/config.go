package core

import (
	"github.com/shopspring/decimal"
)

// Config holds the market constants. They are fixed at construction and never
// change at runtime.
type Config struct {
	// MinPrice is the lowest allowed floor price for a listing.
	MinPrice decimal.Decimal
	// MinDuration and MaxDuration bound the listing window, in ticks.
	MinDuration int64
	MaxDuration int64
	// MinStake is the lowest accepted stake amount (inclusive).
	MinStake decimal.Decimal
	// DayLength is the number of ticks in one day; it converts durations
	// into days for the yield curve.
	DayLength int64
	// ProfitRate is the annual profit-rate fraction shared with stakers.
	ProfitRate decimal.Decimal
	// FixedRate is the floor annual rate; once a stake's implied annual
	// rate drops below it, the exchange rate freezes for the rest of the
	// settlement.
	FixedRate decimal.Decimal
}

func DefaultConfig() Config {
	return Config{
		MinPrice:    decimal.NewFromInt(10),
		MinDuration: 100,
		MaxDuration: 1_000_000,
		MinStake:    decimal.NewFromInt(50),
		DayLength:   14_400,
		ProfitRate:  decimal.NewFromFloat(0.2),
		FixedRate:   decimal.NewFromFloat(0.1),
	}
}
