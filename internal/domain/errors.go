package domain

import "errors"

// Every rejected operation maps to exactly one of these. They are detected
// before any mutation, so a failed call leaves all state untouched.
var (
	ErrAssetNotFound       = errors.New("asset not found")
	ErrOrderNotFound       = errors.New("order not found")
	ErrNotOwner            = errors.New("caller does not own the asset")
	ErrAlreadyListed       = errors.New("asset already has a live order")
	ErrInvalidPriceRange   = errors.New("floor price exceeds ceiling price")
	ErrPriceBelowFloor     = errors.New("price below floor")
	ErrPriceNotIncreasing  = errors.New("bid does not exceed the current bid")
	ErrDurationOutOfBounds = errors.New("duration out of bounds")
	ErrStakeTooLow         = errors.New("stake amount below minimum")
	ErrTooEarly            = errors.New("order has not expired yet")
	ErrTooLate             = errors.New("order already expired")
	ErrCounterOverflow     = errors.New("id counter overflow")
	ErrArithmeticOverflow  = errors.New("arithmetic overflow")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrInvalidStakeWeight  = errors.New("stake weight is not positive")
)
