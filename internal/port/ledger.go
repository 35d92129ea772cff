package port

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/nftmarket/auction-engine/internal/domain"
)

// Ledger moves and locks funds. The engine only ever calls these three
// primitives; balance invariants live behind the implementation.
type Ledger interface {
	// Reserve locks amount on the account. Fails with
	// domain.ErrInsufficientFunds when the free balance is too small.
	Reserve(ctx context.Context, account domain.Account, amount decimal.Decimal) error
	// Unreserve releases previously reserved funds back to the free balance.
	Unreserve(ctx context.Context, account domain.Account, amount decimal.Decimal) error
	// Transfer moves amount between free balances. With keepAlive the
	// sender's balance may not be drained to zero.
	Transfer(ctx context.Context, from, to domain.Account, amount decimal.Decimal, keepAlive bool) error
}
