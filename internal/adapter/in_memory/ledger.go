package in_memory

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/nftmarket/auction-engine/internal/domain"
	"github.com/nftmarket/auction-engine/internal/port"
)

var _ port.Ledger = (*Ledger)(nil)

type balance struct {
	free     decimal.Decimal
	reserved decimal.Decimal
}

// Ledger is a map-backed implementation of the ledger capability. Accounts
// hold a free and a reserved balance; reserving moves funds between the two.
type Ledger struct {
	mu       sync.Mutex
	accounts map[domain.Account]*balance
}

func NewLedger() *Ledger {
	return &Ledger{accounts: make(map[domain.Account]*balance)}
}

// Deposit credits an account's free balance. Test and bootstrap helper.
func (l *Ledger) Deposit(account domain.Account, amount decimal.Decimal) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.account(account).free = l.account(account).free.Add(amount)
}

func (l *Ledger) Reserve(ctx context.Context, account domain.Account, amount decimal.Decimal) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	b := l.account(account)
	if b.free.LessThan(amount) {
		return domain.ErrInsufficientFunds
	}
	b.free = b.free.Sub(amount)
	b.reserved = b.reserved.Add(amount)
	return nil
}

func (l *Ledger) Unreserve(ctx context.Context, account domain.Account, amount decimal.Decimal) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	b := l.account(account)
	if b.reserved.LessThan(amount) {
		return domain.ErrInsufficientFunds
	}
	b.reserved = b.reserved.Sub(amount)
	b.free = b.free.Add(amount)
	return nil
}

func (l *Ledger) Transfer(ctx context.Context, from, to domain.Account, amount decimal.Decimal, keepAlive bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	src := l.account(from)
	if src.free.LessThan(amount) {
		return domain.ErrInsufficientFunds
	}
	// keepAlive refuses to drain the account to nothing.
	if keepAlive && amount.IsPositive() && src.free.Sub(amount).IsZero() && src.reserved.IsZero() {
		return domain.ErrInsufficientFunds
	}
	src.free = src.free.Sub(amount)
	dst := l.account(to)
	dst.free = dst.free.Add(amount)
	return nil
}

// FreeOf returns the free balance. Test helper.
func (l *Ledger) FreeOf(account domain.Account) decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.account(account).free
}

// ReservedOf returns the reserved balance. Test helper.
func (l *Ledger) ReservedOf(account domain.Account) decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.account(account).reserved
}

func (l *Ledger) account(account domain.Account) *balance {
	b, ok := l.accounts[account]
	if !ok {
		b = &balance{free: decimal.Zero, reserved: decimal.Zero}
		l.accounts[account] = b
	}
	return b
}
