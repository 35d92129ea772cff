package pg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/nftmarket/auction-engine/internal/domain"
	"github.com/nftmarket/auction-engine/internal/port"
)

var _ port.Repository = (*PgRepo)(nil)

// PgRepo is the PostgreSQL write-through repository. The in-memory market is
// authoritative; these tables exist so open state survives a restart and so
// yield reports are queryable after the fact.
type PgRepo struct {
	pool *pgxpool.Pool
}

// call Close when finished working with the database.
func NewPgRepo(ctx context.Context, dsn string) (*PgRepo, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pg: create pool: %w", err)
	}
	return &PgRepo{pool: pool}, nil
}

func (p *PgRepo) Close(ctx context.Context) {
	if p.pool != nil {
		p.pool.Close()
	}
}

func (p *PgRepo) SaveOrder(ctx context.Context, o *domain.Order) error {
	if o == nil {
		return errors.New("nil order")
	}
	_, err := p.pool.Exec(ctx, `
INSERT INTO orders(id, asset_id, seller, floor_price, ceiling_price, created_at, duration)
VALUES($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (id) DO UPDATE SET
  asset_id = EXCLUDED.asset_id,
  seller = EXCLUDED.seller,
  floor_price = EXCLUDED.floor_price,
  ceiling_price = EXCLUDED.ceiling_price,
  created_at = EXCLUDED.created_at,
  duration = EXCLUDED.duration
`, uint64(o.ID), uint64(o.AssetID), string(o.Seller), o.FloorPrice, o.CeilingPrice, o.CreatedAt, o.Duration)
	return err
}

func (p *PgRepo) DeleteOrder(ctx context.Context, id domain.OrderID) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM orders WHERE id = $1`, uint64(id))
	return err
}

func (p *PgRepo) SaveBid(ctx context.Context, b *domain.Bid) error {
	if b == nil {
		return errors.New("nil bid")
	}
	_, err := p.pool.Exec(ctx, `
INSERT INTO bids(order_id, price, bidder)
VALUES($1,$2,$3)
ON CONFLICT (order_id) DO UPDATE SET
  price = EXCLUDED.price,
  bidder = EXCLUDED.bidder
`, uint64(b.OrderID), b.Price, string(b.Bidder))
	return err
}

func (p *PgRepo) DeleteBid(ctx context.Context, orderID domain.OrderID) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM bids WHERE order_id = $1`, uint64(orderID))
	return err
}

func (p *PgRepo) SaveStake(ctx context.Context, index int, s *domain.Stake) error {
	if s == nil {
		return errors.New("nil stake")
	}
	_, err := p.pool.Exec(ctx, `
INSERT INTO stakes(order_id, idx, amount, remaining, staker)
VALUES($1,$2,$3,$4,$5)
ON CONFLICT (order_id, idx) DO UPDATE SET
  amount = EXCLUDED.amount,
  remaining = EXCLUDED.remaining,
  staker = EXCLUDED.staker
`, uint64(s.OrderID), index, s.Amount, s.Remaining, string(s.Staker))
	return err
}

func (p *PgRepo) DeleteStakes(ctx context.Context, orderID domain.OrderID) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM stakes WHERE order_id = $1`, uint64(orderID))
	return err
}

// SaveYieldReport persists the settlement report as JSONB.
func (p *PgRepo) SaveYieldReport(ctx context.Context, r *domain.YieldReport) error {
	if r == nil {
		return errors.New("nil yield report")
	}
	b, err := json.Marshal(r)
	if err != nil {
		return err
	}
	_, err = p.pool.Exec(ctx, `
INSERT INTO yield_reports(id, order_id, report_json, created_at)
VALUES($1,$2,$3,NOW())
ON CONFLICT (id) DO UPDATE SET report_json = EXCLUDED.report_json, created_at = NOW()
`, r.ID, uint64(r.OrderID), string(b))
	return err
}

// LoadOpenOrders returns every persisted order, ordered by id.
func (p *PgRepo) LoadOpenOrders(ctx context.Context) ([]*domain.Order, error) {
	rows, err := p.pool.Query(ctx, `
SELECT id, asset_id, seller, floor_price, ceiling_price, created_at, duration
FROM orders
ORDER BY id ASC
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.Order
	for rows.Next() {
		var (
			o       domain.Order
			id      uint64
			assetID uint64
			seller  string
		)
		if err := rows.Scan(&id, &assetID, &seller, &o.FloorPrice, &o.CeilingPrice, &o.CreatedAt, &o.Duration); err != nil {
			return nil, err
		}
		o.ID = domain.OrderID(id)
		o.AssetID = domain.AssetID(assetID)
		o.Seller = domain.Account(seller)
		res = append(res, &o)
	}
	return res, rows.Err()
}

func (p *PgRepo) LoadBid(ctx context.Context, orderID domain.OrderID) (*domain.Bid, error) {
	var (
		price  decimal.Decimal
		bidder string
	)
	err := p.pool.QueryRow(ctx, `SELECT price, bidder FROM bids WHERE order_id = $1`, uint64(orderID)).
		Scan(&price, &bidder)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &domain.Bid{OrderID: orderID, Price: price, Bidder: domain.Account(bidder)}, nil
}

// LoadStakes returns the stakes of one order in submission order.
func (p *PgRepo) LoadStakes(ctx context.Context, orderID domain.OrderID) ([]domain.Stake, error) {
	rows, err := p.pool.Query(ctx, `
SELECT amount, remaining, staker
FROM stakes
WHERE order_id = $1
ORDER BY idx ASC
`, uint64(orderID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.Stake
	for rows.Next() {
		s := domain.Stake{OrderID: orderID}
		var staker string
		if err := rows.Scan(&s.Amount, &s.Remaining, &staker); err != nil {
			return nil, err
		}
		s.Staker = domain.Account(staker)
		res = append(res, s)
	}
	return res, rows.Err()
}
