package core

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/nftmarket/auction-engine/internal/domain"
)

var daysPerYear = decimal.NewFromInt(365)

// Allocator apportions a notional reward pool among stakers at settlement.
// Allocation is weighted by stake size and by how long before expiry the stake
// was committed; the per-unit rate shrinks as cumulative weight grows and
// freezes once the marginal annual rate falls under the configured fixed rate.
//
// The allocator only computes and records. No funds move because of a report.
type Allocator struct {
	cfg Config
	log logrus.FieldLogger
}

func NewAllocator(cfg Config, log logrus.FieldLogger) *Allocator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Allocator{cfg: cfg, log: log}
}

// Allocate walks the stakes in submission order and produces the yield report
// for a sale at clearingPrice.
//
// Pool sizing: rewardPool = clearingPrice * profitRate / auctionDays * 365,
// i.e. the annual profit fraction scaled to this auction's length. While the
// rate is unfrozen, each stake i sees
//
//	exchangeRate_i = pool / (pool + runningWeight)
//
// which strictly decreases as the running weight grows.
func (a *Allocator) Allocate(order *domain.Order, clearingPrice decimal.Decimal,
	stakes []domain.Stake) (*domain.YieldReport, error) {

	dayLength := decimal.NewFromInt(a.cfg.DayLength)
	auctionDays := decimal.NewFromInt(order.Duration).Div(dayLength)
	pool := clearingPrice.Mul(a.cfg.ProfitRate).Div(auctionDays).Mul(daysPerYear)

	report := &domain.YieldReport{
		ID:            uuid.NewString(),
		OrderID:       order.ID,
		ClearingPrice: clearingPrice,
		RewardPool:    pool,
		AuctionDays:   auctionDays,
		Entries:       make([]domain.YieldEntry, 0, len(stakes)),
	}

	a.log.WithFields(logrus.Fields{
		"order":        order.ID,
		"price":        clearingPrice,
		"profit_rate":  a.cfg.ProfitRate,
		"auction_days": auctionDays,
		"reward_pool":  pool,
		"fixed_rate":   a.cfg.FixedRate,
	}).Debug("yield allocation started")

	var (
		frozen        bool
		rate          decimal.Decimal
		runningWeight decimal.Decimal
		runningCredit decimal.Decimal
	)
	for _, stake := range stakes {
		stakeDays := decimal.NewFromInt(stake.Remaining).Div(dayLength)
		weight := stake.Amount.Mul(stakeDays).Div(auctionDays)
		// The minimum-amount and pre-expiry invariants guarantee a
		// positive weight; a non-positive one means corrupted records.
		if !weight.IsPositive() {
			return nil, domain.ErrInvalidStakeWeight
		}
		runningWeight = runningWeight.Add(weight)

		if !frozen {
			rate = pool.Div(pool.Add(runningWeight))
		}
		credit := weight.Mul(rate)
		runningCredit = runningCredit.Add(credit)

		var annualRate decimal.Decimal
		if runningCredit.IsPositive() {
			annualRate = credit.Div(runningCredit).Mul(pool).Div(weight)
		}
		if !frozen && annualRate.LessThan(a.cfg.FixedRate) {
			frozen = true
		}

		report.Entries = append(report.Entries, domain.YieldEntry{
			Staker:        stake.Staker,
			Amount:        stake.Amount,
			StakeDays:     stakeDays,
			ExchangeRate:  rate,
			AnnualRate:    annualRate,
			Credit:        credit,
			RunningCredit: runningCredit,
		})

		a.log.WithFields(logrus.Fields{
			"order":          order.ID,
			"staker":         stake.Staker,
			"amount":         stake.Amount,
			"stake_days":     stakeDays,
			"exchange_rate":  rate,
			"annual_rate":    annualRate,
			"credit":         credit,
			"running_credit": runningCredit,
		}).Debug("yield allocation entry")
	}
	return report, nil
}
