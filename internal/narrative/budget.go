package narrative

import (
	"time"

	"github.com/rs/zerolog/log"
)

// Budget gates remote generation behind daily and monthly spend caps so a
// busy server cannot run away on API costs.
type Budget struct {
	store        *Store
	dailyLimit   float64
	monthlyLimit float64
}

// NewBudget wraps a store with spend limits. Non-positive limits disable
// the corresponding cap.
func NewBudget(store *Store, dailyLimit, monthlyLimit float64) *Budget {
	return &Budget{store: store, dailyLimit: dailyLimit, monthlyLimit: monthlyLimit}
}

// CanSpend reports whether an estimated cost fits within both caps. Ledger
// read failures allow the spend; cost control should not take the narrative
// path down with it.
func (b *Budget) CanSpend(estimated float64, now time.Time) bool {
	if b.dailyLimit > 0 {
		spent, err := b.store.SpentToday(now)
		if err != nil {
			log.Warn().Err(err).Msg("budget ledger read failed, allowing spend")
			return true
		}
		if spent+estimated > b.dailyLimit {
			return false
		}
	}

	if b.monthlyLimit > 0 {
		spent, err := b.store.SpentThisMonth(now)
		if err != nil {
			log.Warn().Err(err).Msg("budget ledger read failed, allowing spend")
			return true
		}
		if spent+estimated > b.monthlyLimit {
			return false
		}
	}

	return true
}

// Record books an actual cost against the ledger.
func (b *Budget) Record(cost float64, now time.Time) {
	if err := b.store.RecordSpend(cost, now); err != nil {
		log.Error().Err(err).Float64("cost", cost).Msg("failed to record narrative spend")
	}
}

// UsageSummary reports ledger state for the usage endpoint.
type UsageSummary struct {
	Today struct {
		Spent     float64 `json:"spent"`
		Budget    float64 `json:"budget"`
		Remaining float64 `json:"remaining"`
	} `json:"today"`
	ThisMonth struct {
		Spent     float64 `json:"spent"`
		Budget    float64 `json:"budget"`
		Remaining float64 `json:"remaining"`
	} `json:"this_month"`
}

// Summary builds the current usage summary.
func (b *Budget) Summary(now time.Time) (UsageSummary, error) {
	var summary UsageSummary

	daily, err := b.store.SpentToday(now)
	if err != nil {
		return summary, err
	}
	monthly, err := b.store.SpentThisMonth(now)
	if err != nil {
		return summary, err
	}

	summary.Today.Spent = daily
	summary.Today.Budget = b.dailyLimit
	summary.Today.Remaining = b.dailyLimit - daily
	summary.ThisMonth.Spent = monthly
	summary.ThisMonth.Budget = b.monthlyLimit
	summary.ThisMonth.Remaining = b.monthlyLimit - monthly
	return summary, nil
}
