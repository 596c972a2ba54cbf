// Package allocation splits an amount across beneficiaries in proportion to their
// weights, and applies that split to interest distribution and asset seeding.
package allocation

import (
	"sort"

	"bondbook-backend/internal/domain"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Places is the precision every share is rounded to.
const Places = 2

var hundred = decimal.NewFromInt(100)

// Share is one beneficiary's portion of a distribution.
type Share struct {
	BeneficiaryID uint            `json:"beneficiary_id"`
	Weight        decimal.Decimal `json:"weight"`
	Amount        decimal.Decimal `json:"amount"`
}

// Distribute splits total across weights. Each share is total*w/sum(w) rounded to
// two places independently; the rounded shares are not reconciled back to total,
// so their sum may drift from it by at most n*0.005. Shares are ordered by
// beneficiary id. An empty weight set or a zero total weight fails with InvalidState
// before anything is computed.
func Distribute(total decimal.Decimal, weights map[uint]decimal.Decimal) ([]Share, error) {
	if !total.IsPositive() {
		return nil, domain.Validation("Amount must be a positive number.")
	}
	return split(total, weights, roundHalf)
}

// Percentages splits 100 across weights for seeding ownership. Each percentage is
// rounded down to two places, so the seeded set never sums above 100.
func Percentages(weights map[uint]decimal.Decimal) ([]Share, error) {
	return split(hundred, weights, roundDown)
}

func roundHalf(d decimal.Decimal) decimal.Decimal { return d.Round(Places) }

func roundDown(d decimal.Decimal) decimal.Decimal { return d.RoundFloor(Places) }

func split(total decimal.Decimal, weights map[uint]decimal.Decimal, round func(decimal.Decimal) decimal.Decimal) ([]Share, error) {
	sum := decimal.Zero
	for id, w := range weights {
		if w.IsNegative() {
			return nil, domain.Validation("Weight for beneficiary %d is negative.", id)
		}
		sum = sum.Add(w)
	}
	if len(weights) == 0 || !sum.IsPositive() {
		return nil, domain.InvalidState("Nothing to distribute against: total weight is zero.")
	}

	ids := lo.Keys(weights)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	shares := make([]Share, 0, len(ids))
	for _, id := range ids {
		w := weights[id]
		// multiply first so the quotient is taken once at full precision
		amount := round(total.Mul(w).DivRound(sum, 16))
		shares = append(shares, Share{BeneficiaryID: id, Weight: w, Amount: amount})
	}
	return shares, nil
}

// Distributed is the sum of the rounded shares.
func Distributed(shares []Share) decimal.Decimal {
	return lo.Reduce(shares, func(acc decimal.Decimal, s Share, _ int) decimal.Decimal {
		return acc.Add(s.Amount)
	}, decimal.Zero)
}

// Remainder is total minus the distributed sum: the accepted rounding drift.
func Remainder(total decimal.Decimal, shares []Share) decimal.Decimal {
	return total.Sub(Distributed(shares))
}

// nonZero drops zero weights so they produce no ledger rows. Negative weights are
// kept for split to reject.
func nonZero(weights map[uint]decimal.Decimal) map[uint]decimal.Decimal {
	return lo.PickBy(weights, func(_ uint, w decimal.Decimal) bool {
		return !w.IsZero()
	})
}
