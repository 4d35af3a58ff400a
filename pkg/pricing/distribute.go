package pricing

import "github.com/shopspring/decimal"

var oneHundred = decimal.NewFromInt(100)

// roundHalfUp rounds a decimal cent amount to a whole number of cents,
// with .5 rounding up.
func roundHalfUp(d decimal.Decimal) int64 {
	return d.Round(0).IntPart()
}

// percentOf returns percent% of amount in whole cents, rounded half-up.
func percentOf(amount int64, percent decimal.Decimal) int64 {
	return roundHalfUp(decimal.NewFromInt(amount).Mul(percent).Div(oneHundred))
}

// distribute splits total across the weighted slots proportionally. Each slot
// gets the floor of its exact share; the leftover cents go to the first slot
// with positive weight so the shares always sum to total exactly.
func distribute(total int64, weights []int64) []int64 {
	shares := make([]int64, len(weights))
	if total <= 0 {
		return shares
	}

	var weightSum int64
	for _, w := range weights {
		weightSum += w
	}
	if weightSum <= 0 {
		return shares
	}

	remaining := total
	for i, w := range weights {
		share := total * w / weightSum
		shares[i] = share
		remaining -= share
	}
	if remaining > 0 {
		for i, w := range weights {
			if w > 0 {
				shares[i] += remaining
				break
			}
		}
	}

	return shares
}
