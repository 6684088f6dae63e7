package pricing

import "github.com/shopspring/decimal"

// Money represents a monetary value stored in minor units.
type Money = int64

// MembershipDiscountBps is the flat membership discount expressed in basis points (10%).
const MembershipDiscountBps = 1000

// Summary aggregates computed billing components.
type Summary struct {
	Subtotal   Money `json:"subtotal"`
	Discount   Money `json:"discount"`
	Adjustment Money `json:"adjustment"`
	Total      Money `json:"total"`
}

// Compute calculates the bill for the given line prices.
//
// The manual adjustment is signed and applied after the membership discount. The total is
// floored at zero but has no upper bound.
func Compute(prices []Money, membership bool, adjustment Money) Summary {
	var subtotal Money
	for _, p := range prices {
		subtotal += p
	}
	var discount Money
	if membership {
		discount = Percent(subtotal, MembershipDiscountBps)
	}
	total := subtotal - discount + adjustment
	if total < 0 {
		total = 0
	}
	return Summary{
		Subtotal:   subtotal,
		Discount:   discount,
		Adjustment: adjustment,
		Total:      total,
	}
}

// Percent returns bps/10000 of amount rounded half away from zero to the minor unit.
func Percent(amount Money, bps int) Money {
	if amount == 0 || bps == 0 {
		return 0
	}
	share := decimal.NewFromInt(amount).
		Mul(decimal.NewFromInt(int64(bps))).
		Div(decimal.NewFromInt(10000)).
		Round(0)
	return share.IntPart()
}

// Ratio divides total by count rounded to the minor unit, returning zero when count is zero.
func Ratio(total Money, count int) Money {
	if count <= 0 {
		return 0
	}
	return decimal.NewFromInt(total).Div(decimal.NewFromInt(int64(count))).Round(0).IntPart()
}

// Format renders minor units as a major-unit decimal string with two places, e.g. 15000 -> "150.00".
func Format(amount Money) string {
	return decimal.New(amount, -2).StringFixed(2)
}
