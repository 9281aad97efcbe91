// Package core holds the domain model and the pure computations over it:
// balance deltas, budget spend, goal progress and the dashboard snapshot.
//
// This file contains amount parsing and the cents representation used by storage.
package core

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// AmountPlaces is the number of fractional digits kept for every amount.
const AmountPlaces = 2

// MaxAmount bounds every single amount. Stored cents stay far below the
// int64 range even after many additions to a balance.
var MaxAmount = decimal.New(1, 13)

// CheckAmount rejects amounts above MaxAmount.
func CheckAmount(field string, d decimal.Decimal) error {
	if d.Abs().GreaterThan(MaxAmount) {
		return Invalid(field, "too large (max "+MaxAmount.String()+")")
	}
	return nil
}

// ParseAmount parses a non-negative decimal amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and rounds
// half away from zero to two places:
//
//	ParseAmount("12.345") -> 12.35
//	ParseAmount("12,3")   -> 12.30
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, Invalid("amount", "is required")
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, Invalid("amount", "must be a decimal number")
	}
	if d.IsNegative() {
		return decimal.Zero, Invalid("amount", "must not be negative")
	}
	if err := CheckAmount("amount", d); err != nil {
		return decimal.Zero, err
	}
	return RoundAmount(d), nil
}

// RoundAmount rounds to AmountPlaces.
func RoundAmount(d decimal.Decimal) decimal.Decimal {
	return d.Round(AmountPlaces)
}

var (
	maxCents = decimal.NewFromInt(math.MaxInt64)
	minCents = decimal.NewFromInt(math.MinInt64)
)

// ToCents converts an amount to integer cents for storage. Values outside the
// int64 range saturate instead of wrapping.
func ToCents(d decimal.Decimal) int64 {
	c := d.Shift(AmountPlaces).Round(0)
	switch {
	case c.GreaterThan(maxCents):
		return math.MaxInt64
	case c.LessThan(minCents):
		return math.MinInt64
	}
	return c.IntPart()
}

// FromCents converts stored cents back to an amount.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -AmountPlaces)
}

// SumSigned adds the signed amounts of txs.
func SumSigned(txs []Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txs {
		total = total.Add(t.Signed())
	}
	return total
}
