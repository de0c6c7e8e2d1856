// Package core provides money parsing and formatting utilities.
//
// Amounts travel as decimal strings (forms, the SQLite amount column) and are
// converted to float64 for aggregation. Rounding happens only for display.
package core

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxAmount is the largest single amount accepted. It keeps every sum of
// stored amounts finite.
const MaxAmount = 1_000_000_000_000

var maxAmount = decimal.NewFromInt(MaxAmount)

// ValidAmount reports whether v is a finite amount in (0, MaxAmount].
func ValidAmount(v float64) bool {
	return !math.IsNaN(v) && v > 0 && v <= MaxAmount
}

// ParseAmount converts user or store text to a positive decimal.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators.
// Returns ErrInvalidAmount for empty, malformed, zero, negative or
// greater than MaxAmount input.
//
// Examples:
//
//	ParseAmount("12.5")  -> 12.5, nil
//	ParseAmount("12,50") -> 12.5, nil
//	ParseAmount("0")     -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if !d.IsPositive() || d.GreaterThan(maxAmount) {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// ParseAmountFloat is ParseAmount converted to float64.
func ParseAmountFloat(s string) (float64, error) {
	d, err := ParseAmount(s)
	if err != nil {
		return 0, err
	}
	f, _ := d.Float64()
	if !ValidAmount(f) {
		return 0, ErrInvalidAmount
	}
	return f, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// AmountString renders an amount for storage without losing precision.
// Non-finite values render as "0"; Validate rejects them before storage.
func AmountString(v float64) string {
	if !finite(v) {
		return "0"
	}
	return decimal.NewFromFloat(v).String()
}

// FormatUSD formats v with a literal $ prefix and two decimals, rounding the
// exact binary value the way toFixed does (1.005 -> $1.00).
// Non-finite values render as "$--".
func FormatUSD(v float64) string {
	if !finite(v) {
		return "$--"
	}
	if v == 0 {
		v = 0 // drop the sign of -0
	}
	if v < 0 {
		return "-$" + strconv.FormatFloat(-v, 'f', 2, 64)
	}
	return "$" + strconv.FormatFloat(v, 'f', 2, 64)
}
