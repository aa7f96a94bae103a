package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Valid normalized UPC lengths: 12 (UPC-A), 13 (EAN-13), 14 (ITF-14).
var validUPCLengths = map[int]struct{}{12: {}, 13: {}, 14: {}}

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// NormalizeUPC strips every non-digit character from the raw UPC. The second
// return value is false when nothing is left.
func NormalizeUPC(raw string) (string, bool) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return "", false
	}
	return cleaned, true
}

// ValidateUPC checks a normalized UPC and returns a distinct reason per
// failure class.
func ValidateUPC(upc string) (bool, string) {
	if upc == "" {
		return false, "UPC is empty"
	}
	for _, r := range upc {
		if r < '0' || r > '9' {
			return false, fmt.Sprintf("UPC contains non-numeric characters: %s", upc)
		}
	}
	if _, ok := validUPCLengths[len(upc)]; !ok {
		return false, fmt.Sprintf("UPC length %d is invalid (expected 12, 13, or 14)", len(upc))
	}
	return true, "OK"
}

// CalculateMargin returns (retail - unitCost) / retail rounded to four
// decimal places (basis-point precision). Undefined when either input is
// zero or retail is not positive; undefined is reported via the bool, never
// as a silent zero.
func CalculateMargin(retail, unitCost decimal.Decimal) (decimal.Decimal, bool) {
	if retail.IsZero() || unitCost.IsZero() {
		return decimal.Decimal{}, false
	}
	if retail.Sign() <= 0 {
		return decimal.Decimal{}, false
	}
	return retail.Sub(unitCost).Div(retail).Round(4), true
}

// SuggestRetail derives a shelf price from a unit cost while preserving the
// target margin and conforming to the store's psychological-pricing
// convention: the result always ends in a cents digit of 8 within its
// ten-cent band and never falls below the margin-preserving theoretical
// price (compared in whole cents).
//
// Undefined when unitCost <= 0 or targetMargin is not strictly in (0,1).
func SuggestRetail(unitCost, targetMargin decimal.Decimal) (decimal.Decimal, bool) {
	if unitCost.Sign() <= 0 {
		return decimal.Decimal{}, false
	}
	if targetMargin.Sign() <= 0 || targetMargin.Cmp(one) >= 0 {
		return decimal.Decimal{}, false
	}

	theoretical := unitCost.Div(one.Sub(targetMargin))

	// Whole-cent arithmetic avoids float precision drift.
	theoreticalCents := theoretical.Mul(hundred).IntPart()
	remainder := theoreticalCents % 10

	var suggestedCents int64
	if remainder <= 8 {
		suggestedCents = theoreticalCents - remainder + 8
	} else {
		suggestedCents = theoreticalCents - remainder + 18
	}

	if suggestedCents < theoreticalCents {
		suggestedCents += 10
	}

	return decimal.NewFromInt(suggestedCents).Div(hundred).Round(2), true
}

// MarginPctDisplay renders a margin fraction for display, e.g. "28.5%".
func MarginPctDisplay(margin decimal.Decimal) string {
	pct, _ := margin.Mul(hundred).Round(1).Float64()
	return fmt.Sprintf("%.1f%%", pct)
}
