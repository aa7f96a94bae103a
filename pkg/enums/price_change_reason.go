package enums

import "fmt"

// PriceChangeReason explains a standalone retail change. Required for
// PRICE_ONLY history records.
type PriceChangeReason string

const (
	PriceChangeReasonCompetitive PriceChangeReason = "COMPETITIVE"
	PriceChangeReasonMarket      PriceChangeReason = "MARKET"
	PriceChangeReasonCorrection  PriceChangeReason = "CORRECTION"
	PriceChangeReasonOther       PriceChangeReason = "OTHER"
)

var validPriceChangeReasons = []PriceChangeReason{
	PriceChangeReasonCompetitive,
	PriceChangeReasonMarket,
	PriceChangeReasonCorrection,
	PriceChangeReasonOther,
}

// String implements fmt.Stringer.
func (p PriceChangeReason) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PriceChangeReason.
func (p PriceChangeReason) IsValid() bool {
	for _, candidate := range validPriceChangeReasons {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePriceChangeReason converts raw input into a PriceChangeReason.
func ParsePriceChangeReason(value string) (PriceChangeReason, error) {
	for _, candidate := range validPriceChangeReasons {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid price change reason %q", value)
}
