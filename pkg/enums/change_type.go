package enums

import "fmt"

// ChangeType classifies a history record.
//
//	COST_AND_PRICE  vendor cost change triggered a buyer retail adjustment
//	COST_ONLY       cost changed, buyer holds retail (margin absorbed)
//	PRICE_ONLY      retail adjusted for competitive/market reasons, no cost change
type ChangeType string

const (
	ChangeTypeCostAndPrice ChangeType = "COST_AND_PRICE"
	ChangeTypeCostOnly     ChangeType = "COST_ONLY"
	ChangeTypePriceOnly    ChangeType = "PRICE_ONLY"
)

var validChangeTypes = []ChangeType{
	ChangeTypeCostAndPrice,
	ChangeTypeCostOnly,
	ChangeTypePriceOnly,
}

// String implements fmt.Stringer.
func (c ChangeType) String() string {
	return string(c)
}

// IsValid reports whether the value is a known ChangeType.
func (c ChangeType) IsValid() bool {
	for _, candidate := range validChangeTypes {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseChangeType converts raw input into a ChangeType.
func ParseChangeType(value string) (ChangeType, error) {
	for _, candidate := range validChangeTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid change type %q", value)
}
