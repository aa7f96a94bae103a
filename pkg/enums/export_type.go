package enums

import "fmt"

// ExportType classifies a BRData export record.
type ExportType string

const (
	ExportTypePriceChange ExportType = "PRICE_CHANGE"
	ExportTypeNewItem     ExportType = "NEW_ITEM"
	ExportTypeDisco       ExportType = "DISCO"
	ExportTypeTPR         ExportType = "TPR"
)

var validExportTypes = []ExportType{
	ExportTypePriceChange,
	ExportTypeNewItem,
	ExportTypeDisco,
	ExportTypeTPR,
}

// String implements fmt.Stringer.
func (e ExportType) String() string {
	return string(e)
}

// IsValid reports whether the value is a known ExportType.
func (e ExportType) IsValid() bool {
	for _, candidate := range validExportTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseExportType converts raw input into an ExportType.
func ParseExportType(value string) (ExportType, error) {
	for _, candidate := range validExportTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid export type %q", value)
}
