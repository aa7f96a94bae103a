package enums

import "fmt"

// ChangeSource records where a cost or price change originated.
type ChangeSource string

const (
	ChangeSourceManual     ChangeSource = "MANUAL"
	ChangeSourceImport     ChangeSource = "IMPORT"
	ChangeSourcePortal     ChangeSource = "PORTAL"
	ChangeSourceBRDataSync ChangeSource = "BRDATA_SYNC"
	ChangeSourceSystem     ChangeSource = "SYSTEM"
)

var validChangeSources = []ChangeSource{
	ChangeSourceManual,
	ChangeSourceImport,
	ChangeSourcePortal,
	ChangeSourceBRDataSync,
	ChangeSourceSystem,
}

// String implements fmt.Stringer.
func (c ChangeSource) String() string {
	return string(c)
}

// IsValid reports whether the value is a known ChangeSource.
func (c ChangeSource) IsValid() bool {
	for _, candidate := range validChangeSources {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseChangeSource converts raw input into a ChangeSource.
func ParseChangeSource(value string) (ChangeSource, error) {
	for _, candidate := range validChangeSources {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid change source %q", value)
}
