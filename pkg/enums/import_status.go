package enums

import "fmt"

// ImportStatus tracks the outcome of a bulk import run.
type ImportStatus string

const (
	ImportStatusPending  ImportStatus = "PENDING"
	ImportStatusComplete ImportStatus = "COMPLETE"
	ImportStatusFailed   ImportStatus = "FAILED"
)

var validImportStatuses = []ImportStatus{
	ImportStatusPending,
	ImportStatusComplete,
	ImportStatusFailed,
}

// String implements fmt.Stringer.
func (i ImportStatus) String() string {
	return string(i)
}

// IsValid reports whether the value is a known ImportStatus.
func (i ImportStatus) IsValid() bool {
	for _, candidate := range validImportStatuses {
		if candidate == i {
			return true
		}
	}
	return false
}

// ParseImportStatus converts raw input into an ImportStatus.
func ParseImportStatus(value string) (ImportStatus, error) {
	for _, candidate := range validImportStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid import status %q", value)
}
