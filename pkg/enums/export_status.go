package enums

import "fmt"

// ExportStatus tracks the outcome of an export log entry.
type ExportStatus string

const (
	ExportStatusPending   ExportStatus = "PENDING"
	ExportStatusSent      ExportStatus = "SENT"
	ExportStatusConfirmed ExportStatus = "CONFIRMED"
	ExportStatusFailed    ExportStatus = "FAILED"
)

var validExportStatuses = []ExportStatus{
	ExportStatusPending,
	ExportStatusSent,
	ExportStatusConfirmed,
	ExportStatusFailed,
}

// String implements fmt.Stringer.
func (e ExportStatus) String() string {
	return string(e)
}

// IsValid reports whether the value is a known ExportStatus.
func (e ExportStatus) IsValid() bool {
	for _, candidate := range validExportStatuses {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseExportStatus converts raw input into an ExportStatus.
func ParseExportStatus(value string) (ExportStatus, error) {
	for _, candidate := range validExportStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid export status %q", value)
}
