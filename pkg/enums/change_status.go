package enums

import "fmt"

// ChangeStatus tracks the lifecycle of a pending cost change.
type ChangeStatus string

const (
	ChangeStatusPending  ChangeStatus = "PENDING"
	ChangeStatusApproved ChangeStatus = "APPROVED"
	ChangeStatusRejected ChangeStatus = "REJECTED"
	ChangeStatusApplied  ChangeStatus = "APPLIED"
)

var validChangeStatuses = []ChangeStatus{
	ChangeStatusPending,
	ChangeStatusApproved,
	ChangeStatusRejected,
	ChangeStatusApplied,
}

// String implements fmt.Stringer.
func (c ChangeStatus) String() string {
	return string(c)
}

// IsValid reports whether the value is a known ChangeStatus.
func (c ChangeStatus) IsValid() bool {
	for _, candidate := range validChangeStatuses {
		if candidate == c {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition may leave this status.
func (c ChangeStatus) IsTerminal() bool {
	return c == ChangeStatusRejected || c == ChangeStatusApplied
}

// ParseChangeStatus converts raw input into a ChangeStatus.
func ParseChangeStatus(value string) (ChangeStatus, error) {
	for _, candidate := range validChangeStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid change status %q", value)
}
