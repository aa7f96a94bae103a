package enums

import "fmt"

// CommMethod records how a vendor communicates cost changes.
type CommMethod string

const (
	CommMethodExcel  CommMethod = "EXCEL"
	CommMethodEmail  CommMethod = "EMAIL"
	CommMethodEDI    CommMethod = "EDI"
	CommMethodPortal CommMethod = "PORTAL"
	CommMethodPaper  CommMethod = "PAPER"
	CommMethodOther  CommMethod = "OTHER"
)

var validCommMethods = []CommMethod{
	CommMethodExcel,
	CommMethodEmail,
	CommMethodEDI,
	CommMethodPortal,
	CommMethodPaper,
	CommMethodOther,
}

// String implements fmt.Stringer.
func (c CommMethod) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CommMethod.
func (c CommMethod) IsValid() bool {
	for _, candidate := range validCommMethods {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCommMethod converts raw input into a CommMethod.
func ParseCommMethod(value string) (CommMethod, error) {
	for _, candidate := range validCommMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid comm method %q", value)
}
