package enums

import "fmt"

// ImportSource records where a bulk import originated.
type ImportSource string

const (
	ImportSourceExcel  ImportSource = "EXCEL"
	ImportSourceEmail  ImportSource = "EMAIL"
	ImportSourceManual ImportSource = "MANUAL"
	ImportSourcePortal ImportSource = "PORTAL"
	ImportSourceAPI    ImportSource = "API"
)

var validImportSources = []ImportSource{
	ImportSourceExcel,
	ImportSourceEmail,
	ImportSourceManual,
	ImportSourcePortal,
	ImportSourceAPI,
}

// String implements fmt.Stringer.
func (i ImportSource) String() string {
	return string(i)
}

// IsValid reports whether the value is a known ImportSource.
func (i ImportSource) IsValid() bool {
	for _, candidate := range validImportSources {
		if candidate == i {
			return true
		}
	}
	return false
}

// ParseImportSource converts raw input into an ImportSource.
func ParseImportSource(value string) (ImportSource, error) {
	for _, candidate := range validImportSources {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid import source %q", value)
}
