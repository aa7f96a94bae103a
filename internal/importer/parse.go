package importer

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Master sheets arrive from vendors with currency symbols, thousands
// separators, two-digit years and assorted truthy markers. These parsers
// accept the mess and fall back to safe defaults instead of failing the row.

var nonMoneyChars = regexp.MustCompile(`[^0-9.-]`)

// ParseMoney strips everything but digits, dots and signs, then rounds to
// cents. Unparseable or empty input yields zero.
func ParseMoney(raw string) decimal.Decimal {
	cleaned := nonMoneyChars.ReplaceAllString(strings.TrimSpace(raw), "")
	if cleaned == "" {
		return decimal.Zero.Round(2)
	}
	value, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero.Round(2)
	}
	return value.Round(2)
}

// ParseDate reads M/D/YY or M/D/YYYY. Two-digit years map into 2000s.
// Anything else yields nil.
func ParseDate(raw string) *time.Time {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	parts := strings.Split(trimmed, "/")
	if len(parts) != 3 {
		return nil
	}
	month, errM := strconv.Atoi(strings.TrimSpace(parts[0]))
	day, errD := strconv.Atoi(strings.TrimSpace(parts[1]))
	year, errY := strconv.Atoi(strings.TrimSpace(parts[2]))
	if errM != nil || errD != nil || errY != nil {
		return nil
	}
	if year < 100 {
		year += 2000
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return nil
	}
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if date.Month() != time.Month(month) || date.Day() != day {
		return nil
	}
	return &date
}

// ParseCount reads an integer that must be at least 1, tolerating float
// formatting like "12.0". Empty or unparseable input yields the fallback.
func ParseCount(raw string, fallback int) int {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return fallback
	}
	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return fallback
	}
	if n := int(value); n >= 1 {
		return n
	}
	return 1
}

// ParseNullableInt reads an integer, tolerating float formatting. Empty or
// unparseable input yields nil.
func ParseNullableInt(raw string) *int {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return nil
	}
	n := int(value)
	return &n
}

var truthyTokens = map[string]struct{}{
	"Y": {}, "YES": {}, "1": {}, "TRUE": {}, "X": {}, "T": {},
}

// ParseFlag reports whether the cell carries one of the markers vendors use
// for yes.
func ParseFlag(raw string) bool {
	_, ok := truthyTokens[strings.ToUpper(strings.TrimSpace(raw))]
	return ok
}

// AllowanceFrom derives the off-invoice allowance from a gross and net case
// cost. The net column is only trusted when it sits strictly between zero and
// the gross cost; otherwise the allowance is zero.
func AllowanceFrom(caseCost, netCaseCost decimal.Decimal) decimal.Decimal {
	if netCaseCost.IsPositive() && netCaseCost.LessThan(caseCost) {
		return caseCost.Sub(netCaseCost).Round(2)
	}
	return decimal.Zero.Round(2)
}

// clip bounds free-text columns to the widths the schema allows.
func clip(raw string, max int) string {
	trimmed := strings.TrimSpace(raw)
	if len(trimmed) > max {
		return trimmed[:max]
	}
	return trimmed
}

// clipPtr is clip for nullable columns: blank input becomes nil.
func clipPtr(raw string, max int) *string {
	trimmed := clip(raw, max)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
