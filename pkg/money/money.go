// Package money converts between decimal amount strings and integer minor
// units. Conversion splits the decimal string rather than multiplying floats,
// so any amount with at most two fractional digits round-trips exactly.
package money

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrTooManyDigits  = errors.New("amount has more than two fractional digits")
	ErrNegativeAmount = errors.New("amount must be positive")
)

// ToMinorUnits parses a decimal string like "150.00" or "99.9" into minor
// units (15000, 9990). Amounts must be positive.
func ToMinorUnits(amount string) (int64, error) {
	s := strings.TrimSpace(amount)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	if strings.HasPrefix(s, "-") {
		return 0, ErrNegativeAmount
	}
	whole := s
	frac := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > 2 {
		return 0, ErrTooManyDigits
	}
	// ParseInt tolerates a sign, so reject anything but digits up front
	// ("12.-5" and "+12.00" are malformed, not amounts).
	if !digitsOnly(whole) || !digitsOnly(frac) {
		return 0, ErrInvalidAmount
	}
	for len(frac) < 2 {
		frac += "0"
	}
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	var f int64
	if frac != "00" {
		f, err = strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, ErrInvalidAmount
		}
	}
	return w*100 + f, nil
}

func digitsOnly(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// FromMinorUnits formats minor units as a two-decimal string: 17000 -> "170.00".
func FromMinorUnits(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
}

// ApplyPercentage returns the amount after subtracting pct percent, rounded to
// the nearest minor unit and clamped at zero.
func ApplyPercentage(minor int64, pct float64) int64 {
	if pct <= 0 {
		return minor
	}
	if pct >= 100 {
		return 0
	}
	discount := int64(math.Round(float64(minor) * pct / 100))
	adjusted := minor - discount
	if adjusted < 0 {
		return 0
	}
	return adjusted
}

// ApplyFixed subtracts a fixed discount in minor units, clamped at zero.
func ApplyFixed(minor, discountMinor int64) int64 {
	if discountMinor <= 0 {
		return minor
	}
	adjusted := minor - discountMinor
	if adjusted < 0 {
		return 0
	}
	return adjusted
}
