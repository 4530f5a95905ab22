package utils

import (
	"strings"
	"time"
)

// LoadLocationOr resolves an IANA zone name or a fixed "UTC+2" style offset,
// falling back to the named fallback zone and finally to UTC.
func LoadLocationOr(name, fallback string) *time.Location {
	if loc, ok := parseLocation(name); ok {
		return loc
	}
	if loc, ok := parseLocation(fallback); ok {
		return loc
	}
	return time.UTC
}

func parseLocation(name string) (*time.Location, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false
	}

	upper := strings.ToUpper(name)
	if strings.HasPrefix(upper, "UTC") || strings.HasPrefix(upper, "GMT") {
		rest := strings.TrimSpace(upper[3:])
		if rest == "" {
			return time.UTC, true
		}
		if offset, ok := parseOffset(rest); ok {
			return time.FixedZone(upper, offset), true
		}
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, false
	}
	return loc, true
}

// parseOffset accepts "+2", "-5", "+5:30" and "+0530".
func parseOffset(s string) (int, bool) {
	if len(s) < 2 || (s[0] != '+' && s[0] != '-') {
		return 0, false
	}
	sign := 1
	if s[0] == '-' {
		sign = -1
	}
	digits := strings.ReplaceAll(s[1:], ":", "")

	var hours, minutes int
	switch len(digits) {
	case 1, 2:
		hours = atoiDigits(digits)
	case 3, 4:
		hours = atoiDigits(digits[:len(digits)-2])
		minutes = atoiDigits(digits[len(digits)-2:])
	default:
		return 0, false
	}
	if hours < 0 || minutes < 0 || hours > 14 || minutes > 59 {
		return 0, false
	}
	return sign * (hours*3600 + minutes*60), true
}

func atoiDigits(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return -1
		}
		n = n*10 + int(r-'0')
	}
	return n
}

// PrettyDate renders a timestamp the way alert and history messages show it,
// e.g. "2025-01-02 03:04 PM PST".
func PrettyDate(date time.Time) string {
	return date.Format("2006-01-02 03:04 PM MST")
}

// ValidLocation reports whether name resolves to a zone LoadLocationOr
// would use as is.
func ValidLocation(name string) bool {
	_, ok := parseLocation(name)
	return ok
}
