package rss

import (
	"fmt"
	"strings"
	"time"
)

// ParseW3CDTF normalizes a W3C-style timestamp. Parsing is incremental:
// the four-digit year must be present, and each finer field (month, day,
// time of day, offset) is consumed only while it stays well-formed. The
// remainder defaults to the minimum value, so "2006-13" and "2006" both
// come out as 2006-01-01T00:00:00 UTC. It fails only when no year can be
// extracted from the input.
func ParseW3CDTF(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	year, rest, ok := takeDigits(s, 4)
	if !ok {
		return time.Time{}, fmt.Errorf("cannot parse %q as W3C timestamp", raw)
	}

	month, day := 1, 1
	hour, min, sec, nsec := 0, 0, 0, 0
	loc := time.UTC

	if v, r, ok := takeField(rest, '-', 1, 12); ok {
		month, rest = v, r
		if v, r, ok := takeField(rest, '-', 1, 31); ok {
			day, rest = v, r
			if v, r, ok := takeField(rest, 'T', 0, 23); ok {
				hour, rest = v, r
				if v, r, ok := takeField(rest, ':', 0, 59); ok {
					min, rest = v, r
					if v, r, ok := takeField(rest, ':', 0, 60); ok {
						sec, rest = v, r
						nsec, rest = takeFraction(rest)
					}
				}
				if l, _, ok := takeOffset(rest); ok {
					loc = l
				}
			}
		}
	}
	return time.Date(year, time.Month(month), day, hour, min, sec, nsec, loc), nil
}

// takeDigits reads exactly n leading decimal digits from s.
func takeDigits(s string, n int) (int, string, bool) {
	if len(s) < n {
		return 0, s, false
	}
	v := 0
	for i := 0; i < n; i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, s, false
		}
		v = v*10 + int(c-'0')
	}
	return v, s[n:], true
}

// takeField consumes a separator followed by a two-digit value in
// [lo, hi]. On any mismatch the input is returned untouched.
func takeField(s string, sep byte, lo, hi int) (int, string, bool) {
	if len(s) == 0 || s[0] != sep {
		return 0, s, false
	}
	v, rest, ok := takeDigits(s[1:], 2)
	if !ok || v < lo || v > hi {
		return 0, s, false
	}
	return v, rest, true
}

// takeFraction consumes ".NNN" after the seconds, truncated to
// nanosecond precision.
func takeFraction(s string) (int, string) {
	if len(s) == 0 || s[0] != '.' {
		return 0, s
	}
	i := 1
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 1 {
		return 0, s
	}
	frac := s[1:i]
	if len(frac) > 9 {
		frac = frac[:9]
	}
	nsec := 0
	for j := 0; j < len(frac); j++ {
		nsec = nsec*10 + int(frac[j]-'0')
	}
	for j := len(frac); j < 9; j++ {
		nsec *= 10
	}
	return nsec, s[i:]
}

// takeOffset consumes a zone designator: "Z", or "+HH:MM"/"-HH:MM"
// (minutes optional).
func takeOffset(s string) (*time.Location, string, bool) {
	if strings.HasPrefix(s, "Z") {
		return time.UTC, s[1:], true
	}
	if len(s) == 0 || (s[0] != '+' && s[0] != '-') {
		return nil, s, false
	}
	sign := 1
	if s[0] == '-' {
		sign = -1
	}
	h, rest, ok := takeDigits(s[1:], 2)
	if !ok || h > 23 {
		return nil, s, false
	}
	m := 0
	if len(rest) > 0 && rest[0] == ':' {
		if v, r, ok := takeDigits(rest[1:], 2); ok && v <= 59 {
			m, rest = v, r
		}
	}
	return time.FixedZone("", sign*(h*3600+m*60)), rest, true
}
