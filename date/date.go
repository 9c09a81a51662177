// Package date implements the grand-strategy calendar used throughout save
// files: a non-leap, fixed 365-day-per-year calendar with an hour component.
package date

import (
	"fmt"
	"strconv"
)

// daysPerMonth is 1-indexed; index 0 is unused padding so month can index
// directly, mirroring the source calendar's own lookup table.
var daysPerMonth = [13]uint8{0, 31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// Date represents a single instant on the game calendar: year, month, day,
// and hour. Dates returned with ok=true by New, FromBinary,
// FromBinaryHeuristic and ParseFromStr satisfy the invariants checked by
// New; the zero Date (every component 0) does not.
type Date struct {
	year  int16
	month uint8
	day   uint8
	hour  uint8
}

// New builds a Date, returning ok=false if any component is out of range:
// year must be nonzero and > -100, month 1..=12, day within the month's
// length, and hour 1..=24.
func New(year int16, month, day, hour uint8) (Date, bool) {
	if year == 0 || month == 0 || day == 0 || hour == 0 {
		return Date{}, false
	}
	if year <= -100 || hour > 24 {
		return Date{}, false
	}
	if int(month) >= len(daysPerMonth) {
		return Date{}, false
	}
	if day > daysPerMonth[month] {
		return Date{}, false
	}

	return Date{year: year, month: month, day: day, hour: hour}, true
}

// Year returns the date's year component.
func (d Date) Year() int16 { return d.year }

// Month returns the date's month component, 1..=12.
func (d Date) Month() uint8 { return d.month }

// Day returns the date's day component.
func (d Date) Day() uint8 { return d.day }

// Hour returns the date's hour component, 1..=24.
func (d Date) Hour() uint8 { return d.hour }

// days returns a linear day count treating every year as 365 days. Negative
// years subtract the month/day offset instead of adding it so that ordering
// remains correct across the year-zero boundary.
func (d Date) days() int32 {
	var monthDays int32
	switch d.month {
	case 1:
		monthDays = -1
	case 2:
		monthDays = 30
	case 3:
		monthDays = 58
	case 4:
		monthDays = 89
	case 5:
		monthDays = 119
	case 6:
		monthDays = 150
	case 7:
		monthDays = 180
	case 8:
		monthDays = 211
	case 9:
		monthDays = 242
	case 10:
		monthDays = 272
	case 11:
		monthDays = 303
	case 12:
		monthDays = 333
	}

	yearDay := int32(d.year) * 365
	if yearDay < 0 {
		return yearDay - monthDays - int32(d.day)
	}

	return yearDay + monthDays + int32(d.day)
}

// DaysUntil returns the number of days between d and other, positive if
// other is later.
func (d Date) DaysUntil(other Date) int32 {
	return other.days() - d.days()
}

// AddDays returns a new date that is the given number of days in the future
// (or past, for negative days) from d, keeping the hour unchanged.
func (d Date) AddDays(days int32) Date {
	newDays := d.days() + days

	daysSinceJan1 := newDays % 365
	if daysSinceJan1 < 0 {
		daysSinceJan1 = -daysSinceJan1
	}
	year := newDays / 365
	month, day := monthDayFromJulian(daysSinceJan1)

	return Date{year: int16(year), month: month, day: day, hour: d.hour}
}

// Compare orders dates chronologically: negative if d < other, zero if
// equal, positive if d > other.
func (d Date) Compare(other Date) int {
	switch {
	case d.year != other.year:
		return int(d.year) - int(other.year)
	case d.month != other.month:
		return int(d.month) - int(other.month)
	case d.day != other.day:
		return int(d.day) - int(other.day)
	default:
		return int(d.hour) - int(other.hour)
	}
}

// FromBinary decodes a date from a signed 32-bit integer encoding
// hours-since-epoch, as found in the binary save format. s must be
// non-negative and its components must satisfy New's invariants.
func FromBinary(s int32) (Date, bool) {
	if s < 0 {
		return Date{}, false
	}

	hour := uint8(s%24) + 1
	s /= 24
	daysSinceJan1 := s % 365
	s /= 365
	year := s - 5000
	if year < -32768 || year > 32767 {
		return Date{}, false
	}

	month, day := monthDayFromJulian(daysSinceJan1)

	return New(int16(year), month, day, hour)
}

// FromBinaryHeuristic attempts FromBinary and reports the result only when
// it falls within the plausible range enforced by New (year > -100, hour in
// 1..=24). It is used to reinterpret a generic i32 as a date when no
// stronger context (a "date" key) is available.
func FromBinaryHeuristic(s int32) (Date, bool) {
	return FromBinary(s)
}

// monthDayFromJulian converts a 0-indexed day-of-year into a (month, day)
// pair following the fixed, non-leap calendar.
func monthDayFromJulian(daysSinceJan1 int32) (uint8, uint8) {
	switch {
	case daysSinceJan1 <= 30:
		return 1, uint8(daysSinceJan1 + 1)
	case daysSinceJan1 <= 58:
		return 2, uint8(daysSinceJan1 - 30)
	case daysSinceJan1 <= 89:
		return 3, uint8(daysSinceJan1 - 58)
	case daysSinceJan1 <= 119:
		return 4, uint8(daysSinceJan1 - 89)
	case daysSinceJan1 <= 150:
		return 5, uint8(daysSinceJan1 - 119)
	case daysSinceJan1 <= 180:
		return 6, uint8(daysSinceJan1 - 150)
	case daysSinceJan1 <= 211:
		return 7, uint8(daysSinceJan1 - 180)
	case daysSinceJan1 <= 242:
		return 8, uint8(daysSinceJan1 - 211)
	case daysSinceJan1 <= 272:
		return 9, uint8(daysSinceJan1 - 242)
	case daysSinceJan1 <= 303:
		return 10, uint8(daysSinceJan1 - 272)
	case daysSinceJan1 <= 333:
		return 11, uint8(daysSinceJan1 - 303)
	default:
		return 12, uint8(daysSinceJan1 - 333)
	}
}

// GameFormat renders the date in the game's own Y.M.D.H form, with no
// zero-padding.
func (d Date) GameFormat() string {
	return fmt.Sprintf("%d.%d.%d.%d", d.year, d.month, d.day, d.hour)
}

// ISO8601 renders the date as YYYY-MM-DDTHH, zero-padding month, day, and
// hour to two digits and year to four.
func (d Date) ISO8601() string {
	return fmt.Sprintf("%04d-%02d-%02dT%02d", d.year, d.month, d.day, d.hour)
}

// String satisfies fmt.Stringer using the game format.
func (d Date) String() string { return d.GameFormat() }

// ParseFromStr parses a date of the form "Y.M.D.H" (exactly four
// dot-separated components). It early-rejects inputs whose first byte
// can't start a signed integer, mirroring the source parser's micro
// optimization for fast negative lookups.
func ParseFromStr(s string) (Date, bool) {
	if len(s) == 0 {
		return Date{}, false
	}
	if c := s[0]; c != '-' && (c < '0' || c > '9') {
		return Date{}, false
	}

	parts := splitFour(s, '.')
	if parts == nil {
		return Date{}, false
	}

	year, err := strconv.ParseInt(parts[0], 10, 16)
	if err != nil {
		return Date{}, false
	}
	month, err := strconv.ParseUint(parts[1], 10, 8)
	if err != nil {
		return Date{}, false
	}
	day, err := strconv.ParseUint(parts[2], 10, 8)
	if err != nil {
		return Date{}, false
	}
	hour, err := strconv.ParseUint(parts[3], 10, 8)
	if err != nil {
		return Date{}, false
	}

	return New(int16(year), uint8(month), uint8(day), uint8(hour))
}

// splitFour splits s into exactly four components separated by sep,
// returning nil if the count of separators isn't exactly three.
func splitFour(s string, sep byte) []string {
	spans := make([]string, 0, 4)
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == sep {
			if len(spans) == 3 {
				return nil
			}
			spans = append(spans, s[start:i])
			start = i + 1
		}
	}
	if len(spans) != 3 {
		return nil
	}
	spans = append(spans, s[start:])

	return spans
}
