package entities

import (
	"fmt"
	"math"
	"time"
)

// DayLayout is the ISO calendar-day format used for every date on the board
const DayLayout = "2006-01-02"

// Day is a calendar day with no time-of-day component.
// The zero value is "no day" and reports IsZero.
type Day struct {
	t time.Time
}

// NewDay returns the calendar day for the given year, month and day.
// Out-of-range values are normalized the way time.Date normalizes them.
func NewDay(year int, month time.Month, day int) Day {
	return Day{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DayOf truncates a timestamp to its calendar day in the timestamp's own location
func DayOf(t time.Time) Day {
	y, m, d := t.Date()
	return NewDay(y, m, d)
}

// Today returns the current calendar day in local time
func Today() Day {
	return DayOf(time.Now())
}

// ParseDay parses an ISO YYYY-MM-DD string
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		return Day{}, fmt.Errorf("invalid day %q: expected YYYY-MM-DD", s)
	}
	return DayOf(t), nil
}

// MustParseDay is ParseDay for literals; it panics on malformed input
func MustParseDay(s string) Day {
	d, err := ParseDay(s)
	if err != nil {
		panic(err)
	}
	return d
}

// IsZero reports whether d is the zero Day
func (d Day) IsZero() bool {
	return d.t.IsZero()
}

// Time returns midnight UTC of the day
func (d Day) Time() time.Time {
	return d.t
}

// AddDays returns the day n calendar days after d (n may be negative)
func (d Day) AddDays(n int) Day {
	return Day{t: d.t.AddDate(0, 0, n)}
}

// DaysUntil returns the number of calendar days from d to other.
// It is negative when other is before d.
func (d Day) DaysUntil(other Day) int {
	return int(math.Round(other.t.Sub(d.t).Hours() / 24))
}

// Before reports whether d is strictly before other
func (d Day) Before(other Day) bool {
	return d.t.Before(other.t)
}

// After reports whether d is strictly after other
func (d Day) After(other Day) bool {
	return d.t.After(other.t)
}

// Equal reports whether d and other are the same calendar day
func (d Day) Equal(other Day) bool {
	return d.t.Equal(other.t)
}

// Compare returns -1, 0 or +1 depending on whether d is before, equal to or after other
func (d Day) Compare(other Day) int {
	return d.t.Compare(other.t)
}

// String formats the day as YYYY-MM-DD
func (d Day) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(DayLayout)
}

// MarshalText implements encoding.TextMarshaler
func (d Day) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Day) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*d = Day{}
		return nil
	}
	parsed, err := ParseDay(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DaysInRange returns every calendar day in [from, to], both ends inclusive.
// It returns nil when to is before from.
func DaysInRange(from, to Day) []Day {
	if to.Before(from) {
		return nil
	}
	n := from.DaysUntil(to) + 1
	days := make([]Day, 0, n)
	for i := 0; i < n; i++ {
		days = append(days, from.AddDays(i))
	}
	return days
}

// MonthWindow returns the first and last calendar day of the month containing d
func MonthWindow(d Day) (Day, Day) {
	y, m, _ := d.t.Date()
	first := NewDay(y, m, 1)
	return first, NewDay(y, m+1, 1).AddDays(-1)
}
