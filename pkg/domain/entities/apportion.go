package entities

// DurationDays returns the inclusive number of calendar days in [start, end].
// A single-day range has duration 1.
func DurationDays(start, end Day) int {
	return start.DaysUntil(end) + 1
}

// DailyRate spreads quantity uniformly across the inclusive range [start, end]
func DailyRate(quantity Quantity, start, end Day) float64 {
	days := DurationDays(start, end)
	if days <= 0 {
		return 0
	}
	return float64(quantity) / float64(days)
}

// WithinRange reports whether day lies in [start, end], inclusive on both ends
func WithinRange(day, start, end Day) bool {
	return !day.Before(start) && !day.After(end)
}

// IntervalsOverlap is the inclusive-bounds overlap test for [aStart, aEnd] and [bStart, bEnd]
func IntervalsOverlap(aStart, aEnd, bStart, bEnd Day) bool {
	return !aStart.After(bEnd) && !bStart.After(aEnd)
}
