package services

import (
	"github.com/vsinha/lineplan/pkg/domain/entities"
)

// CapacityEpsilon absorbs floating-point error from rate apportionment.
// A day is over capacity only when its load exceeds capacity by more than this.
const CapacityEpsilon = 0.001

// ValidateAssignment checks that quantity spread over [start, end] fits the
// line on every single day, counting existing assignments except excludeID.
//
// The check is day-by-day on purpose: rates of different assignments overlap
// at different points of a range, so a range-level aggregate can pass while a
// single day is overbooked. The returned error is *entities.CapacityError for
// the first violating day, or an entities.ErrInvalidRange error.
func ValidateAssignment(
	line entities.ProductionLine,
	quantity entities.Quantity,
	start, end entities.Day,
	excludeID string,
) error {
	if err := entities.ValidateRange(quantity, start, end); err != nil {
		return err
	}

	rate := entities.DailyRate(quantity, start, end)
	capacity := float64(line.DailyCapacity)
	for day := start; !day.After(end); day = day.AddDays(1) {
		existing := AssignedLoadOnDay(line, day, excludeID)
		if existing+rate > capacity+CapacityEpsilon {
			return &entities.CapacityError{
				LineID:       line.ID,
				LineName:     line.Name,
				Day:          day,
				ExistingLoad: existing,
				Requested:    rate,
				Capacity:     line.DailyCapacity,
			}
		}
	}
	return nil
}

// RangeEstimate is the coarse range-level view of a line's availability
type RangeEstimate struct {
	Capacity  float64
	Assigned  float64
	Available float64
}

// AggregateRangeEstimate totals capacity and load over [start, end] as a single
// number. It only approximates feasibility; ValidateAssignment is authoritative.
func AggregateRangeEstimate(line entities.ProductionLine, start, end entities.Day, excludeID string) RangeEstimate {
	days := entities.DaysInRange(start, end)
	est := RangeEstimate{Capacity: float64(line.DailyCapacity) * float64(len(days))}
	for _, d := range days {
		est.Assigned += AssignedLoadOnDay(line, d, excludeID)
	}
	est.Available = est.Capacity - est.Assigned
	return est
}
