package services

import (
	"math"
	"strconv"

	"github.com/vsinha/lineplan/pkg/domain/entities"
)

// AssignedLoadOnDay sums the apportioned daily rate of every assignment on the
// line that covers day. An assignment whose id equals excludeID is skipped;
// pass "" to count everything.
func AssignedLoadOnDay(line entities.ProductionLine, day entities.Day, excludeID string) float64 {
	var load float64
	for _, a := range line.Assignments {
		if excludeID != "" && a.ID == excludeID {
			continue
		}
		if a.OverlapsDay(day) {
			load += a.DailyRate()
		}
	}
	return load
}

// HeadroomOnDay is the capacity left on day; negative when the line is overbooked
func HeadroomOnDay(line entities.ProductionLine, day entities.Day) float64 {
	return float64(line.DailyCapacity) - AssignedLoadOnDay(line, day, "")
}

// UtilizationOverWindow is total load over total capacity across days.
// A zero-capacity line reports +Inf when it carries load and 0 otherwise;
// an empty window reports 0.
func UtilizationOverWindow(line entities.ProductionLine, days []entities.Day) float64 {
	if len(days) == 0 {
		return 0
	}
	var load float64
	for _, d := range days {
		load += AssignedLoadOnDay(line, d, "")
	}
	capacity := float64(line.DailyCapacity) * float64(len(days))
	if capacity == 0 {
		if load > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return load / capacity
}

// DayLoad is one point of a line's daily usage series
type DayLoad struct {
	Day         entities.Day `json:"day"`
	Load        float64      `json:"load"`
	Capacity    float64      `json:"capacity"`
	Headroom    float64      `json:"headroom"`
	Utilization Ratio        `json:"utilization"`
	Band        LoadBand     `json:"band"`
}

// DailyUsage returns the load series of the line over days
func DailyUsage(line entities.ProductionLine, days []entities.Day) []DayLoad {
	series := make([]DayLoad, 0, len(days))
	capacity := float64(line.DailyCapacity)
	for _, d := range days {
		load := AssignedLoadOnDay(line, d, "")
		util := 0.0
		if capacity > 0 {
			util = load / capacity
		} else if load > 0 {
			util = math.Inf(1)
		}
		series = append(series, DayLoad{
			Day:         d,
			Load:        load,
			Capacity:    capacity,
			Headroom:    capacity - load,
			Utilization: Ratio(util),
			Band:        BandFor(util),
		})
	}
	return series
}

// LoadBand buckets a utilization ratio for display
type LoadBand string

const (
	BandIdle     LoadBand = "idle"
	BandNormal   LoadBand = "normal"
	BandElevated LoadBand = "elevated"
	BandCritical LoadBand = "critical"
)

// BandFor maps utilization to a band: above 0.9 critical, above 0.7 elevated,
// any load normal, otherwise idle.
func BandFor(utilization float64) LoadBand {
	switch {
	case utilization > 0.9:
		return BandCritical
	case utilization > 0.7:
		return BandElevated
	case utilization > 0:
		return BandNormal
	default:
		return BandIdle
	}
}

// UnitLoad summarizes one unit across a window
type UnitLoad struct {
	UnitID      string  `json:"unit_id"`
	UnitName    string  `json:"unit_name"`
	Capacity    float64 `json:"capacity"`
	Assigned    float64 `json:"assigned"`
	Utilization Ratio   `json:"utilization"`
}

// UnitUtilization totals every line of the unit over days
func UnitUtilization(unit entities.Unit, days []entities.Day) UnitLoad {
	result := UnitLoad{UnitID: unit.ID, UnitName: unit.Name}
	for _, line := range unit.Lines {
		result.Capacity += float64(line.DailyCapacity) * float64(len(days))
		for _, d := range days {
			result.Assigned += AssignedLoadOnDay(line, d, "")
		}
	}
	if result.Capacity > 0 {
		result.Utilization = Ratio(result.Assigned / result.Capacity)
	} else if result.Assigned > 0 {
		result.Utilization = Ratio(math.Inf(1))
	}
	return result
}

// Ratio is a utilization value. It encodes to JSON as a number, or null when it
// is infinite (load on a zero-capacity line).
type Ratio float64

// MarshalJSON implements json.Marshaler
func (r Ratio) MarshalJSON() ([]byte, error) {
	f := float64(r)
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(f, 'f', -1, 64)), nil
}
