package dto

import (
	"github.com/vsinha/lineplan/pkg/domain/entities"
	"github.com/vsinha/lineplan/pkg/domain/services"
)

// AdvisoryNote records what the capacity advisor said about one line of a request.
// Notes are informational; the day-by-day check decides.
type AdvisoryNote struct {
	LineID            string            `json:"line_id"`
	Valid             bool              `json:"valid"`
	SuggestedQuantity entities.Quantity `json:"suggested_quantity,omitempty"`
	Reason            string            `json:"reason,omitempty"`
	Unavailable       bool              `json:"unavailable,omitempty"`
	Applied           bool              `json:"applied,omitempty"`
}

// AssignedLine is one committed piece of an assign request
type AssignedLine struct {
	UnitID     string              `json:"unit_id"`
	LineID     string              `json:"line_id"`
	LineName   string              `json:"line_name"`
	Assignment entities.Assignment `json:"assignment"`
}

// AssignResult is returned by a successful assign
type AssignResult struct {
	Order       entities.Order `json:"order"`
	Assignments []AssignedLine `json:"assignments"`
	Advisories  []AdvisoryNote `json:"advisories,omitempty"`
}

// UnassignResult is returned by unassign and unassign-all
type UnassignResult struct {
	Order    entities.Order        `json:"order"`
	Removed  []entities.Assignment `json:"removed"`
	Released entities.Quantity     `json:"released"`
}

// MoveResult describes the effect of a move on both lines
type MoveResult struct {
	SourceLineID string `json:"source_line_id"`
	TargetLineID string `json:"target_line_id"`
	// Remaining is the reduced source assignment; nil when it was removed
	Remaining *entities.Assignment `json:"remaining,omitempty"`
	// Moved is the target assignment after the move (new or merged)
	Moved  entities.Assignment `json:"moved"`
	Merged bool                `json:"merged"`
	NoOp   bool                `json:"no_op"`
}

// Placement is one auto-planned request that found a slot
type Placement struct {
	OrderID      string            `json:"order_id"`
	OrderNumber  string            `json:"order_number"`
	UnitID       string            `json:"unit_id"`
	LineID       string            `json:"line_id"`
	LineName     string            `json:"line_name"`
	AssignmentID string            `json:"assignment_id"`
	Quantity     entities.Quantity `json:"quantity"`
	StartDate    entities.Day      `json:"start_date"`
	EndDate      entities.Day      `json:"end_date"`
	RequiredDays int               `json:"required_days"`
	DailyRate    float64           `json:"daily_rate"`
}

// PlanFailure is one auto-planned request that could not be placed
type PlanFailure struct {
	OrderID     string            `json:"order_id"`
	OrderNumber string            `json:"order_number,omitempty"`
	Quantity    entities.Quantity `json:"quantity"`
	Reason      string            `json:"reason"`
}

// AutoPlanResult reports every request of an auto-plan run as placed or failed
type AutoPlanResult struct {
	From      entities.Day  `json:"from"`
	To        entities.Day  `json:"to"`
	Placed    []Placement   `json:"placed"`
	Failed    []PlanFailure `json:"failed"`
	Committed bool          `json:"committed"`
}

// LineUtilization is the load picture of one line over a window
type LineUtilization struct {
	UnitID        string                  `json:"unit_id"`
	UnitName      string                  `json:"unit_name"`
	LineID        string                  `json:"line_id"`
	LineName      string                  `json:"line_name"`
	DailyCapacity entities.Capacity       `json:"daily_capacity"`
	Utilization   services.Ratio          `json:"utilization"`
	Days          []services.DayLoad      `json:"days"`
	Tracks        [][]entities.Assignment `json:"tracks"`
}

// UtilizationReport covers every line and unit over a window
type UtilizationReport struct {
	From  entities.Day        `json:"from"`
	To    entities.Day        `json:"to"`
	Lines []LineUtilization   `json:"lines"`
	Units []services.UnitLoad `json:"units"`
}
