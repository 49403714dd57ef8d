package planning

import (
	"context"
	"fmt"
	"math"

	"github.com/vsinha/lineplan/pkg/domain/entities"
	"github.com/vsinha/lineplan/pkg/domain/services"
)

// AdvisoryRequest is what an advisor gets to see about a proposed placement
type AdvisoryRequest struct {
	OrderID          string            `json:"orderId"`
	UnitID           string            `json:"unitId"`
	LineID           string            `json:"lineId"`
	Quantity         entities.Quantity `json:"quantity"`
	StartDate        entities.Day      `json:"startDate"`
	EndDate          entities.Day      `json:"endDate"`
	ETDDate          entities.Day      `json:"etdDate"`
	DailyCapacity    entities.Capacity `json:"dailyCap"`
	AssignedCapacity float64           `json:"assignedCapacity"`
}

// Opinion is an advisor's verdict. SuggestedQuantity is zero when the advisor
// has nothing to propose.
type Opinion struct {
	IsValid           bool              `json:"isValid"`
	SuggestedQuantity entities.Quantity `json:"suggestedQuantity,omitempty"`
	Reason            string            `json:"reason"`
}

// CapacityAdvisor gives a non-authoritative opinion on a placement. Its answer
// never overrides the day-by-day capacity check.
type CapacityAdvisor interface {
	Evaluate(ctx context.Context, req AdvisoryRequest) (Opinion, error)
}

// NoopAdvisor approves everything
type NoopAdvisor struct{}

// Evaluate implements CapacityAdvisor
func (NoopAdvisor) Evaluate(context.Context, AdvisoryRequest) (Opinion, error) {
	return Opinion{IsValid: true, Reason: "no advisor configured"}, nil
}

// RangeAdvisor answers from the aggregate range figures carried by the request.
// It is the local stand-in when no remote advisor is configured.
type RangeAdvisor struct{}

// Evaluate implements CapacityAdvisor
func (RangeAdvisor) Evaluate(ctx context.Context, req AdvisoryRequest) (Opinion, error) {
	if err := ctx.Err(); err != nil {
		return Opinion{}, fmt.Errorf("%w: %v", entities.ErrAdvisoryUnavailable, err)
	}
	if err := entities.ValidateRange(req.Quantity, req.StartDate, req.EndDate); err != nil {
		return Opinion{IsValid: false, Reason: err.Error()}, nil
	}

	days := entities.DurationDays(req.StartDate, req.EndDate)
	available := math.Max(float64(req.DailyCapacity)*float64(days)-req.AssignedCapacity, 0)
	if float64(req.Quantity) <= available {
		return Opinion{
			IsValid: true,
			Reason:  fmt.Sprintf("%s units available over %d days", entities.FormatUnits(available), days),
		}, nil
	}
	return Opinion{
		IsValid:           false,
		SuggestedQuantity: entities.Quantity(math.Floor(available)),
		Reason: fmt.Sprintf("only %s of %d requested units fit over %d days",
			entities.FormatUnits(available), req.Quantity, days),
	}, nil
}

// NewAdvisoryRequest fills an AdvisoryRequest for quantity units of order on line
func NewAdvisoryRequest(
	order entities.Order,
	unitID string,
	line entities.ProductionLine,
	quantity entities.Quantity,
	start, end entities.Day,
) AdvisoryRequest {
	est := services.AggregateRangeEstimate(line, start, end, "")
	return AdvisoryRequest{
		OrderID:          order.ID,
		UnitID:           unitID,
		LineID:           line.ID,
		Quantity:         quantity,
		StartDate:        start,
		EndDate:          end,
		ETDDate:          order.ETDDate,
		DailyCapacity:    line.DailyCapacity,
		AssignedCapacity: est.Assigned,
	}
}
