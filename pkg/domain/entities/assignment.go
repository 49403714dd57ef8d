package entities

import "fmt"

// Assignment commits Quantity units of an order to one production line,
// spread uniformly over [StartDate, EndDate] inclusive.
type Assignment struct {
	ID          string   `json:"id"`
	OrderID     string   `json:"order_id"`
	OrderNumber string   `json:"order_number"`
	Quantity    Quantity `json:"quantity"`
	StartDate   Day      `json:"start_date"`
	EndDate     Day      `json:"end_date"`
	Tentative   bool     `json:"tentative"`
}

// NewAssignment creates a validated Assignment
func NewAssignment(id, orderID, orderNumber string, quantity Quantity, start, end Day, tentative bool) (*Assignment, error) {
	if id == "" {
		return nil, fmt.Errorf("assignment id cannot be empty")
	}
	if orderID == "" {
		return nil, fmt.Errorf("order id cannot be empty")
	}
	if err := ValidateRange(quantity, start, end); err != nil {
		return nil, err
	}

	return &Assignment{
		ID:          id,
		OrderID:     orderID,
		OrderNumber: orderNumber,
		Quantity:    quantity,
		StartDate:   start,
		EndDate:     end,
		Tentative:   tentative,
	}, nil
}

// ValidateRange rejects non-positive quantities and missing or inverted date ranges
func ValidateRange(quantity Quantity, start, end Day) error {
	if quantity <= 0 {
		return InvalidRangef("quantity must be positive, got %d", quantity)
	}
	if start.IsZero() || end.IsZero() {
		return InvalidRangef("start and end dates are required")
	}
	if end.Before(start) {
		return InvalidRangef("end date %s is before start date %s", end, start)
	}
	return nil
}

// DurationDays is the inclusive number of days the assignment spans
func (a Assignment) DurationDays() int {
	return DurationDays(a.StartDate, a.EndDate)
}

// DailyRate is the constant number of units the assignment consumes per day
func (a Assignment) DailyRate() float64 {
	return DailyRate(a.Quantity, a.StartDate, a.EndDate)
}

// OverlapsDay reports whether day falls inside the assignment's date range
func (a Assignment) OverlapsDay(day Day) bool {
	return WithinRange(day, a.StartDate, a.EndDate)
}

// Overlaps reports whether the assignment intersects [start, end]
func (a Assignment) Overlaps(start, end Day) bool {
	return IntervalsOverlap(a.StartDate, a.EndDate, start, end)
}

// SameSlot reports whether other belongs to the same order over identical dates
func (a Assignment) SameSlot(other Assignment) bool {
	return a.OrderID == other.OrderID && a.StartDate.Equal(other.StartDate) && a.EndDate.Equal(other.EndDate)
}
