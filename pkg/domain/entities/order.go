package entities

import (
	"fmt"
	"strings"
)

// OrderStatus is derived from an order's quantities and never set directly
type OrderStatus int

const (
	Planned OrderStatus = iota
	PartiallyAssigned
	FullyAssigned
)

// String method for OrderStatus enum
func (s OrderStatus) String() string {
	switch s {
	case Planned:
		return "Planned"
	case PartiallyAssigned:
		return "Partially Assigned"
	case FullyAssigned:
		return "Fully Assigned"
	default:
		return "Unknown"
	}
}

// ParseOrderStatus accepts the display names returned by String
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "planned":
		return Planned, nil
	case "partially assigned", "partially_assigned", "partial":
		return PartiallyAssigned, nil
	case "fully assigned", "fully_assigned", "full":
		return FullyAssigned, nil
	default:
		return Planned, fmt.Errorf("unknown order status %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler
func (s OrderStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *OrderStatus) UnmarshalText(text []byte) error {
	parsed, err := ParseOrderStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// StatusFor derives the status from total and remaining quantity
func StatusFor(total, remaining Quantity) OrderStatus {
	switch {
	case remaining == total:
		return Planned
	case remaining == 0:
		return FullyAssigned
	default:
		return PartiallyAssigned
	}
}

// Order is a customer order waiting to be placed on production lines.
// Orders are values: every change produces a new Order.
type Order struct {
	ID           string      `json:"id"`
	OrderNumber  string      `json:"order_number"`
	Customer     string      `json:"customer"`
	Style        string      `json:"style"`
	OrderDate    Day         `json:"order_date"`
	ETDDate      Day         `json:"etd_date"`
	TotalQty     Quantity    `json:"total_qty"`
	AssignedQty  Quantity    `json:"assigned_qty"`
	RemainingQty Quantity    `json:"remaining_qty"`
	Status       OrderStatus `json:"status"`
	Tentative    bool        `json:"tentative"`
}

// NewOrder creates a validated, fully unassigned Order
func NewOrder(
	id, orderNumber, customer, style string,
	orderDate, etdDate Day,
	totalQty Quantity,
	tentative bool,
) (*Order, error) {
	if id == "" {
		return nil, fmt.Errorf("order id cannot be empty")
	}
	if orderNumber == "" {
		return nil, fmt.Errorf("order number cannot be empty")
	}
	if totalQty <= 0 {
		return nil, fmt.Errorf("total quantity must be positive, got %d", totalQty)
	}
	if !orderDate.IsZero() && !etdDate.IsZero() && etdDate.Before(orderDate) {
		return nil, fmt.Errorf("etd date %s cannot be before order date %s", etdDate, orderDate)
	}

	return &Order{
		ID:           id,
		OrderNumber:  orderNumber,
		Customer:     customer,
		Style:        style,
		OrderDate:    orderDate,
		ETDDate:      etdDate,
		TotalQty:     totalQty,
		AssignedQty:  0,
		RemainingQty: totalQty,
		Status:       Planned,
		Tentative:    tentative,
	}, nil
}

// WithAssigned returns a copy of the order with delta units moved from
// remaining to assigned (a negative delta releases units back to remaining).
func (o Order) WithAssigned(delta Quantity) (Order, error) {
	assigned := o.AssignedQty + delta
	remaining := o.TotalQty - assigned
	if remaining < 0 {
		return o, fmt.Errorf("%w: order %s has %d remaining, cannot assign %d",
			ErrInsufficientRemaining, o.OrderNumber, o.RemainingQty, delta)
	}
	if assigned < 0 {
		return o, fmt.Errorf("order %s cannot release %d units, only %d assigned",
			o.OrderNumber, -delta, o.AssignedQty)
	}
	o.AssignedQty = assigned
	o.RemainingQty = remaining
	o.Status = StatusFor(o.TotalQty, remaining)
	return o, nil
}

// Balanced reports whether assigned + remaining == total and remaining >= 0
func (o Order) Balanced() bool {
	return o.AssignedQty+o.RemainingQty == o.TotalQty && o.RemainingQty >= 0
}
