package entities

import (
	"sort"
	"strings"
)

// OrderFilter narrows an order list the way the planning board's filter panel does.
// Empty fields match everything.
type OrderFilter struct {
	Customers     []string      `json:"customers,omitempty"`
	OrderNumbers  []string      `json:"order_numbers,omitempty"`
	Styles        []string      `json:"styles,omitempty"`
	Statuses      []OrderStatus `json:"statuses,omitempty"`
	ETD           Day           `json:"etd,omitempty"`
	MinQty        Quantity      `json:"min_qty,omitempty"`
	MaxQty        Quantity      `json:"max_qty,omitempty"`
	OrderDateFrom Day           `json:"order_date_from,omitempty"`
	OrderDateTo   Day           `json:"order_date_to,omitempty"`
	Search        string        `json:"search,omitempty"`
}

// Matches reports whether o passes every set criterion
func (f OrderFilter) Matches(o Order) bool {
	if len(f.Customers) > 0 && !containsString(f.Customers, o.Customer) {
		return false
	}
	if len(f.OrderNumbers) > 0 && !containsString(f.OrderNumbers, o.OrderNumber) {
		return false
	}
	if len(f.Styles) > 0 && !containsString(f.Styles, o.Style) {
		return false
	}
	if len(f.Statuses) > 0 && !containsStatus(f.Statuses, o.Status) {
		return false
	}
	if !f.ETD.IsZero() && !f.ETD.Equal(o.ETDDate) {
		return false
	}
	if f.Search != "" && !strings.Contains(strings.ToLower(o.OrderNumber), strings.ToLower(f.Search)) {
		return false
	}
	if f.MinQty > 0 && o.TotalQty < f.MinQty {
		return false
	}
	if f.MaxQty > 0 && o.TotalQty > f.MaxQty {
		return false
	}
	if !f.OrderDateFrom.IsZero() && o.OrderDate.Before(f.OrderDateFrom) {
		return false
	}
	if !f.OrderDateTo.IsZero() && o.OrderDate.After(f.OrderDateTo) {
		return false
	}
	return true
}

// Apply returns the orders that match, preserving input order
func (f OrderFilter) Apply(orders []Order) []Order {
	result := make([]Order, 0, len(orders))
	for _, o := range orders {
		if f.Matches(o) {
			result = append(result, o)
		}
	}
	return result
}

// AvailableByETD keeps orders with remaining quantity, earliest ETD first
func AvailableByETD(orders []Order) []Order {
	result := make([]Order, 0, len(orders))
	for _, o := range orders {
		if o.RemainingQty > 0 {
			result = append(result, o)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].ETDDate.Before(result[j].ETDDate)
	})
	return result
}

func containsString(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func containsStatus(values []OrderStatus, v OrderStatus) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
