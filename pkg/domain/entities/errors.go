package entities

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrCapacityExceeded is matched by every *CapacityError
	ErrCapacityExceeded = errors.New("capacity exceeded")
	// ErrNotFound is matched by every *NotFoundError
	ErrNotFound = errors.New("not found")
	// ErrInvalidRange covers non-positive quantities, inverted date ranges and empty windows
	ErrInvalidRange = errors.New("invalid range")
	// ErrInsufficientRemaining is returned when a change would drive an order's remaining quantity below zero
	ErrInsufficientRemaining = errors.New("insufficient remaining quantity")
	// ErrAdvisoryUnavailable is returned by advisors that could not produce an opinion
	ErrAdvisoryUnavailable = errors.New("capacity advisory unavailable")
)

// CapacityError describes the first day on which a proposed load does not fit a line
type CapacityError struct {
	LineID       string
	LineName     string
	Day          Day
	ExistingLoad float64
	Requested    float64
	Capacity     Capacity
}

// Total is the load the day would carry if the change were applied
func (e *CapacityError) Total() float64 {
	return e.ExistingLoad + e.Requested
}

func (e *CapacityError) Error() string {
	name := e.LineName
	if name == "" {
		name = e.LineID
	}
	return fmt.Sprintf(
		"capacity exceeded on %s for %s: existing load %s + requested %s = %s exceeds daily capacity %d",
		name,
		e.Day,
		FormatUnits(e.ExistingLoad),
		FormatUnits(e.Requested),
		FormatUnits(e.Total()),
		e.Capacity,
	)
}

// Is lets errors.Is(err, ErrCapacityExceeded) match
func (e *CapacityError) Is(target error) bool {
	return target == ErrCapacityExceeded
}

// NotFoundError reports a missing order, line, unit or assignment
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// Is lets errors.Is(err, ErrNotFound) match
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFound builds a NotFoundError
func NewNotFound(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// InvalidRangef wraps ErrInvalidRange with a formatted reason
func InvalidRangef(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRange, fmt.Sprintf(format, args...))
}

// FormatUnits renders an apportioned unit count rounded to two decimals,
// without trailing zeros ("250", "83.33").
func FormatUnits(v float64) string {
	return decimal.NewFromFloat(v).Round(2).String()
}
