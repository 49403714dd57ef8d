package entities

import "fmt"

// ProductionLine is a single line with a daily capacity ceiling.
// Lines are values: the With* methods return modified copies and never
// write into the receiver's assignment slice.
type ProductionLine struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	DailyCapacity Capacity     `json:"daily_capacity"`
	Assignments   []Assignment `json:"assignments"`
}

// NewProductionLine creates a validated, empty ProductionLine
func NewProductionLine(id, name string, dailyCapacity Capacity) (*ProductionLine, error) {
	if id == "" {
		return nil, fmt.Errorf("line id cannot be empty")
	}
	if name == "" {
		return nil, fmt.Errorf("line name cannot be empty")
	}
	if dailyCapacity < 0 {
		return nil, fmt.Errorf("daily capacity cannot be negative, got %d", dailyCapacity)
	}
	return &ProductionLine{
		ID:            id,
		Name:          name,
		DailyCapacity: dailyCapacity,
		Assignments:   []Assignment{},
	}, nil
}

// FindAssignment returns the assignment with the given id
func (l ProductionLine) FindAssignment(id string) (Assignment, bool) {
	for _, a := range l.Assignments {
		if a.ID == id {
			return a, true
		}
	}
	return Assignment{}, false
}

// WithAssignment returns a copy of the line with a appended
func (l ProductionLine) WithAssignment(a Assignment) ProductionLine {
	next := make([]Assignment, 0, len(l.Assignments)+1)
	next = append(next, l.Assignments...)
	l.Assignments = append(next, a)
	return l
}

// WithoutAssignment returns a copy of the line without the assignment id.
// The bool is false when the id is not on the line.
func (l ProductionLine) WithoutAssignment(id string) (ProductionLine, Assignment, bool) {
	next := make([]Assignment, 0, len(l.Assignments))
	var removed Assignment
	found := false
	for _, a := range l.Assignments {
		if a.ID == id && !found {
			removed = a
			found = true
			continue
		}
		next = append(next, a)
	}
	if !found {
		return l, Assignment{}, false
	}
	l.Assignments = next
	return l, removed, true
}

// WithoutOrder returns a copy of the line with every assignment of orderID removed,
// together with the quantity released.
func (l ProductionLine) WithoutOrder(orderID string) (ProductionLine, Quantity) {
	var released Quantity
	next := make([]Assignment, 0, len(l.Assignments))
	for _, a := range l.Assignments {
		if a.OrderID == orderID {
			released += a.Quantity
			continue
		}
		next = append(next, a)
	}
	if released == 0 {
		return l, 0
	}
	l.Assignments = next
	return l, released
}

// WithReplacedAssignment returns a copy of the line where the assignment with
// a.ID is replaced by a. The bool is false when no such assignment exists.
func (l ProductionLine) WithReplacedAssignment(a Assignment) (ProductionLine, bool) {
	next := make([]Assignment, len(l.Assignments))
	copy(next, l.Assignments)
	for i := range next {
		if next[i].ID == a.ID {
			next[i] = a
			l.Assignments = next
			return l, true
		}
	}
	return l, false
}

// Unit groups production lines; it carries no capacity of its own
type Unit struct {
	ID    string           `json:"id"`
	Name  string           `json:"name"`
	Lines []ProductionLine `json:"lines"`
}

// NewUnit creates a validated Unit
func NewUnit(id, name string, lines ...ProductionLine) (*Unit, error) {
	if id == "" {
		return nil, fmt.Errorf("unit id cannot be empty")
	}
	if name == "" {
		return nil, fmt.Errorf("unit name cannot be empty")
	}
	return &Unit{ID: id, Name: name, Lines: append([]ProductionLine{}, lines...)}, nil
}

// TotalCapacity is the sum of the unit's line capacities per day
func (u Unit) TotalCapacity() Capacity {
	var total Capacity
	for _, l := range u.Lines {
		total += l.DailyCapacity
	}
	return total
}
