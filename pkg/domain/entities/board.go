package entities

import "fmt"

// Board is an immutable snapshot of every order and every unit/line.
// Mutations build a new Board that shares unchanged records with the old one,
// so a reader holding a snapshot never observes a half-applied change.
type Board struct {
	Orders []Order `json:"orders"`
	Units  []Unit  `json:"units"`
}

// LineRef locates a line inside a board
type LineRef struct {
	UnitID    string
	UnitName  string
	unitIndex int
	lineIndex int
}

// NewBoard assembles a board, rejecting duplicate order, unit or line ids
func NewBoard(orders []Order, units []Unit) (*Board, error) {
	orderIDs := make(map[string]bool, len(orders))
	for _, o := range orders {
		if orderIDs[o.ID] {
			return nil, fmt.Errorf("duplicate order id %s", o.ID)
		}
		orderIDs[o.ID] = true
	}
	unitIDs := make(map[string]bool, len(units))
	lineIDs := make(map[string]bool)
	for _, u := range units {
		if unitIDs[u.ID] {
			return nil, fmt.Errorf("duplicate unit id %s", u.ID)
		}
		unitIDs[u.ID] = true
		for _, l := range u.Lines {
			if lineIDs[l.ID] {
				return nil, fmt.Errorf("duplicate line id %s", l.ID)
			}
			lineIDs[l.ID] = true
		}
	}
	return &Board{
		Orders: append([]Order{}, orders...),
		Units:  append([]Unit{}, units...),
	}, nil
}

// FindOrder returns the order with the given id
func (b *Board) FindOrder(id string) (Order, bool) {
	for _, o := range b.Orders {
		if o.ID == id {
			return o, true
		}
	}
	return Order{}, false
}

// FindLine returns the line with the given id and where it lives
func (b *Board) FindLine(id string) (ProductionLine, LineRef, bool) {
	for ui, u := range b.Units {
		for li, l := range u.Lines {
			if l.ID == id {
				return l, LineRef{UnitID: u.ID, UnitName: u.Name, unitIndex: ui, lineIndex: li}, true
			}
		}
	}
	return ProductionLine{}, LineRef{}, false
}

// FindUnit returns the unit with the given id
func (b *Board) FindUnit(id string) (Unit, bool) {
	for _, u := range b.Units {
		if u.ID == id {
			return u, true
		}
	}
	return Unit{}, false
}

// Lines returns every line on the board in unit order
func (b *Board) Lines() []ProductionLine {
	var lines []ProductionLine
	for _, u := range b.Units {
		lines = append(lines, u.Lines...)
	}
	return lines
}

// AssignmentsForOrder returns every assignment of orderID keyed by line id
func (b *Board) AssignmentsForOrder(orderID string) map[string][]Assignment {
	result := make(map[string][]Assignment)
	for _, u := range b.Units {
		for _, l := range u.Lines {
			for _, a := range l.Assignments {
				if a.OrderID == orderID {
					result[l.ID] = append(result[l.ID], a)
				}
			}
		}
	}
	return result
}

// WithOrder returns a new board with the order of the same id replaced.
// Unknown ids are an error rather than an append.
func (b *Board) WithOrder(o Order) (*Board, error) {
	orders := make([]Order, len(b.Orders))
	copy(orders, b.Orders)
	for i := range orders {
		if orders[i].ID == o.ID {
			orders[i] = o
			return &Board{Orders: orders, Units: b.Units}, nil
		}
	}
	return nil, NewNotFound("order", o.ID)
}

// WithNewOrder returns a new board with o prepended to the order list
func (b *Board) WithNewOrder(o Order) (*Board, error) {
	if _, exists := b.FindOrder(o.ID); exists {
		return nil, fmt.Errorf("duplicate order id %s", o.ID)
	}
	orders := make([]Order, 0, len(b.Orders)+1)
	orders = append(orders, o)
	orders = append(orders, b.Orders...)
	return &Board{Orders: orders, Units: b.Units}, nil
}

// WithLine returns a new board with the line of the same id replaced
func (b *Board) WithLine(l ProductionLine) (*Board, error) {
	_, ref, ok := b.FindLine(l.ID)
	if !ok {
		return nil, NewNotFound("line", l.ID)
	}
	units := make([]Unit, len(b.Units))
	copy(units, b.Units)
	unit := units[ref.unitIndex]
	lines := make([]ProductionLine, len(unit.Lines))
	copy(lines, unit.Lines)
	lines[ref.lineIndex] = l
	unit.Lines = lines
	units[ref.unitIndex] = unit
	return &Board{Orders: b.Orders, Units: units}, nil
}

// Clone returns a deep copy that shares nothing with b
func (b *Board) Clone() *Board {
	orders := append([]Order{}, b.Orders...)
	units := make([]Unit, len(b.Units))
	for i, u := range b.Units {
		lines := make([]ProductionLine, len(u.Lines))
		for j, l := range u.Lines {
			l.Assignments = append([]Assignment{}, l.Assignments...)
			lines[j] = l
		}
		u.Lines = lines
		units[i] = u
	}
	return &Board{Orders: orders, Units: units}
}
