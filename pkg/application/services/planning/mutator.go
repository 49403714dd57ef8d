package planning

import (
	"github.com/vsinha/lineplan/pkg/application/dto"
	"github.com/vsinha/lineplan/pkg/domain/entities"
)

// Mutator applies assignment changes to a board. Every method returns a new
// board and leaves its input untouched; capacity is not checked here.
type Mutator struct {
	newID IDGenerator
}

// NewMutator creates a Mutator; a nil generator falls back to NewAssignmentID
func NewMutator(newID IDGenerator) *Mutator {
	if newID == nil {
		newID = NewAssignmentID
	}
	return &Mutator{newID: newID}
}

// CommitAssignment appends a new assignment of quantity units of orderID to
// lineID over [start, end] and moves the units from remaining to assigned.
func (m *Mutator) CommitAssignment(
	board *entities.Board,
	orderID, lineID string,
	quantity entities.Quantity,
	start, end entities.Day,
) (*entities.Board, entities.Assignment, error) {
	order, ok := board.FindOrder(orderID)
	if !ok {
		return board, entities.Assignment{}, entities.NewNotFound("order", orderID)
	}
	line, _, ok := board.FindLine(lineID)
	if !ok {
		return board, entities.Assignment{}, entities.NewNotFound("line", lineID)
	}

	updated, err := order.WithAssigned(quantity)
	if err != nil {
		return board, entities.Assignment{}, err
	}
	a, err := entities.NewAssignment(m.newID(), order.ID, order.OrderNumber, quantity, start, end, order.Tentative)
	if err != nil {
		return board, entities.Assignment{}, err
	}

	next, err := board.WithLine(line.WithAssignment(*a))
	if err != nil {
		return board, entities.Assignment{}, err
	}
	next, err = next.WithOrder(updated)
	if err != nil {
		return board, entities.Assignment{}, err
	}
	return next, *a, nil
}

// Unassign removes one assignment and returns its units to the order.
// An unknown triple is reported as not found and the board is returned as is.
func (m *Mutator) Unassign(board *entities.Board, orderID, lineID, assignmentID string) (*entities.Board, entities.Assignment, error) {
	line, _, ok := board.FindLine(lineID)
	if !ok {
		return board, entities.Assignment{}, entities.NewNotFound("line", lineID)
	}
	existing, ok := line.FindAssignment(assignmentID)
	if !ok || existing.OrderID != orderID {
		return board, entities.Assignment{}, entities.NewNotFound("assignment", assignmentID)
	}
	order, ok := board.FindOrder(orderID)
	if !ok {
		return board, entities.Assignment{}, entities.NewNotFound("order", orderID)
	}

	line, removed, _ := line.WithoutAssignment(assignmentID)
	updated, err := order.WithAssigned(-removed.Quantity)
	if err != nil {
		return board, entities.Assignment{}, err
	}
	next, err := board.WithLine(line)
	if err != nil {
		return board, entities.Assignment{}, err
	}
	next, err = next.WithOrder(updated)
	if err != nil {
		return board, entities.Assignment{}, err
	}
	return next, removed, nil
}

// UnassignAll removes every assignment of orderID from every line.
// The order ends up with assigned = 0, remaining = total and status Planned.
func (m *Mutator) UnassignAll(board *entities.Board, orderID string) (*entities.Board, []entities.Assignment, error) {
	order, ok := board.FindOrder(orderID)
	if !ok {
		return board, nil, entities.NewNotFound("order", orderID)
	}

	var removed []entities.Assignment
	var released entities.Quantity
	next := board
	for _, line := range board.Lines() {
		for _, a := range line.Assignments {
			if a.OrderID == orderID {
				removed = append(removed, a)
			}
		}
		stripped, qty := line.WithoutOrder(orderID)
		if qty == 0 {
			continue
		}
		released += qty
		var err error
		if next, err = next.WithLine(stripped); err != nil {
			return board, nil, err
		}
	}

	updated, err := order.WithAssigned(-released)
	if err != nil {
		return board, nil, err
	}
	if next, err = next.WithOrder(updated); err != nil {
		return board, nil, err
	}
	return next, removed, nil
}

// MoveRequest relocates quantity units of an assignment to targetLineID
// starting at NewStart; the duration of the original range is kept.
type MoveRequest struct {
	AssignmentID string            `json:"assignment_id"`
	SourceLineID string            `json:"source_line_id"`
	TargetLineID string            `json:"target_line_id"`
	NewStart     entities.Day      `json:"new_start"`
	Quantity     entities.Quantity `json:"quantity"`
}

// MoveAssignment applies a move. A partial move leaves the remainder on the
// source at its original dates. A moved piece that lands on an assignment of the
// same order with identical dates is merged into it. Moving to the same line and
// start date changes nothing. Order quantities are unaffected.
func (m *Mutator) MoveAssignment(board *entities.Board, req MoveRequest) (*entities.Board, *dto.MoveResult, error) {
	source, _, ok := board.FindLine(req.SourceLineID)
	if !ok {
		return board, nil, entities.NewNotFound("line", req.SourceLineID)
	}
	original, ok := source.FindAssignment(req.AssignmentID)
	if !ok {
		return board, nil, entities.NewNotFound("assignment", req.AssignmentID)
	}
	if _, _, ok := board.FindLine(req.TargetLineID); !ok {
		return board, nil, entities.NewNotFound("line", req.TargetLineID)
	}
	if req.Quantity <= 0 || req.Quantity > original.Quantity {
		return board, nil, entities.InvalidRangef("move quantity must be between 1 and %d, got %d", original.Quantity, req.Quantity)
	}
	if req.NewStart.IsZero() {
		return board, nil, entities.InvalidRangef("new start date is required")
	}

	result := &dto.MoveResult{SourceLineID: req.SourceLineID, TargetLineID: req.TargetLineID}
	if req.SourceLineID == req.TargetLineID && req.NewStart.Equal(original.StartDate) {
		result.NoOp = true
		result.Moved = original
		return board, result, nil
	}

	detached, remaining := detach(source, original, req.Quantity)
	next, err := board.WithLine(detached)
	if err != nil {
		return board, nil, err
	}
	result.Remaining = remaining

	target, _, _ := next.FindLine(req.TargetLineID)
	moved := original
	moved.Quantity = req.Quantity
	moved.StartDate = req.NewStart
	moved.EndDate = req.NewStart.AddDays(original.DurationDays() - 1)

	if existing, ok := mergeCandidate(target, moved); ok {
		existing.Quantity += moved.Quantity
		target, _ = target.WithReplacedAssignment(existing)
		result.Moved = existing
		result.Merged = true
	} else {
		moved.ID = m.newID()
		target = target.WithAssignment(moved)
		result.Moved = moved
	}

	if next, err = next.WithLine(target); err != nil {
		return board, nil, err
	}
	return next, result, nil
}

// detach takes quantity units of a off line: the assignment shrinks, or is
// removed when all of it leaves. The reduced assignment is returned if any.
func detach(line entities.ProductionLine, a entities.Assignment, quantity entities.Quantity) (entities.ProductionLine, *entities.Assignment) {
	if quantity >= a.Quantity {
		line, _, _ = line.WithoutAssignment(a.ID)
		return line, nil
	}
	reduced := a
	reduced.Quantity -= quantity
	line, _ = line.WithReplacedAssignment(reduced)
	return line, &reduced
}

func mergeCandidate(line entities.ProductionLine, moved entities.Assignment) (entities.Assignment, bool) {
	for _, a := range line.Assignments {
		if a.SameSlot(moved) {
			return a, true
		}
	}
	return entities.Assignment{}, false
}
