package events

import (
	"github.com/vsinha/lineplan/pkg/domain/entities"
)

const (
	OrderCreatedEvent        = "order.created"
	AssignmentCommittedEvent = "assignment.committed"
	AssignmentRemovedEvent   = "assignment.removed"
	AssignmentMovedEvent     = "assignment.moved"
	AutoPlanCompletedEvent   = "autoplan.completed"
	BoardResetEvent          = "board.reset"

	// BoardStream carries events that are not about a single order
	BoardStream = "board"
)

type OrderCreated struct {
	Order entities.Order `json:"order"`
}

type AssignmentCommitted struct {
	UnitID     string              `json:"unit_id"`
	LineID     string              `json:"line_id"`
	Assignment entities.Assignment `json:"assignment"`
}

type AssignmentRemoved struct {
	LineID     string              `json:"line_id"`
	Assignment entities.Assignment `json:"assignment"`
	Reason     string              `json:"reason"`
}

type AssignmentMoved struct {
	SourceLineID string               `json:"source_line_id"`
	TargetLineID string               `json:"target_line_id"`
	Remaining    *entities.Assignment `json:"remaining,omitempty"`
	Moved        entities.Assignment  `json:"moved"`
	Merged       bool                 `json:"merged"`
}

type AutoPlanCompleted struct {
	From      entities.Day `json:"from"`
	To        entities.Day `json:"to"`
	Placed    int          `json:"placed"`
	Failed    int          `json:"failed"`
	Committed bool         `json:"committed"`
}

type BoardReset struct {
	Orders int `json:"orders"`
	Lines  int `json:"lines"`
}

func NewOrderCreatedEvent(order entities.Order) Event {
	return NewEvent(OrderCreatedEvent, order.ID, OrderCreated{Order: order})
}

func NewAssignmentCommittedEvent(unitID, lineID string, a entities.Assignment) Event {
	return NewEvent(AssignmentCommittedEvent, a.OrderID, AssignmentCommitted{
		UnitID:     unitID,
		LineID:     lineID,
		Assignment: a,
	})
}

func NewAssignmentRemovedEvent(lineID string, a entities.Assignment, reason string) Event {
	return NewEvent(AssignmentRemovedEvent, a.OrderID, AssignmentRemoved{
		LineID:     lineID,
		Assignment: a,
		Reason:     reason,
	})
}

func NewAssignmentMovedEvent(payload AssignmentMoved) Event {
	return NewEvent(AssignmentMovedEvent, payload.Moved.OrderID, payload)
}

func NewAutoPlanCompletedEvent(payload AutoPlanCompleted) Event {
	return NewEvent(AutoPlanCompletedEvent, BoardStream, payload)
}

func NewBoardResetEvent(orders, lines int) Event {
	return NewEvent(BoardResetEvent, BoardStream, BoardReset{Orders: orders, Lines: lines})
}
