package events

import (
	"time"

	"github.com/google/uuid"
)

// Event is one entry of the planning audit trail. Position is its index in
// the whole trail and Version counts from 1 within its stream.
type Event struct {
	ID       string    `json:"id"`
	Type     string    `json:"type"`
	Stream   string    `json:"stream"`
	Position int       `json:"position"`
	Version  int       `json:"version"`
	At       time.Time `json:"at"`
	Payload  any       `json:"payload"`
}

// EventStore is an append-only audit trail. Streams are order ids, plus
// BoardStream for board-wide changes.
type EventStore interface {
	// Append stamps position and version onto event and stores it
	Append(event Event) (Event, error)
	ReadStream(streamID string, fromVersion int) ([]Event, error)
	ReadAll(fromPosition int) ([]Event, error)
}

// NewEvent builds an unstamped event
func NewEvent(eventType, streamID string, payload any) Event {
	return Event{
		ID:      uuid.NewString(),
		Type:    eventType,
		Stream:  streamID,
		At:      time.Now().UTC(),
		Payload: payload,
	}
}
