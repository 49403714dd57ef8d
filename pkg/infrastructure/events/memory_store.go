package events

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var errUntypedEvent = errors.New("event has no type")

// InMemoryEventStore keeps the trail in one slice and indexes each stream by
// position.
type InMemoryEventStore struct {
	mu      sync.RWMutex
	all     []Event
	streams map[string][]int
	logger  *zap.Logger
}

func NewInMemoryEventStore(logger *zap.Logger) *InMemoryEventStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryEventStore{
		streams: make(map[string][]int),
		logger:  logger,
	}
}

func (s *InMemoryEventStore) Append(event Event) (Event, error) {
	if event.Type == "" {
		return Event{}, errUntypedEvent
	}
	if event.Stream == "" {
		event.Stream = BoardStream
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}

	s.mu.Lock()
	event.Position = len(s.all)
	event.Version = len(s.streams[event.Stream]) + 1
	s.all = append(s.all, event)
	s.streams[event.Stream] = append(s.streams[event.Stream], event.Position)
	s.mu.Unlock()

	s.logger.Debug("event recorded",
		zap.String("type", event.Type),
		zap.String("stream", event.Stream),
		zap.Int("position", event.Position))
	return event, nil
}

// ReadStream returns the events of one stream from version fromVersion on;
// an unknown stream is empty.
func (s *InMemoryEventStore) ReadStream(streamID string, fromVersion int) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if fromVersion < 1 {
		fromVersion = 1
	}
	positions := s.streams[streamID]
	if fromVersion > len(positions) {
		return []Event{}, nil
	}

	out := make([]Event, 0, len(positions)-fromVersion+1)
	for _, p := range positions[fromVersion-1:] {
		out = append(out, s.all[p])
	}
	return out, nil
}

// ReadAll returns the trail from position fromPosition on
func (s *InMemoryEventStore) ReadAll(fromPosition int) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if fromPosition < 0 {
		fromPosition = 0
	}
	if fromPosition >= len(s.all) {
		return []Event{}, nil
	}
	return append([]Event{}, s.all[fromPosition:]...), nil
}
