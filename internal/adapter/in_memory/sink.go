package in_memory

import (
	"context"
	"sync"

	"github.com/nftmarket/auction-engine/internal/domain"
	"github.com/nftmarket/auction-engine/internal/port"
)

var _ port.EventSink = (*RecordingSink)(nil)

// RecordingSink collects emitted events in order. Tests assert against it.
type RecordingSink struct {
	mu     sync.Mutex
	events []domain.Event
}

func NewRecordingSink() *RecordingSink {
	return &RecordingSink{}
}

func (s *RecordingSink) Emit(ctx context.Context, e domain.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

// Events returns a copy of everything emitted so far.
func (s *RecordingSink) Events() []domain.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Event(nil), s.events...)
}

// Last returns the most recent event of the given type, or nil.
func (s *RecordingSink) Last(t domain.EventType) domain.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.events) - 1; i >= 0; i-- {
		if s.events[i].Type() == t {
			return s.events[i]
		}
	}
	return nil
}
