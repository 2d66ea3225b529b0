package authstore

import (
	"context"
	"sync"

	"github.com/calendarapp/calendar/internal/event_bus"
	log "github.com/sirupsen/logrus"
)

// Store holds the current State and announces every change as an
// auth.state_changed event on its bus.
type Store struct {
	// dispatchMu orders notifications the same way the states were applied.
	// Subscribers must not Dispatch.
	dispatchMu sync.Mutex
	mu         sync.RWMutex
	state      State
	bus        *event_bus.EventBus
}

// NewStore starts from initial. A nil bus gets a private one.
func NewStore(initial State, bus *event_bus.EventBus) *Store {
	if bus == nil {
		bus = event_bus.NewEventBus()
	}
	return &Store{state: initial, bus: bus}
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Dispatch applies action and notifies subscribers with the resulting state.
func (s *Store) Dispatch(action Action) State {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	s.mu.Lock()
	next := action(s.state)
	s.state = next
	s.mu.Unlock()

	if err := s.bus.Publish(event_bus.NewEvent(context.Background(), event_bus.AuthStateChanged, next)); err != nil {
		log.Errorf("failed to notify auth state subscribers: %v", err)
	}
	return next
}

// Subscribe calls fn with every new state until the returned function is called.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	return event_bus.SubscribeTyped(s.bus, event_bus.AuthStateChanged, func(e event_bus.EventT[State]) error {
		fn(e.Data)
		return nil
	})
}
