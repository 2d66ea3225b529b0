package calendar

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

type RepositoryStub struct {
	mu     sync.RWMutex
	items  map[string]Event // uid -> event
	nextId int
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{
		items:  make(map[string]Event),
		nextId: 1,
	}
}

func (r *RepositoryStub) StoreEvent(ctx context.Context, owner Owner, event Event) (Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	event.UID = fmt.Sprintf("event-%d", r.nextId)
	event.Owner = owner
	r.items[event.UID] = event
	r.nextId++
	return event, nil
}

func (r *RepositoryStub) GetEvent(ctx context.Context, eventUid string) (Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	event, ok := r.items[eventUid]
	if !ok {
		return Event{}, ErrEventNotFound
	}
	return event, nil
}

func (r *RepositoryStub) GetEvents(ctx context.Context, from, to time.Time) ([]Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Event, 0, len(r.items))
	for _, event := range r.items {
		if event.StartTime.Before(to) && event.EndTime.After(from) {
			result = append(result, event)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].StartTime.Equal(result[j].StartTime) {
			return result[i].UID < result[j].UID
		}
		return result[i].StartTime.Before(result[j].StartTime)
	})
	return result, nil
}

func (r *RepositoryStub) UpdateEvent(ctx context.Context, event Event) (Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.items[event.UID]
	if !ok {
		return Event{}, ErrEventNotFound
	}
	event.Owner = existing.Owner
	r.items[event.UID] = event
	return event, nil
}

func (r *RepositoryStub) DeleteEvent(ctx context.Context, eventUid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[eventUid]; !ok {
		return ErrEventNotFound
	}
	delete(r.items, eventUid)
	return nil
}

// GetAllEvents is a test helper returning every stored event regardless of range.
func (r *RepositoryStub) GetAllEvents() []Event {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Event, 0, len(r.items))
	for _, event := range r.items {
		result = append(result, event)
	}
	return result
}
