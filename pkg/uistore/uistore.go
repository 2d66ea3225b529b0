package uistore

import "sync"

// Store holds client-side visibility flags shared by the calendar views.
type Store struct {
	mu            sync.RWMutex
	dateModalOpen bool
}

func New() *Store {
	return &Store{}
}

func (s *Store) IsDateModalOpen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dateModalOpen
}

func (s *Store) OpenDateModal() {
	s.mu.Lock()
	s.dateModalOpen = true
	s.mu.Unlock()
}

func (s *Store) CloseDateModal() {
	s.mu.Lock()
	s.dateModalOpen = false
	s.mu.Unlock()
}
