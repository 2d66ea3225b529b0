package utils

import (
	"sort"
	"sync"
	"time"
)

// Clock abstracts time so token timestamps and delayed actions can be driven from tests.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is the part of *time.Timer callers need.
type Timer interface {
	Stop() bool
}

type SystemClock struct{}

func (s SystemClock) Now() time.Time {
	return time.Now()
}

func (s SystemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// MockClock only moves when told to. Functions scheduled with AfterFunc run
// synchronously from Advance once their deadline is reached.
type MockClock struct {
	mu       sync.Mutex
	FixedNow time.Time
	pending  []*mockTimer
}

type mockTimer struct {
	clock    *MockClock
	deadline time.Time
	f        func()
	stopped  bool
}

func (t *mockTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped {
		return false
	}
	t.stopped = true
	return true
}

func (m *MockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.FixedNow
}

func (m *MockClock) SetNow(now time.Time) {
	m.mu.Lock()
	m.FixedNow = now
	m.mu.Unlock()
	m.fireDue()
}

func (m *MockClock) Advance(d time.Duration) {
	m.mu.Lock()
	m.FixedNow = m.FixedNow.Add(d)
	m.mu.Unlock()
	m.fireDue()
}

func (m *MockClock) AfterFunc(d time.Duration, f func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &mockTimer{clock: m, deadline: m.FixedNow.Add(d), f: f}
	m.pending = append(m.pending, t)
	return t
}

// Pending returns the number of scheduled functions that have neither fired nor been stopped.
func (m *MockClock) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, t := range m.pending {
		if !t.stopped {
			count++
		}
	}
	return count
}

func (m *MockClock) fireDue() {
	m.mu.Lock()
	due := make([]*mockTimer, 0, len(m.pending))
	remaining := m.pending[:0]
	for _, t := range m.pending {
		switch {
		case t.stopped:
		case !t.deadline.After(m.FixedNow):
			t.stopped = true
			due = append(due, t)
		default:
			remaining = append(remaining, t)
		}
	}
	m.pending = remaining
	m.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool {
		return due[i].deadline.Before(due[j].deadline)
	})
	for _, t := range due {
		t.f()
	}
}
