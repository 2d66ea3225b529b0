package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMockClock_AfterFuncFiresOnAdvance(t *testing.T) {
	clock := &MockClock{FixedNow: time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)}
	fired := 0
	clock.AfterFunc(10*time.Millisecond, func() { fired++ })

	clock.Advance(5 * time.Millisecond)
	assert.Equal(t, 0, fired)
	assert.Equal(t, 1, clock.Pending())

	clock.Advance(5 * time.Millisecond)
	assert.Equal(t, 1, fired)
	assert.Equal(t, 0, clock.Pending())

	clock.Advance(time.Hour)
	assert.Equal(t, 1, fired)
}

func TestMockClock_StoppedTimerDoesNotFire(t *testing.T) {
	clock := &MockClock{FixedNow: time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)}
	fired := false
	timer := clock.AfterFunc(time.Second, func() { fired = true })

	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop())
	clock.Advance(time.Minute)

	assert.False(t, fired)
}

func TestMockClock_FiresInDeadlineOrder(t *testing.T) {
	clock := &MockClock{FixedNow: time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)}
	var order []string
	clock.AfterFunc(2*time.Second, func() { order = append(order, "second") })
	clock.AfterFunc(time.Second, func() { order = append(order, "first") })

	clock.Advance(3 * time.Second)

	assert.Equal(t, []string{"first", "second"}, order)
}
