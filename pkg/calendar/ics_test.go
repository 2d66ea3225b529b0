package calendar

import (
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderICS(t *testing.T) {
	events := []Event{
		{UID: "event-1", Title: "Standup", Notes: "daily sync", StartTime: start, EndTime: start.Add(15 * time.Minute), Owner: Owner{Uid: "uid-alice", Name: "Alice"}},
		{UID: "event-2", Title: "Review", StartTime: start.Add(time.Hour), EndTime: start.Add(2 * time.Hour)},
	}

	body := renderICS(events, start)

	cal, err := ical.ParseCalendar(strings.NewReader(body))
	require.NoError(t, err)
	parsed := cal.Events()
	require.Len(t, parsed, 2)

	first := parsed[0]
	assert.Equal(t, "event-1", first.Id())
	assert.Equal(t, "Standup", first.GetProperty(ical.ComponentPropertySummary).Value)
	assert.Equal(t, "daily sync", first.GetProperty(ical.ComponentPropertyDescription).Value)
	assert.Equal(t, "Alice", first.GetProperty(icsOwner).Value)
	startAt, err := first.GetStartAt()
	require.NoError(t, err)
	assert.True(t, start.Equal(startAt))
	endAt, err := first.GetEndAt()
	require.NoError(t, err)
	assert.True(t, start.Add(15*time.Minute).Equal(endAt))

	assert.Nil(t, parsed[1].GetProperty(ical.ComponentPropertyDescription))
}

func TestRenderICS_Empty(t *testing.T) {
	body := renderICS(nil, start)

	assert.Contains(t, body, "BEGIN:VCALENDAR")
	assert.Contains(t, body, icsProductId)
	assert.NotContains(t, body, "BEGIN:VEVENT")
}
