package calendarapi

import (
	"context"

	"github.com/calendarapp/calendar/pkg/eventform"
)

// EventSaver stores submitted event forms as new backend events.
type EventSaver struct {
	Events EventsAPI
}

func (s EventSaver) SaveEvent(ctx context.Context, values eventform.Values) error {
	_, err := s.Events.CreateEvent(ctx, Event{
		Title:     values.Title,
		Notes:     values.Notes,
		StartTime: values.Start,
		EndTime:   values.End,
	})
	return err
}
