package event_bus

import "time"

const (
	AuthStateChanged     EventType = "auth.state_changed"
	CalendarEventCreated EventType = "calendar.event_created"
	CalendarEventUpdated EventType = "calendar.event_updated"
	CalendarEventDeleted EventType = "calendar.event_deleted"
)

// CalendarEventChanged is the payload of the calendar.* events.
type CalendarEventChanged struct {
	UID       string
	Title     string
	StartTime time.Time
	EndTime   time.Time
	OwnerUid  string
}
