package calendar

import (
	"time"

	"github.com/calendarapp/calendar/pkg/eventform"
)

type Event struct {
	UID       string
	Title     string
	Notes     string
	StartTime time.Time
	EndTime   time.Time
	Owner     Owner
}

// Owner is the user who created the event. Id is the internal database id and never leaves the server.
type Owner struct {
	Id   int
	Uid  string
	Name string
}

func (e Event) formValues() eventform.Values {
	return eventform.Values{
		Title: e.Title,
		Notes: e.Notes,
		Start: e.StartTime,
		End:   e.EndTime,
	}
}
