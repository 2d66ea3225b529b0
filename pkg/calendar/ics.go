package calendar

import (
	"time"

	ical "github.com/arran4/golang-ical"
)

const (
	icsProductId = "-//calendarapp//calendar//EN"
	icsOwner     = ical.ComponentProperty("X-CALENDAR-OWNER")
)

func renderICS(events []Event, stamp time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(icsProductId)

	for _, e := range events {
		ve := cal.AddEvent(e.UID)
		ve.SetDtStampTime(stamp)
		ve.SetStartAt(e.StartTime)
		ve.SetEndAt(e.EndTime)
		ve.SetSummary(e.Title)
		if e.Notes != "" {
			ve.SetDescription(e.Notes)
		}
		if e.Owner.Name != "" {
			ve.SetProperty(icsOwner, e.Owner.Name)
		}
	}
	return cal.Serialize()
}
