package app

import (
	"github.com/calendarapp/calendar/internal/event_bus"
	log "github.com/sirupsen/logrus"
)

// subscribeAuditLog logs every calendar change published by the calendar service.
func subscribeAuditLog(bus *event_bus.EventBus) {
	for _, eventType := range []event_bus.EventType{
		event_bus.CalendarEventCreated,
		event_bus.CalendarEventUpdated,
		event_bus.CalendarEventDeleted,
	} {
		event_bus.SubscribeTyped(bus, eventType, func(e event_bus.EventT[event_bus.CalendarEventChanged]) error {
			log.WithFields(log.Fields{
				"event": e.Data.UID,
				"owner": e.Data.OwnerUid,
				"start": e.Data.StartTime,
				"end":   e.Data.EndTime,
			}).Infof("%s: %s", e.Type, e.Data.Title)
			return nil
		})
	}
}
