package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/calendarapp/calendar/internal/event_bus"
	"github.com/calendarapp/calendar/pkg/eventform"
	"github.com/calendarapp/calendar/pkg/user"
	log "github.com/sirupsen/logrus"
)

type Service struct {
	repo     Repository
	eventBus *event_bus.EventBus
}

func NewService(repo Repository, eventBus *event_bus.EventBus) *Service {
	return &Service{
		repo:     repo,
		eventBus: eventBus,
	}
}

// AddEvent stores event owned by the current user. The title and date range
// follow the same rules as the client form.
func (s *Service) AddEvent(ctx context.Context, event Event) (Event, error) {
	currentUser, err := user.CurrentUser(ctx)
	if err != nil {
		return Event{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if err := eventform.Validate(event.formValues()); err != nil {
		return Event{}, err
	}

	stored, err := s.repo.StoreEvent(ctx, ownerOf(currentUser), event)
	if err != nil {
		return Event{}, fmt.Errorf("failed to store event: %w", err)
	}

	s.publish(ctx, event_bus.CalendarEventCreated, stored)
	return stored, nil
}

// GetEvents returns the events of every user overlapping the given period.
func (s *Service) GetEvents(ctx context.Context, from time.Time, to time.Time) ([]Event, error) {
	if to.Before(from) {
		return nil, ErrInvalidRange
	}
	return s.repo.GetEvents(ctx, from, to)
}

// ModifyEvent replaces title, notes and dates of an event owned by the current user.
func (s *Service) ModifyEvent(ctx context.Context, event Event) (Event, error) {
	existing, err := s.ownedEvent(ctx, event.UID)
	if err != nil {
		return Event{}, err
	}
	if err := eventform.Validate(event.formValues()); err != nil {
		return Event{}, err
	}

	event.Owner = existing.Owner
	updated, err := s.repo.UpdateEvent(ctx, event)
	if err != nil {
		return Event{}, fmt.Errorf("failed to update event: %w", err)
	}
	updated.Owner = existing.Owner

	s.publish(ctx, event_bus.CalendarEventUpdated, updated)
	return updated, nil
}

func (s *Service) DeleteEvent(ctx context.Context, eventUid string) error {
	existing, err := s.ownedEvent(ctx, eventUid)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteEvent(ctx, eventUid); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	s.publish(ctx, event_bus.CalendarEventDeleted, existing)
	return nil
}

// ExportICS renders the events of the given period as an iCalendar document.
func (s *Service) ExportICS(ctx context.Context, from time.Time, to time.Time) (string, error) {
	events, err := s.GetEvents(ctx, from, to)
	if err != nil {
		return "", err
	}
	return renderICS(events, time.Now()), nil
}

func (s *Service) ownedEvent(ctx context.Context, eventUid string) (Event, error) {
	currentUser, err := user.CurrentUser(ctx)
	if err != nil {
		return Event{}, fmt.Errorf("failed to get current user: %w", err)
	}
	existing, err := s.repo.GetEvent(ctx, eventUid)
	if err != nil {
		return Event{}, err
	}
	if existing.Owner.Uid != currentUser.Uid {
		log.Debugf("user %s tried to change event %s of user %s", currentUser.Uid, eventUid, existing.Owner.Uid)
		return Event{}, ErrNotOwner
	}
	return existing, nil
}

// publish notifies subscribers after the change is stored. A failing subscriber
// is logged and does not undo the change.
func (s *Service) publish(ctx context.Context, eventType event_bus.EventType, e Event) {
	if s.eventBus == nil {
		return
	}
	err := s.eventBus.Publish(event_bus.NewEvent(ctx, eventType, event_bus.CalendarEventChanged{
		UID:       e.UID,
		Title:     e.Title,
		StartTime: e.StartTime,
		EndTime:   e.EndTime,
		OwnerUid:  e.Owner.Uid,
	}))
	if err != nil {
		log.Errorf("failed to publish %s for event %s: %v", eventType, e.UID, err)
	}
}

func ownerOf(u user.User) Owner {
	return Owner{Id: u.Id, Uid: u.Uid, Name: u.Name}
}
