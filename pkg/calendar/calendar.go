package calendar

import (
	"context"
	"errors"
	"time"
)

var (
	ErrEventNotFound = errors.New("event not found")
	ErrNotOwner      = errors.New("event belongs to another user")
	ErrInvalidRange  = errors.New("'to' must not be before 'from'")
)

// Calendar is what the HTTP layer needs from the event service.
type Calendar interface {
	AddEvent(ctx context.Context, event Event) (Event, error)
	GetEvents(ctx context.Context, from time.Time, to time.Time) ([]Event, error)
	ModifyEvent(ctx context.Context, event Event) (Event, error)
	DeleteEvent(ctx context.Context, eventUid string) error
	ExportICS(ctx context.Context, from time.Time, to time.Time) (string, error)
}
