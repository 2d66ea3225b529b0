package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	StoreEvent(ctx context.Context, owner Owner, event Event) (Event, error)
	GetEvent(ctx context.Context, eventUid string) (Event, error)
	GetEvents(ctx context.Context, from, to time.Time) ([]Event, error)
	UpdateEvent(ctx context.Context, event Event) (Event, error)
	DeleteEvent(ctx context.Context, eventUid string) error
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

const selectEvent = `SELECT e.uid, e.title, e.notes, e.start_time, e.end_time, u.id, u.uid, u.name
	FROM calendar_event e
	JOIN users u ON u.id = e.user_id`

func (r *RepositoryImpl) StoreEvent(ctx context.Context, owner Owner, event Event) (Event, error) {
	query := `INSERT INTO calendar_event (uid, title, notes, start_time, end_time, user_id)
		VALUES ($1, $2, $3, $4, $5, $6)`

	event.UID = uuid.NewString()
	event.Owner = owner
	_, err := r.db.Exec(ctx, query, event.UID, event.Title, event.Notes, event.StartTime, event.EndTime, owner.Id)
	if err != nil {
		err := fmt.Errorf("could not store event: %w", err)
		log.Error(err)
		return Event{}, err
	}
	return event, nil
}

func (r *RepositoryImpl) GetEvent(ctx context.Context, eventUid string) (Event, error) {
	if uuid.Validate(eventUid) != nil {
		return Event{}, ErrEventNotFound
	}
	event, err := scanEvent(r.db.QueryRow(ctx, selectEvent+` WHERE e.uid = $1`, eventUid))
	if errors.Is(err, pgx.ErrNoRows) {
		return Event{}, ErrEventNotFound
	} else if err != nil {
		err := fmt.Errorf("could not get event: %w", err)
		log.Error(err)
		return Event{}, err
	}
	return event, nil
}

// GetEvents returns the events of all users overlapping [from, to), ordered by start time.
func (r *RepositoryImpl) GetEvents(ctx context.Context, from, to time.Time) ([]Event, error) {
	query := selectEvent + ` WHERE e.start_time < $1 AND e.end_time > $2 ORDER BY e.start_time, e.uid`

	rows, err := r.db.Query(ctx, query, to, from)
	if err != nil {
		err := fmt.Errorf("could not query calendar events: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	events := make([]Event, 0, 10)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			err := fmt.Errorf("could not scan row: %w", err)
			log.Error(err)
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not read calendar events: %w", err)
	}
	return events, nil
}

func (r *RepositoryImpl) UpdateEvent(ctx context.Context, event Event) (Event, error) {
	if uuid.Validate(event.UID) != nil {
		return Event{}, ErrEventNotFound
	}
	query := `UPDATE calendar_event SET title = $1, notes = $2, start_time = $3, end_time = $4 WHERE uid = $5`
	tag, err := r.db.Exec(ctx, query, event.Title, event.Notes, event.StartTime, event.EndTime, event.UID)
	if err != nil {
		err := fmt.Errorf("could not update event: %w", err)
		log.Error(err)
		return Event{}, err
	}
	if tag.RowsAffected() == 0 {
		return Event{}, ErrEventNotFound
	}
	return event, nil
}

func (r *RepositoryImpl) DeleteEvent(ctx context.Context, eventUid string) error {
	if uuid.Validate(eventUid) != nil {
		return ErrEventNotFound
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM calendar_event WHERE uid = $1`, eventUid)
	if err != nil {
		err := fmt.Errorf("could not delete event: %w", err)
		log.Error(err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEventNotFound
	}
	return nil
}

func scanEvent(row pgx.Row) (Event, error) {
	var e Event
	err := row.Scan(&e.UID, &e.Title, &e.Notes, &e.StartTime, &e.EndTime, &e.Owner.Id, &e.Owner.Uid, &e.Owner.Name)
	return e, err
}
