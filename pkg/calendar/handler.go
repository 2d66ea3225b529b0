package calendar

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/calendarapp/calendar/internal/rest"
	"github.com/calendarapp/calendar/pkg/eventform"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	calendar Calendar
}

type OwnerDTO struct {
	Uid  string `json:"uid"`
	Name string `json:"name"`
}

type EventDTO struct {
	UID       string    `json:"uid"`
	Title     string    `json:"title"`
	Notes     string    `json:"notes"`
	StartTime time.Time `json:"start"`
	EndTime   time.Time `json:"end"`
	Owner     *OwnerDTO `json:"user,omitempty"`
}

func NewHandler(c Calendar) *Handler {
	return &Handler{c}
}

// GetEvents godoc
// @Summary List events
// @Description Events of all users overlapping the given period
// @Tags Calendar
// @Produce json
// @Param from query string true "Start of the period (RFC3339)"
// @Param to query string true "End of the period (RFC3339)"
// @Success 200 {array} EventDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid date format or range"
// @Router /api/calendar/event [get]
// @Security XToken
func (h *Handler) GetEvents(w http.ResponseWriter, r *http.Request) {
	log.Trace("Getting calendar events")
	from, to, ok := parsePeriod(w, r)
	if !ok {
		return
	}

	events, err := h.calendar.GetEvents(r.Context(), from, to)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	dtos := make([]EventDTO, 0, len(events))
	for _, e := range events {
		dtos = append(dtos, eventToDTO(e))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

// CreateEvent godoc
// @Summary Create event
// @Tags Calendar
// @Accept json
// @Produce json
// @Param event body EventDTO true "Event"
// @Success 201 {object} EventDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid dates or missing title"
// @Router /api/calendar/event [post]
// @Security XToken
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	log.Trace("Creating calendar event")
	var eventDTO EventDTO
	if err := json.NewDecoder(r.Body).Decode(&eventDTO); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format")
		return
	}

	created, err := h.calendar.AddEvent(r.Context(), dtoToEvent(eventDTO))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, eventToDTO(created))
}

// UpdateEvent godoc
// @Summary Update event
// @Description Only the owner of an event can change it
// @Tags Calendar
// @Accept json
// @Produce json
// @Param eventUid path string true "Event UID"
// @Param event body EventDTO true "Event"
// @Success 200 {object} EventDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid dates or missing title"
// @Failure 403 {object} rest.ErrorResponse "Event belongs to another user"
// @Failure 404 {object} rest.ErrorResponse "Event not found"
// @Router /api/calendar/event/{eventUid} [put]
// @Security XToken
func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventUid := mux.Vars(r)["eventUid"]
	log.Tracef("Updating calendar event %s", eventUid)

	var eventDTO EventDTO
	if err := json.NewDecoder(r.Body).Decode(&eventDTO); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format")
		return
	}
	event := dtoToEvent(eventDTO)
	event.UID = eventUid

	updated, err := h.calendar.ModifyEvent(r.Context(), event)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, eventToDTO(updated))
}

// DeleteEvent godoc
// @Summary Delete event
// @Tags Calendar
// @Param eventUid path string true "Event UID"
// @Success 204
// @Failure 403 {object} rest.ErrorResponse "Event belongs to another user"
// @Failure 404 {object} rest.ErrorResponse "Event not found"
// @Router /api/calendar/event/{eventUid} [delete]
// @Security XToken
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventUid := mux.Vars(r)["eventUid"]
	log.Tracef("Deleting calendar event %s", eventUid)

	if err := h.calendar.DeleteEvent(r.Context(), eventUid); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExportICS godoc
// @Summary Export events
// @Description Events of the given period as an iCalendar file
// @Tags Calendar
// @Produce text/calendar
// @Param from query string true "Start of the period (RFC3339)"
// @Param to query string true "End of the period (RFC3339)"
// @Success 200 {string} string
// @Router /api/calendar/export.ics [get]
// @Security XToken
func (h *Handler) ExportICS(w http.ResponseWriter, r *http.Request) {
	log.Trace("Exporting calendar events")
	from, to, ok := parsePeriod(w, r)
	if !ok {
		return
	}

	body, err := h.calendar.ExportICS(r.Context(), from, to)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="calendar.ics"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(body)); err != nil {
		log.Errorf("failed to write calendar export: %v", err)
	}
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, eventform.ErrInvalidDates):
		rest.WriteError(w, http.StatusBadRequest, "Invalid dates", "end must be after start")
	case errors.Is(err, eventform.ErrTitleRequired):
		rest.WriteError(w, http.StatusBadRequest, "Title is required")
	case errors.Is(err, ErrInvalidRange):
		rest.WriteError(w, http.StatusBadRequest, "Invalid period", err.Error())
	case errors.Is(err, ErrNotOwner):
		rest.WriteError(w, http.StatusForbidden, "Event belongs to another user")
	case errors.Is(err, ErrEventNotFound):
		rest.WriteError(w, http.StatusNotFound, "Event not found")
	default:
		log.Errorf("calendar request failed: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func parsePeriod(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	from, err := time.Parse(time.RFC3339, r.URL.Query().Get("from"))
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid from (date) format", "'from' must be in RFC3339 format")
		return time.Time{}, time.Time{}, false
	}
	to, err := time.Parse(time.RFC3339, r.URL.Query().Get("to"))
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid to (date) format", "'to' must be in RFC3339 format")
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

func eventToDTO(e Event) EventDTO {
	dto := EventDTO{
		UID:       e.UID,
		Title:     e.Title,
		Notes:     e.Notes,
		StartTime: e.StartTime,
		EndTime:   e.EndTime,
	}
	if e.Owner.Uid != "" {
		dto.Owner = &OwnerDTO{Uid: e.Owner.Uid, Name: e.Owner.Name}
	}
	return dto
}

func dtoToEvent(e EventDTO) Event {
	return Event{
		UID:       e.UID,
		Title:     e.Title,
		Notes:     e.Notes,
		StartTime: e.StartTime,
		EndTime:   e.EndTime,
	}
}
