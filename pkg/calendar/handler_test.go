package calendar

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/calendarapp/calendar/internal/event_bus"
	"github.com/calendarapp/calendar/internal/rest"
	"github.com/calendarapp/calendar/pkg/user"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withUser stands in for the token middleware.
func withUser(u user.User, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(user.WithUser(r.Context(), u)))
	})
}

func setupHandlerTest(t *testing.T) *mux.Router {
	handler := NewHandler(NewService(NewRepositoryStub(), event_bus.NewEventBus()))
	r := mux.NewRouter()
	r.HandleFunc("/api/calendar/event", handler.GetEvents).Methods("GET")
	r.HandleFunc("/api/calendar/event", handler.CreateEvent).Methods("POST")
	r.HandleFunc("/api/calendar/event/{eventUid}", handler.UpdateEvent).Methods("PUT")
	r.HandleFunc("/api/calendar/event/{eventUid}", handler.DeleteEvent).Methods("DELETE")
	r.HandleFunc("/api/calendar/export.ics", handler.ExportICS).Methods("GET")
	return r
}

func doRequest(t *testing.T, router http.Handler, as user.User, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	withUser(as, router).ServeHTTP(w, req)
	return w
}

func periodQuery(from, to time.Time) string {
	q := url.Values{}
	q.Set("from", from.Format(time.RFC3339))
	q.Set("to", to.Format(time.RFC3339))
	return q.Encode()
}

func createViaAPI(t *testing.T, router http.Handler, as user.User, dto EventDTO) EventDTO {
	t.Helper()
	w := doRequest(t, router, as, http.MethodPost, "/api/calendar/event", dto)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created EventDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&created))
	return created
}

func decodeErrorResponse(t *testing.T, w *httptest.ResponseRecorder) rest.ErrorResponse {
	t.Helper()
	var resp rest.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func TestGetEvents_InvalidDates(t *testing.T) {
	router := setupHandlerTest(t)

	w := doRequest(t, router, alice, http.MethodGet, "/api/calendar/event?from=invalid-date&to=2023-01-02T15:04:05Z", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeErrorResponse(t, w)
	assert.Equal(t, "Invalid from (date) format", resp.Error)
	assert.Contains(t, resp.Details, "RFC3339")

	w = doRequest(t, router, alice, http.MethodGet, "/api/calendar/event?from=2023-01-01T15:04:05Z&to=invalid-date", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid to (date) format", decodeErrorResponse(t, w).Error)
}

func TestGetEvents_ReversedPeriod(t *testing.T) {
	router := setupHandlerTest(t)

	w := doRequest(t, router, alice, http.MethodGet, "/api/calendar/event?"+periodQuery(start, start.Add(-time.Hour)), nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateAndGetEvents(t *testing.T) {
	router := setupHandlerTest(t)
	created := createViaAPI(t, router, alice, EventDTO{Title: "Standup", Notes: "daily", StartTime: start, EndTime: start.Add(time.Hour)})
	createViaAPI(t, router, bob, EventDTO{Title: "Lunch", StartTime: start.Add(2 * time.Hour), EndTime: start.Add(3 * time.Hour)})

	assert.NotEmpty(t, created.UID)
	assert.Equal(t, &OwnerDTO{Uid: "uid-alice", Name: "Alice"}, created.Owner)

	w := doRequest(t, router, bob, http.MethodGet, "/api/calendar/event?"+periodQuery(start, start.Add(24*time.Hour)), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var events []EventDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&events))
	require.Len(t, events, 2)
	assert.Equal(t, "Standup", events[0].Title)
	assert.Equal(t, "daily", events[0].Notes)
	assert.Equal(t, "Alice", events[0].Owner.Name)
	assert.Equal(t, "Lunch", events[1].Title)
	assert.Equal(t, "Bob", events[1].Owner.Name)
}

func TestGetEvents_EmptyIsArray(t *testing.T) {
	router := setupHandlerTest(t)

	w := doRequest(t, router, alice, http.MethodGet, "/api/calendar/event?"+periodQuery(start, start.Add(time.Hour)), nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestCreateEvent_Validation(t *testing.T) {
	router := setupHandlerTest(t)

	w := doRequest(t, router, alice, http.MethodPost, "/api/calendar/event", EventDTO{Title: "x", StartTime: start, EndTime: start})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid dates", decodeErrorResponse(t, w).Error)

	w = doRequest(t, router, alice, http.MethodPost, "/api/calendar/event", EventDTO{StartTime: start, EndTime: start.Add(time.Hour)})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Title is required", decodeErrorResponse(t, w).Error)

	req := httptest.NewRequest(http.MethodPost, "/api/calendar/event", bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()
	withUser(alice, router).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateEvent(t *testing.T) {
	router := setupHandlerTest(t)
	created := createViaAPI(t, router, alice, EventDTO{Title: "Draft", StartTime: start, EndTime: start.Add(time.Hour)})
	path := "/api/calendar/event/" + created.UID

	t.Run("non owner is forbidden", func(t *testing.T) {
		w := doRequest(t, router, bob, http.MethodPut, path, EventDTO{Title: "Mine", StartTime: start, EndTime: start.Add(time.Hour)})

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("owner updates", func(t *testing.T) {
		w := doRequest(t, router, alice, http.MethodPut, path, EventDTO{Title: "Final", StartTime: start, EndTime: start.Add(2 * time.Hour)})

		require.Equal(t, http.StatusOK, w.Code)
		var updated EventDTO
		require.NoError(t, json.NewDecoder(w.Body).Decode(&updated))
		assert.Equal(t, created.UID, updated.UID)
		assert.Equal(t, "Final", updated.Title)
		assert.True(t, start.Add(2*time.Hour).Equal(updated.EndTime))
	})

	t.Run("unknown event", func(t *testing.T) {
		w := doRequest(t, router, alice, http.MethodPut, "/api/calendar/event/missing", EventDTO{Title: "x", StartTime: start, EndTime: start.Add(time.Hour)})

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestDeleteEvent(t *testing.T) {
	router := setupHandlerTest(t)
	created := createViaAPI(t, router, alice, EventDTO{Title: "Standup", StartTime: start, EndTime: start.Add(time.Hour)})
	path := "/api/calendar/event/" + created.UID

	w := doRequest(t, router, bob, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(t, router, alice, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doRequest(t, router, alice, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExportICS(t *testing.T) {
	router := setupHandlerTest(t)
	createViaAPI(t, router, alice, EventDTO{Title: "Standup", StartTime: start, EndTime: start.Add(time.Hour)})

	w := doRequest(t, router, alice, http.MethodGet, "/api/calendar/export.ics?"+periodQuery(start, start.Add(24*time.Hour)), nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/calendar; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "SUMMARY:Standup")
	assert.Contains(t, w.Body.String(), "BEGIN:VEVENT")
}
