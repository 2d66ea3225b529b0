package app

import (
	"github.com/calendarapp/calendar/pkg/auth"
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {
	requireToken := auth.RequireToken(deps.Tokens, deps.UserService)

	// Auth
	authRoutes := r.PathPrefix("/api/auth").Subrouter()
	limited := authRoutes.NewRoute().Subrouter()
	limited.Use(deps.RateLimiter.Middleware)
	limited.HandleFunc("", deps.AuthHandler.Login).Methods("POST")
	limited.HandleFunc("/new", deps.AuthHandler.Register).Methods("POST")
	renew := authRoutes.NewRoute().Subrouter()
	renew.Use(requireToken)
	renew.HandleFunc("/renew", deps.AuthHandler.Renew).Methods("GET")

	// Calendar
	cal := r.PathPrefix("/api/calendar").Subrouter()
	cal.Use(requireToken)
	cal.HandleFunc("/event", deps.CalendarHandler.GetEvents).Methods("GET")
	cal.HandleFunc("/event", deps.CalendarHandler.CreateEvent).Methods("POST")
	cal.HandleFunc("/event/{eventUid}", deps.CalendarHandler.UpdateEvent).Methods("PUT")
	cal.HandleFunc("/event/{eventUid}", deps.CalendarHandler.DeleteEvent).Methods("DELETE")
	cal.HandleFunc("/export.ics", deps.CalendarHandler.ExportICS).Methods("GET")
}
