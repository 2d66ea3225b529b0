package app

import (
	"fmt"
	stdlog "log"
	"net/http"

	"github.com/calendarapp/calendar/internal/rest"
	"github.com/calendarapp/calendar/pkg/auth"
	"github.com/etitcombe/logifymw"
	log "github.com/sirupsen/logrus"
)

// wrapServer adds panic recovery, access logging and CORS around the router.
// They wrap the router instead of being mux middlewares so they also apply to
// requests no route matches, like CORS preflights. Route specific middlewares
// (rate limit, token check) are attached in RegisterRoutes.
func wrapServer(h http.Handler) http.Handler {
	accessLog := stdlog.New(log.StandardLogger().WriterLevel(log.DebugLevel), "", 0)
	return recoverPanic(logifymw.LogIt2(accessLog, corsMiddleware(h)))
}

func recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Errorf("panic serving %s %s: %v", r.Method, r.URL.Path, fmt.Sprint(err))
				w.Header().Set("Connection", "close")
				rest.WriteError(w, http.StatusInternalServerError, "Internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// corsMiddleware lets browser clients on other origins call the API with the token header.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+auth.TokenHeader)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
