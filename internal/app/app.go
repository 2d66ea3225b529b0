package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/calendarapp/calendar/internal/config"
	"github.com/calendarapp/calendar/internal/database"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

const shutdownTimeout = 15 * time.Second

// Application wires configuration, database, router, and server lifecycle.
type Application struct {
	cfg  config.Application
	db   *pgxpool.Pool
	deps *Dependencies
	srv  *http.Server
}

// NewApplication constructs the full HTTP application, ready to Run().
func NewApplication(ctx context.Context, configPath string) (*Application, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if cfg.Auth.Secret == "" {
		return nil, errors.New("auth.secret must be configured (CALENDAR_AUTH_SECRET)")
	}

	if err := database.Migrate(cfg.Database); err != nil {
		return nil, err
	}
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	deps := BuildDependencies(db, cfg)

	srv := &http.Server{
		Handler:      NewRouter(deps),
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Application{cfg: cfg, db: db, deps: deps, srv: srv}, nil
}

// NewRouter builds the HTTP handler serving the whole API.
func NewRouter(deps *Dependencies) http.Handler {
	r := mux.NewRouter()
	RegisterRoutes(r, deps)
	return wrapServer(r)
}

// Run starts the HTTP server and blocks until it fails or a termination
// signal has shut it down.
func (a *Application) Run() error {
	defer a.db.Close()

	idleConnsClosed := make(chan struct{})
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		s := <-sigint

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		log.Infof("Shutting down: %v", s)
		if err := a.srv.Shutdown(ctx); err != nil {
			log.Errorf("HTTP server shutdown: %v", err)
		}
		close(idleConnsClosed)
	}()

	log.Infof("Starting server on %s (%s)", a.srv.Addr, a.cfg.Host)
	if err := a.srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-idleConnsClosed
	return nil
}
