package app

import (
	"github.com/calendarapp/calendar/internal/config"
	"github.com/calendarapp/calendar/internal/event_bus"
	"github.com/calendarapp/calendar/internal/utils"
	"github.com/calendarapp/calendar/pkg/auth"
	"github.com/calendarapp/calendar/pkg/calendar"
	"github.com/calendarapp/calendar/pkg/user"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	Clock    utils.Clock
	EventBus *event_bus.EventBus

	UserRepo    user.Repo
	UserService *user.UserServiceImpl

	Tokens      *auth.TokenManager
	AuthHandler *auth.Handler
	RateLimiter *auth.RateLimiter

	CalendarRepository calendar.Repository
	CalendarService    *calendar.Service
	CalendarHandler    *calendar.Handler
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *pgxpool.Pool, cfg config.Application) *Dependencies {
	return buildDependencies(user.NewUserRepo(db), calendar.NewRepository(db), utils.SystemClock{}, cfg)
}

func buildDependencies(userRepo user.Repo, calendarRepo calendar.Repository, clock utils.Clock, cfg config.Application) *Dependencies {
	deps := &Dependencies{Clock: clock}

	deps.EventBus = event_bus.NewEventBus()
	subscribeAuditLog(deps.EventBus)

	deps.UserRepo = userRepo
	deps.UserService = user.NewUserService(deps.UserRepo)

	deps.Tokens = auth.NewTokenManager(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.TokenTTL, clock)
	deps.AuthHandler = auth.NewHandler(deps.UserService, deps.Tokens)
	deps.RateLimiter = auth.NewRateLimiter(cfg.Auth.RateLimit.PerSecond, cfg.Auth.RateLimit.Burst)

	deps.CalendarRepository = calendarRepo
	deps.CalendarService = calendar.NewService(deps.CalendarRepository, deps.EventBus)
	deps.CalendarHandler = calendar.NewHandler(deps.CalendarService)

	return deps
}
