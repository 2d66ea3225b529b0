package authstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/calendarapp/calendar/internal/utils"
	"github.com/calendarapp/calendar/pkg/calendarapi"
	"github.com/calendarapp/calendar/pkg/storage"
	log "github.com/sirupsen/logrus"
)

const (
	MsgIncorrectCredentials = "Incorrect credentials"
	// MsgRegisterFailed is shown when a failed registration came without a backend message.
	MsgRegisterFailed = "--"

	DefaultErrorClearDelay = 10 * time.Millisecond
)

type Credentials struct {
	Email    string
	Password string
}

type NewUser struct {
	Name     string
	Email    string
	Password string
}

// Auth drives the Store from backend calls and keeps the session token in storage.
type Auth struct {
	store      *Store
	api        calendarapi.AuthAPI
	storage    storage.Storage
	clock      utils.Clock
	clearDelay time.Duration

	timerMu    sync.Mutex
	clearTimer utils.Timer
}

func NewAuth(store *Store, api calendarapi.AuthAPI, st storage.Storage, clock utils.Clock, clearDelay time.Duration) *Auth {
	if clearDelay <= 0 {
		clearDelay = DefaultErrorClearDelay
	}
	return &Auth{
		store:      store,
		api:        api,
		storage:    st,
		clock:      clock,
		clearDelay: clearDelay,
	}
}

func (a *Auth) State() State {
	return a.store.State()
}

func (a *Auth) Status() Status {
	return a.store.State().Status
}

func (a *Auth) User() User {
	return a.store.State().User
}

func (a *Auth) ErrorMessage() string {
	return a.store.State().ErrorMessage
}

// StartLogin signs in with c. On failure the state carries MsgIncorrectCredentials
// for a short while and nothing is written to storage.
func (a *Auth) StartLogin(ctx context.Context, c Credentials) error {
	a.store.Dispatch(OnChecking())

	resp, err := a.api.Login(ctx, c.Email, c.Password)
	if err == nil {
		err = a.persist(resp)
	}
	if err != nil {
		log.Debugf("login of %s failed: %v", c.Email, err)
		a.failWith(MsgIncorrectCredentials)
		return fmt.Errorf("login failed: %w", err)
	}

	a.store.Dispatch(OnLogin(User{Name: resp.Name, Uid: resp.Uid}))
	return nil
}

// StartRegister creates an account and signs it in. A failure shows the
// backend's message, or MsgRegisterFailed when there is none.
func (a *Auth) StartRegister(ctx context.Context, u NewUser) error {
	a.store.Dispatch(OnChecking())

	resp, err := a.api.Register(ctx, u.Name, u.Email, u.Password)
	if err == nil {
		err = a.persist(resp)
	}
	if err != nil {
		log.Debugf("registration of %s failed: %v", u.Email, err)
		a.failWith(backendMessage(err))
		return fmt.Errorf("registration failed: %w", err)
	}

	a.store.Dispatch(OnLogin(User{Name: resp.Name, Uid: resp.Uid}))
	return nil
}

// CheckAuthToken restores the session from a stored token. Without a token, or
// when the backend refuses to renew it, the session ends without a message.
func (a *Auth) CheckAuthToken(ctx context.Context) error {
	token, ok, err := a.storage.Get(storage.KeyToken)
	if err != nil {
		log.Errorf("failed to read stored token: %v", err)
	}
	if err != nil || !ok || token == "" {
		a.store.Dispatch(OnLogout(""))
		return nil
	}

	resp, err := a.api.Renew(ctx)
	if err == nil {
		err = a.persist(resp)
	}
	if err != nil {
		log.Debugf("token renewal failed: %v", err)
		if clearErr := a.storage.Clear(); clearErr != nil {
			log.Errorf("failed to clear storage: %v", clearErr)
		}
		a.store.Dispatch(OnLogout(""))
		return fmt.Errorf("token renewal failed: %w", err)
	}

	a.store.Dispatch(OnLogin(User{Name: resp.Name, Uid: resp.Uid}))
	return nil
}

// StartLogout forgets the stored session and ends it with errorMessage, which may be empty.
func (a *Auth) StartLogout(errorMessage string) error {
	err := a.storage.Clear()
	if err != nil {
		log.Errorf("failed to clear storage: %v", err)
	}
	a.store.Dispatch(OnLogout(errorMessage))
	return err
}

func (a *Auth) ClearErrorMessage() {
	a.store.Dispatch(ClearErrorMessage())
}

// persist saves the session token. When either key cannot be written the
// storage is cleared so no half-written session survives.
func (a *Auth) persist(resp calendarapi.AuthResponse) error {
	err := storage.SaveToken(a.storage, resp.Token, a.clock.Now())
	if err != nil {
		if clearErr := a.storage.Clear(); clearErr != nil {
			log.Errorf("failed to clear storage: %v", clearErr)
		}
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// failWith ends the session with message and schedules the message to be cleared.
// A newer failure replaces the pending clear.
func (a *Auth) failWith(message string) {
	a.store.Dispatch(OnLogout(message))

	a.timerMu.Lock()
	defer a.timerMu.Unlock()
	if a.clearTimer != nil {
		a.clearTimer.Stop()
	}
	a.clearTimer = a.clock.AfterFunc(a.clearDelay, a.ClearErrorMessage)
}

func backendMessage(err error) string {
	var apiErr *calendarapi.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return MsgRegisterFailed
}
