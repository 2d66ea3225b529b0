package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/calendarapp/calendar/internal/rest"
	"github.com/calendarapp/calendar/pkg/user"
	log "github.com/sirupsen/logrus"
)

const (
	MsgIncorrectCredentials = "Incorrect credentials"
	MsgEmailInUse           = "Email already in used"
)

type LoginRequestDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequestDTO struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponseDTO struct {
	Ok    bool   `json:"ok"`
	Uid   string `json:"uid"`
	Name  string `json:"name"`
	Token string `json:"token"`
}

type Handler struct {
	users  user.Service
	tokens *TokenManager
}

func NewHandler(users user.Service, tokens *TokenManager) *Handler {
	return &Handler{users: users, tokens: tokens}
}

// Login godoc
// @Summary Log in
// @Description Exchange email and password for a session token
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequestDTO true "Credentials"
// @Success 200 {object} AuthResponseDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request or credentials"
// @Router /api/auth [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	log.Trace("Logging in")

	var req LoginRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format")
		return
	}

	u, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			rest.WriteError(w, http.StatusBadRequest, MsgIncorrectCredentials)
			return
		}
		log.Errorf("failed to authenticate: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, "Failed to authenticate")
		return
	}

	h.writeSession(w, http.StatusOK, u)
}

// Register godoc
// @Summary Register
// @Description Create an account and return a session token
// @Tags Auth
// @Accept json
// @Produce json
// @Param user body RegisterRequestDTO true "New user"
// @Success 201 {object} AuthResponseDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid user data or email already in use"
// @Router /api/auth/new [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	log.Trace("Registering user")

	var req RegisterRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format")
		return
	}

	u, err := h.users.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrEmailTaken):
			rest.WriteError(w, http.StatusBadRequest, MsgEmailInUse)
		case errors.Is(err, user.ErrUserDataInvalid):
			rest.WriteError(w, http.StatusBadRequest, "Invalid user data", err.Error())
		default:
			log.Errorf("failed to register user: %v", err)
			rest.WriteError(w, http.StatusInternalServerError, "Failed to register user")
		}
		return
	}
	log.Debugf("Registered user %s", u.Uid)

	h.writeSession(w, http.StatusCreated, u)
}

// Renew godoc
// @Summary Renew token
// @Description Validate the current token and issue a fresh one
// @Tags Auth
// @Produce json
// @Success 200 {object} AuthResponseDTO
// @Failure 401 {object} rest.ErrorResponse "Missing or invalid token"
// @Router /api/auth/renew [get]
// @Security XToken
func (h *Handler) Renew(w http.ResponseWriter, r *http.Request) {
	log.Trace("Renewing token")

	u, err := user.CurrentUser(r.Context())
	if err != nil {
		rest.WriteError(w, http.StatusUnauthorized, "Token required")
		return
	}
	h.writeSession(w, http.StatusOK, u)
}

func (h *Handler) writeSession(w http.ResponseWriter, status int, u user.User) {
	token, err := h.tokens.Generate(u)
	if err != nil {
		log.Errorf("failed to generate token: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}
	rest.WriteJSON(w, status, AuthResponseDTO{
		Ok:    true,
		Uid:   u.Uid,
		Name:  u.Name,
		Token: token,
	})
}
