package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/calendarapp/calendar/internal/rest"
	"github.com/calendarapp/calendar/pkg/user"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type handlerFixture struct {
	router *mux.Router
	users  *user.UserServiceImpl
	tokens *TokenManager
}

func setupHandlerTest(t *testing.T) handlerFixture {
	users := user.NewUserService(user.NewStubUserRepository())
	users.SetPasswordCost(bcrypt.MinCost)
	tokens := NewTokenManager("secret", "calendar", 2*time.Hour, newTestClock())
	handler := NewHandler(users, tokens)

	r := mux.NewRouter()
	r.HandleFunc("/api/auth", handler.Login).Methods("POST")
	r.HandleFunc("/api/auth/new", handler.Register).Methods("POST")
	renew := r.PathPrefix("/api/auth/renew").Subrouter()
	renew.Use(RequireToken(tokens, users))
	renew.HandleFunc("", handler.Renew).Methods("GET")

	return handlerFixture{router: r, users: users, tokens: tokens}
}

func (f handlerFixture) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(TokenHeader, token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decodeSession(t *testing.T, w *httptest.ResponseRecorder) AuthResponseDTO {
	t.Helper()
	var resp AuthResponseDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) rest.ErrorResponse {
	t.Helper()
	var resp rest.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func TestRegister_Success(t *testing.T) {
	f := setupHandlerTest(t)

	w := f.do(t, http.MethodPost, "/api/auth/new", RegisterRequestDTO{Name: "Test User 2", Email: "something@google.com", Password: "abcdef"}, "")

	assert.Equal(t, http.StatusCreated, w.Code)
	resp := decodeSession(t, w)
	assert.True(t, resp.Ok)
	assert.Equal(t, "Test User 2", resp.Name)
	assert.NotEmpty(t, resp.Uid)
	claims, err := f.tokens.Validate(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.Uid, claims.Uid)
}

func TestRegister_EmailAlreadyUsed(t *testing.T) {
	f := setupHandlerTest(t)
	body := RegisterRequestDTO{Name: "Test User", Email: "test@google.com", Password: "123456"}
	require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/api/auth/new", body, "").Code)

	w := f.do(t, http.MethodPost, "/api/auth/new", body, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, MsgEmailInUse, decodeError(t, w).Error)
}

func TestRegister_InvalidData(t *testing.T) {
	f := setupHandlerTest(t)

	w := f.do(t, http.MethodPost, "/api/auth/new", RegisterRequestDTO{Name: "X", Email: "x@y.com", Password: "abc"}, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "Invalid user data", resp.Error)
	assert.Contains(t, resp.Details, "password")
}

func TestLogin(t *testing.T) {
	f := setupHandlerTest(t)
	registered := f.do(t, http.MethodPost, "/api/auth/new", RegisterRequestDTO{Name: "Test User", Email: "test@google.com", Password: "123456"}, "")
	require.Equal(t, http.StatusCreated, registered.Code)
	uid := decodeSession(t, registered).Uid

	t.Run("valid credentials", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/auth", LoginRequestDTO{Email: "test@google.com", Password: "123456"}, "")

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decodeSession(t, w)
		assert.Equal(t, AuthResponseDTO{Ok: true, Uid: uid, Name: "Test User", Token: resp.Token}, resp)
		assert.NotEmpty(t, resp.Token)
	})

	t.Run("invalid credentials", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/auth", LoginRequestDTO{Email: "something@google.com", Password: "abc"}, "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, MsgIncorrectCredentials, decodeError(t, w).Error)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/auth", bytes.NewBufferString("{"))
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestRenew(t *testing.T) {
	f := setupHandlerTest(t)
	registered := f.do(t, http.MethodPost, "/api/auth/new", RegisterRequestDTO{Name: "Test User", Email: "test@google.com", Password: "123456"}, "")
	require.Equal(t, http.StatusCreated, registered.Code)
	session := decodeSession(t, registered)

	t.Run("valid token", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/auth/renew", nil, session.Token)

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decodeSession(t, w)
		assert.Equal(t, session.Uid, resp.Uid)
		assert.Equal(t, "Test User", resp.Name)
		assert.NotEmpty(t, resp.Token)
	})

	t.Run("missing token", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/auth/renew", nil, "")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Token required", decodeError(t, w).Error)
	})

	t.Run("invalid token", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/auth/renew", nil, "abc.def.ghi")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Invalid token", decodeError(t, w).Error)
	})

	t.Run("token of unknown user", func(t *testing.T) {
		token, err := f.tokens.Generate(user.User{Uid: "deleted-user", Name: "Gone"})
		require.NoError(t, err)

		w := f.do(t, http.MethodGet, "/api/auth/renew", nil, token)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
