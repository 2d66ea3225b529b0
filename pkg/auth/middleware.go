package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/calendarapp/calendar/internal/rest"
	"github.com/calendarapp/calendar/pkg/user"
	log "github.com/sirupsen/logrus"
)

// TokenHeader carries the session token on every authenticated request.
const TokenHeader = "x-token"

type userLookup interface {
	GetUserByUid(ctx context.Context, uid string) (user.User, error)
}

// RequireToken validates the x-token header and puts the token's user into the request context.
func RequireToken(tokens *TokenManager, users userLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(TokenHeader)
			if raw == "" {
				log.Trace("request without token")
				rest.WriteError(w, http.StatusUnauthorized, "Token required")
				return
			}

			claims, err := tokens.Validate(raw)
			if err != nil {
				log.Debugf("token rejected: %v", err)
				rest.WriteError(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			u, err := users.GetUserByUid(r.Context(), claims.Uid)
			if err != nil {
				if errors.Is(err, user.ErrUserNotFound) {
					rest.WriteError(w, http.StatusUnauthorized, "Invalid token")
					return
				}
				log.Errorf("failed to load token user: %v", err)
				rest.WriteError(w, http.StatusInternalServerError, "Failed to load user")
				return
			}

			log.Tracef("request authenticated as %s", u.Uid)
			next.ServeHTTP(w, r.WithContext(user.WithUser(r.Context(), u)))
		})
	}
}
