package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"photoshare/app/logging"
	"photoshare/app/models"
	"photoshare/app/repositories"
)

// UserIDHeader identifies the caller. Authentication happens upstream.
const UserIDHeader = "X-User-ID"

type userKey struct{}

// UserLookup loads the caller's account.
type UserLookup interface {
	GetByID(id int) (*models.User, error)
}

// CurrentUser resolves the X-User-ID header into the request's user.
// A missing header leaves the request anonymous; a malformed or unknown id
// is rejected with 401.
func CurrentUser(users UserLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(UserIDHeader)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			id, err := strconv.Atoi(raw)
			if err != nil || id <= 0 {
				writeError(w, http.StatusUnauthorized, "invalid "+UserIDHeader+" header")
				return
			}
			user, err := users.GetByID(id)
			if errors.Is(err, repositories.ErrNotFound) {
				writeError(w, http.StatusUnauthorized, "unknown user")
				return
			}
			if err != nil {
				logging.Ctx(r.Context()).Error().Err(err).Int("user_id", id).Msg("failed to load current user")
				writeError(w, http.StatusInternalServerError, "internal server error")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// WithUser stores user in ctx.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// UserFromContext returns the current user, or nil for a guest.
func UserFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(userKey{}).(*models.User)
	return user
}
