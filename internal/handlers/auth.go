package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/jjudge-oj/contacts/internal/logging"
	"github.com/jjudge-oj/contacts/internal/metrics"
	"github.com/jjudge-oj/contacts/internal/services"
	"github.com/jjudge-oj/contacts/types"
)

// Authenticator resolves a bearer token to its user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (types.User, error)
}

// RequireAuth resolves the Authorization header to a user and binds it to
// the request context. Requests without a valid token get 401 and never
// reach next.
func RequireAuth(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := auth.Authenticate(r.Context(), bearerToken(r))
			if err != nil {
				if errors.Is(err, services.ErrUnauthenticated) {
					metrics.RecordAuthentication(metrics.ResultFailure)
					writeError(w, http.StatusUnauthorized, "unauthorized")
					return
				}
				metrics.RecordAuthentication(metrics.ResultError)
				logging.FromContext(r.Context()).WithError(err).Error("authenticate request")
				writeError(w, http.StatusInternalServerError, "internal server error")
				return
			}
			metrics.RecordAuthentication(metrics.ResultSuccess)

			ctx := withUser(r.Context(), user)
			ctx = logging.WithEntry(ctx, logging.FromContext(ctx).WithField("user_id", user.ID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken returns the Authorization header value. The header carries the
// raw token; a "Bearer " scheme prefix is accepted as well.
func bearerToken(r *http.Request) string {
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	const scheme = "bearer"
	if strings.EqualFold(auth, scheme) {
		return ""
	}
	if len(auth) > len(scheme) && strings.EqualFold(auth[:len(scheme)+1], scheme+" ") {
		auth = strings.TrimSpace(auth[len(scheme)+1:])
	}
	return auth
}
