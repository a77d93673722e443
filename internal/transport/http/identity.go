package http

import (
	"context"
	"net/http"
	"strings"
)

const (
	userIDHeader = "X-User-ID"
	roleHeader   = "X-User-Role"
	adminRole    = "admin"
)

type identityKey struct{}

type identity struct {
	UserID string
	Admin  bool
}

func identityFrom(ctx context.Context) (identity, bool) {
	id, ok := ctx.Value(identityKey{}).(identity)
	return id, ok
}

func userIDFrom(ctx context.Context) string {
	id, _ := identityFrom(ctx)
	return id.UserID
}

// requireUser rejects requests without a caller id.
func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.Header.Get(userIDHeader))
		if userID == "" {
			failure(w, http.StatusUnauthorized, "missing user identity")
			return
		}
		id := identity{
			UserID: userID,
			Admin:  strings.EqualFold(strings.TrimSpace(r.Header.Get(roleHeader)), adminRole),
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey{}, id)))
	})
}

// requireAdmin must run after requireUser.
func requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := identityFrom(r.Context())
		if !ok {
			failure(w, http.StatusUnauthorized, "missing user identity")
			return
		}
		if !id.Admin {
			failure(w, http.StatusForbidden, "admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
