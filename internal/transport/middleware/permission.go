package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/frahmantamala/hrms-portal/internal"
	"github.com/frahmantamala/hrms-portal/pkg/logger"
)

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func writeAppError(w http.ResponseWriter, appErr *internal.AppError) {
	status, body := appErr.ToHTTPResponse()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// RequireRoles lets the request through only for users holding one of roles.
// It must run after the session middleware.
func RequireRoles(roles ...internal.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := internal.UserFromContext(r.Context())
			if !ok {
				writeAppError(w, internal.ErrSessionExpired)
				return
			}

			if !user.HasRole(roles...) {
				logger.From(r.Context()).Warn("access denied: role not allowed",
					"user_id", user.ID,
					"role", user.Role,
					"required_roles", roles)
				if wantsJSON(r) {
					writeAppError(w, internal.ErrNotPermitted)
					return
				}
				http.Error(w, internal.ErrNotPermitted.Message, http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
