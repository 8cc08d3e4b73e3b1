package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/frahmantamala/hrms-portal/internal"
	"github.com/frahmantamala/hrms-portal/pkg/logger"
)

// RecoveryMiddleware turns a handler panic into a 500 without leaking the
// panic value to the client.
func RecoveryMiddleware(lg *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					reqLogger := logger.From(r.Context())
					if lg != nil && reqLogger == logger.LoggerWrapper() {
						reqLogger = lg
					}
					reqLogger.Error("panic recovered",
						"error", err,
						"method", r.Method,
						"url", r.URL.String(),
						"stack", string(debug.Stack()))

					if wantsJSON(r) {
						writeAppError(w, internal.NewInternalError("Internal server error", nil))
						return
					}
					http.Error(w, "Something went wrong. Please try again.", http.StatusInternalServerError)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
