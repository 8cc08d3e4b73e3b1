package transport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/frahmantamala/hrms-portal/internal"
	"github.com/frahmantamala/hrms-portal/internal/core/events"
	"github.com/frahmantamala/hrms-portal/internal/web"
	"github.com/frahmantamala/hrms-portal/pkg/logger"
)

// NoticeStore hands out the notices queued for a session.
type NoticeStore interface {
	PopNotices(ctx context.Context, sessionID string) ([]internal.Notice, error)
}

// BaseHandler provides common functionality for HTTP handlers
type BaseHandler struct {
	Logger   *slog.Logger
	Renderer *web.Renderer
	Bus      events.Bus
	Notices  NoticeStore
}

// NewBaseHandler creates a base handler with logger
func NewBaseHandler(lg *slog.Logger, renderer *web.Renderer, bus events.Bus, notices NoticeStore) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
	}
	return &BaseHandler{Logger: lg, Renderer: renderer, Bus: bus, Notices: notices}
}

// WriteJSON writes a JSON response
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteError writes an error response
func (h *BaseHandler) WriteError(w http.ResponseWriter, status int, message string) {
	h.WriteJSON(w, status, map[string]interface{}{
		"code":    status,
		"message": message,
	})
}

// WriteAppError writes err in the AppError envelope, hiding internal causes.
func (h *BaseHandler) WriteAppError(w http.ResponseWriter, err error) {
	appErr, ok := internal.IsAppError(err)
	if !ok {
		appErr = internal.NewInternalError("internal server error", err)
	}
	if appErr.StatusCode >= http.StatusInternalServerError {
		h.Logger.Error("request failed", "code", appErr.Code, "error", err)
	}
	status, body := appErr.ToHTTPResponse()
	h.WriteJSON(w, status, body)
}

// WantsJSON reports clients that asked for the view model instead of HTML.
func WantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func IsHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// Render answers with the page's view model: JSON when asked for, the HTML
// page otherwise. Queued notices are consumed by the HTML render only.
func (h *BaseHandler) Render(w http.ResponseWriter, r *http.Request, status int, name string, page web.Page) {
	if WantsJSON(r) {
		h.WriteJSON(w, status, page.View)
		return
	}

	user, _ := internal.UserFromContext(r.Context())
	page.User = user
	if user != nil && h.Notices != nil {
		notices, err := h.Notices.PopNotices(r.Context(), user.SessionID)
		if err != nil {
			h.Logger.Warn("Render: failed to load notices", "session_id", user.SessionID, "error", err)
		}
		page.Notices = append(notices, page.Notices...)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.Renderer.Render(w, name, page); err != nil {
		h.Logger.Error("Render: template failed", "page", name, "error", err)
	}
}

func (h *BaseHandler) RenderPartial(w http.ResponseWriter, r *http.Request, name, block string, page web.Page) {
	if WantsJSON(r) {
		h.WriteJSON(w, http.StatusOK, page.View)
		return
	}
	page.User, _ = internal.UserFromContext(r.Context())
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.Renderer.RenderPartial(w, name, block, page); err != nil {
		h.Logger.Error("RenderPartial: template failed", "page", name, "block", block, "error", err)
	}
}

// Notify queues a one-shot message for the signed-in user.
func (h *BaseHandler) Notify(ctx context.Context, level internal.NoticeLevel, message string) {
	user, ok := internal.UserFromContext(ctx)
	if !ok || h.Bus == nil {
		return
	}
	if err := h.Bus.PublishSync(ctx, events.NewNoticeEvent(user.SessionID, string(level), message)); err != nil {
		h.Logger.Warn("Notify: failed to queue notice", "session_id", user.SessionID, "error", err)
	}
}

// Succeed finishes a mutation: a JSON acknowledgement, or a notice and a
// redirect back to the page so it refetches.
func (h *BaseHandler) Succeed(w http.ResponseWriter, r *http.Request, message, redirectTo string) {
	if WantsJSON(r) {
		h.WriteJSON(w, http.StatusOK, map[string]string{"message": message})
		return
	}
	h.Notify(r.Context(), internal.NoticeSuccess, message)
	h.Redirect(w, r, redirectTo)
}

// Fail finishes a failed mutation. The user sees the application or backend
// message when there is one, fallback otherwise.
func (h *BaseHandler) Fail(w http.ResponseWriter, r *http.Request, err error, fallback, redirectTo string) {
	logger.From(r.Context()).Warn("request failed", "path", r.URL.Path, "error", err)

	if WantsJSON(r) {
		h.WriteAppError(w, err)
		return
	}
	if appErr, ok := internal.IsAppError(err); ok && appErr.Code == internal.ErrCodeSessionExpired {
		h.Redirect(w, r, LoginPath(r.URL.Path))
		return
	}
	h.Notify(r.Context(), internal.NoticeError, internal.UserMessage(err, fallback))
	h.Redirect(w, r, redirectTo)
}

// Redirect uses 303 so the browser follows with GET. htmx requests get an
// HX-Redirect header instead.
func (h *BaseHandler) Redirect(w http.ResponseWriter, r *http.Request, to string) {
	if IsHTMX(r) {
		w.Header().Set("HX-Redirect", to)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, to, http.StatusSeeOther)
}

// MustUser returns the signed-in user, answering 401 when there is none.
func (h *BaseHandler) MustUser(w http.ResponseWriter, r *http.Request) (*internal.User, bool) {
	user, ok := internal.UserFromContext(r.Context())
	if !ok {
		if WantsJSON(r) {
			h.WriteAppError(w, internal.ErrSessionExpired)
		} else {
			h.Redirect(w, r, LoginPath(r.URL.RequestURI()))
		}
		return nil, false
	}
	return user, true
}

func LoginPath(next string) string {
	if next == "" || next == "/" {
		return "/login"
	}
	return "/login?next=" + url.QueryEscape(next)
}

// Bind decodes a JSON body into dst, or hands the parsed form to fromForm.
func Bind(r *http.Request, dst interface{}, fromForm func(form url.Values)) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
			return internal.NewValidationError("invalid request body", internal.ErrCodeValidationFailed)
		}
		return nil
	}
	if err := r.ParseForm(); err != nil {
		return internal.NewValidationError("invalid form", internal.ErrCodeValidationFailed)
	}
	fromForm(r.PostForm)
	return nil
}

// ErrorNotices turns per-section fetch failures into inline error notices.
func ErrorNotices(messages []string) []internal.Notice {
	out := make([]internal.Notice, 0, len(messages))
	for _, m := range messages {
		out = append(out, internal.Notice{Level: internal.NoticeError, Message: m})
	}
	return out
}
