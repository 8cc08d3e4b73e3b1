package leave

import (
	"context"
	"net/http"
	"net/url"

	"github.com/frahmantamala/hrms-portal/internal"
	"github.com/frahmantamala/hrms-portal/internal/hrprofile"
	"github.com/frahmantamala/hrms-portal/internal/transport"
	"github.com/frahmantamala/hrms-portal/internal/web"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Page(ctx context.Context, user *internal.User, rawMode string) *PageView
	Apply(ctx context.Context, user *internal.User, dto ApplyLeaveDTO) error
	Decide(ctx context.Context, user *internal.User, leaveID string, dto hrprofile.DecisionDTO) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.GetLeaves)
	r.Post("/", h.ApplyLeave)
	r.Post("/{id}/approve", h.DecideLeave)
}

func (h *Handler) GetLeaves(w http.ResponseWriter, r *http.Request) {
	user, ok := h.MustUser(w, r)
	if !ok {
		return
	}

	view := h.Service.Page(r.Context(), user, r.URL.Query().Get("view"))
	h.Render(w, r, http.StatusOK, "leaves", web.Page{
		Title:   "Leaves",
		Active:  "leaves",
		View:    view,
		Notices: transport.ErrorNotices(view.Errors),
	})
}

func (h *Handler) ApplyLeave(w http.ResponseWriter, r *http.Request) {
	user, ok := h.MustUser(w, r)
	if !ok {
		return
	}

	var dto ApplyLeaveDTO
	if err := transport.Bind(r, &dto, func(f url.Values) {
		dto = ApplyLeaveDTO{
			LeaveType: f.Get("leaveType"),
			StartDate: f.Get("startDate"),
			EndDate:   f.Get("endDate"),
			Reason:    f.Get("reason"),
		}
	}); err != nil {
		h.Fail(w, r, err, "Invalid leave application", "/leaves")
		return
	}

	if err := h.Service.Apply(r.Context(), user, dto); err != nil {
		h.Fail(w, r, err, "Failed to submit leave application", "/leaves")
		return
	}
	h.Succeed(w, r, "Leave application submitted", "/leaves")
}

func (h *Handler) DecideLeave(w http.ResponseWriter, r *http.Request) {
	user, ok := h.MustUser(w, r)
	if !ok {
		return
	}

	var (
		dto  hrprofile.DecisionDTO
		mode string
	)
	if err := transport.Bind(r, &dto, func(f url.Values) {
		dto = hrprofile.DecisionDTO{Status: f.Get("status"), Comments: f.Get("comments")}
		mode = f.Get("view")
	}); err != nil {
		h.Fail(w, r, err, "Invalid decision", "/leaves")
		return
	}

	back := "/leaves"
	if mode != "" {
		back += "?view=" + url.QueryEscape(mode)
	}

	dto.Normalize()
	leaveID := chi.URLParam(r, "id")
	if err := h.Service.Decide(r.Context(), user, leaveID, dto); err != nil {
		h.Fail(w, r, err, "Failed to update leave", back)
		return
	}
	h.Succeed(w, r, "Leave "+dto.Status, back)
}
