package dashboard

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
	Page(ctx context.Context, user *internal.User) *PageView
	DecideHRProfile(ctx context.Context, user *internal.User, profileID string, dto hrprofile.DecisionDTO) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{BaseHandler: baseHandler, Service: service}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.GetDashboard)
	r.Post("/hr-approvals/{id}", h.DecideHRProfile)
}

func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	user, ok := h.MustUser(w, r)
	if !ok {
		return
	}
	view := h.Service.Page(r.Context(), user)
	h.Render(w, r, http.StatusOK, "dashboard", web.Page{
		Title:   "Dashboard",
		Active:  "dashboard",
		View:    view,
		Notices: transport.ErrorNotices(view.Errors),
	})
}

func (h *Handler) DecideHRProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := h.MustUser(w, r)
	if !ok {
		return
	}

	var dto hrprofile.DecisionDTO
	if err := transport.Bind(r, &dto, func(f url.Values) {
		dto = hrprofile.DecisionDTO{Status: f.Get("status"), Comments: f.Get("comments")}
	}); err != nil {
		h.Fail(w, r, err, "Invalid decision", "/dashboard")
		return
	}

	dto.Normalize()
	if err := h.Service.DecideHRProfile(r.Context(), user, chi.URLParam(r, "id"), dto); err != nil {
		h.Fail(w, r, err, "Failed to update profile", "/dashboard")
		return
	}
	h.Succeed(w, r, "Profile "+dto.Status, "/dashboard")
}
