package grievance

import (
	"context"
	"net/http"
	"net/url"

	"github.com/frahmantamala/hrms-portal/internal"
	"github.com/frahmantamala/hrms-portal/internal/transport"
	"github.com/frahmantamala/hrms-portal/internal/web"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Page(ctx context.Context, user *internal.User, status string) *PageView
	Submit(ctx context.Context, user *internal.User, dto SubmitGrievanceDTO) error
	Resolve(ctx context.Context, user *internal.User, grievanceID string, dto ResolveGrievanceDTO) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{BaseHandler: baseHandler, Service: service}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.GetGrievances)
	r.Post("/", h.SubmitGrievance)
	r.Post("/{id}/resolve", h.ResolveGrievance)
}

func (h *Handler) GetGrievances(w http.ResponseWriter, r *http.Request) {
	user, ok := h.MustUser(w, r)
	if !ok {
		return
	}
	view := h.Service.Page(r.Context(), user, r.URL.Query().Get("status"))
	h.Render(w, r, http.StatusOK, "grievances", web.Page{
		Title:   "Grievances",
		Active:  "grievances",
		View:    view,
		Notices: transport.ErrorNotices(view.Errors),
	})
}

func (h *Handler) SubmitGrievance(w http.ResponseWriter, r *http.Request) {
	user, ok := h.MustUser(w, r)
	if !ok {
		return
	}

	var dto SubmitGrievanceDTO
	if err := transport.Bind(r, &dto, func(f url.Values) {
		dto = SubmitGrievanceDTO{
			Type:        f.Get("type"),
			Category:    f.Get("category"),
			Priority:    f.Get("priority"),
			Title:       f.Get("title"),
			Description: f.Get("description"),
		}
	}); err != nil {
		h.Fail(w, r, err, "Invalid grievance", "/grievances")
		return
	}

	if err := h.Service.Submit(r.Context(), user, dto); err != nil {
		h.Fail(w, r, err, "Failed to submit grievance", "/grievances")
		return
	}
	h.Succeed(w, r, "Grievance submitted", "/grievances")
}

func (h *Handler) ResolveGrievance(w http.ResponseWriter, r *http.Request) {
	user, ok := h.MustUser(w, r)
	if !ok {
		return
	}

	var dto ResolveGrievanceDTO
	if err := transport.Bind(r, &dto, func(f url.Values) {
		dto = ResolveGrievanceDTO{Resolution: f.Get("resolution")}
	}); err != nil {
		h.Fail(w, r, err, "Invalid resolution", "/grievances")
		return
	}

	if err := h.Service.Resolve(r.Context(), user, chi.URLParam(r, "id"), dto); err != nil {
		h.Fail(w, r, err, "Failed to resolve grievance", "/grievances")
		return
	}
	h.Succeed(w, r, "Grievance resolved", "/grievances")
}
