package employee

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
	Page(ctx context.Context, user *internal.User, filter Filter) *PageView
	ApproveProfile(ctx context.Context, user *internal.User, employeeID string, dto hrprofile.DecisionDTO) error
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
	r.Get("/", h.GetEmployees)
	r.Post("/{id}/approve-profile", h.ApproveProfile)
	r.Post("/hr-profiles/{id}", h.DecideHRProfile)
}

// GetEmployees renders the directory. With partial=1 only the results table
// is rendered, which is what the debounced search input swaps in.
func (h *Handler) GetEmployees(w http.ResponseWriter, r *http.Request) {
	user, ok := h.MustUser(w, r)
	if !ok {
		return
	}

	view := h.Service.Page(r.Context(), user, FilterFromQuery(r.URL.Query()))
	page := web.Page{
		Title:   "Employees",
		Active:  "employees",
		View:    view,
		Notices: transport.ErrorNotices(view.Errors),
	}
	if r.URL.Query().Get("partial") == "1" {
		h.RenderPartial(w, r, "employees", "employee_table", page)
		return
	}
	h.Render(w, r, http.StatusOK, "employees", page)
}

func backTo(tab string) string {
	if tab == TabHRProfiles {
		return "/employees?tab=" + TabHRProfiles
	}
	return "/employees"
}

func bindDecision(r *http.Request) (hrprofile.DecisionDTO, error) {
	var dto hrprofile.DecisionDTO
	err := transport.Bind(r, &dto, func(f url.Values) {
		dto = hrprofile.DecisionDTO{Status: f.Get("status"), Comments: f.Get("comments")}
	})
	dto.Normalize()
	return dto, err
}

func (h *Handler) ApproveProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := h.MustUser(w, r)
	if !ok {
		return
	}
	back := backTo(TabEmployees)

	dto, err := bindDecision(r)
	if err != nil {
		h.Fail(w, r, err, "Invalid decision", back)
		return
	}
	if err := h.Service.ApproveProfile(r.Context(), user, chi.URLParam(r, "id"), dto); err != nil {
		h.Fail(w, r, err, "Failed to update profile", back)
		return
	}
	h.Succeed(w, r, "Profile "+dto.Status, back)
}

func (h *Handler) DecideHRProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := h.MustUser(w, r)
	if !ok {
		return
	}
	back := backTo(TabHRProfiles)

	dto, err := bindDecision(r)
	if err != nil {
		h.Fail(w, r, err, "Invalid decision", back)
		return
	}
	if err := h.Service.DecideHRProfile(r.Context(), user, chi.URLParam(r, "id"), dto); err != nil {
		h.Fail(w, r, err, "Failed to update HR profile", back)
		return
	}
	h.Succeed(w, r, "HR profile "+dto.Status, back)
}
