package offer

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
	Load(ctx context.Context, applicationID, action, email string) (*PageView, error)
	Respond(ctx context.Context, applicationID string, dto RespondDTO) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{BaseHandler: baseHandler, Service: service}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/{applicationID}/{action}", h.GetOffer)
	r.Post("/{applicationID}/{action}", h.RespondOffer)
}

func statusOf(err error) int {
	if appErr, ok := internal.IsAppError(err); ok && appErr.StatusCode != 0 {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}

func (h *Handler) renderOffer(w http.ResponseWriter, r *http.Request, status int, view *PageView) {
	page := web.Page{Title: "Job Offer", View: view}
	if view.Error != "" {
		page.Notices = transport.ErrorNotices([]string{view.Error})
	}
	h.Render(w, r, status, "offer", page)
}

func (h *Handler) GetOffer(w http.ResponseWriter, r *http.Request) {
	view, err := h.Service.Load(r.Context(), chi.URLParam(r, "applicationID"), chi.URLParam(r, "action"), r.URL.Query().Get("email"))
	if err != nil {
		if transport.WantsJSON(r) {
			h.WriteAppError(w, err)
			return
		}
		view.Error = internal.UserMessage(err, "Failed to load the offer")
		h.renderOffer(w, r, statusOf(err), view)
		return
	}
	h.renderOffer(w, r, http.StatusOK, view)
}

// RespondOffer records the decision and sends the browser back to the offer
// page, which then shows the final status.
func (h *Handler) RespondOffer(w http.ResponseWriter, r *http.Request) {
	applicationID := chi.URLParam(r, "applicationID")
	action := chi.URLParam(r, "action")

	var dto RespondDTO
	if err := transport.Bind(r, &dto, func(f url.Values) {
		dto = RespondDTO{Email: f.Get("email"), Reason: f.Get("reason")}
	}); err != nil {
		h.WriteAppError(w, err)
		return
	}
	dto.Action = action
	if dto.Email == "" {
		dto.Email = r.URL.Query().Get("email")
	}

	err := h.Service.Respond(r.Context(), applicationID, dto)
	if transport.WantsJSON(r) {
		if err != nil {
			h.WriteAppError(w, err)
			return
		}
		h.WriteJSON(w, http.StatusOK, map[string]string{"message": "Your response has been recorded"})
		return
	}

	if err != nil {
		view, loadErr := h.Service.Load(r.Context(), applicationID, action, dto.Email)
		if loadErr != nil {
			h.Logger.Warn("offer reload failed", "application_id", applicationID, "error", loadErr)
		}
		view.Error = internal.UserMessage(err, "Failed to record your response")
		h.renderOffer(w, r, statusOf(err), view)
		return
	}
	h.Redirect(w, r, "/offer/"+url.PathEscape(applicationID)+"/"+url.PathEscape(action)+"?email="+url.QueryEscape(dto.Email))
}
