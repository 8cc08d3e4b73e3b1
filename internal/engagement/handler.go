package engagement

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/frahmantamala/hrms-portal/internal"
	"github.com/frahmantamala/hrms-portal/internal/transport"
	"github.com/frahmantamala/hrms-portal/internal/web"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Page(ctx context.Context, user *internal.User) *PageView
	CreateAnnouncement(ctx context.Context, user *internal.User, dto CreateAnnouncementDTO) error
	CreatePoll(ctx context.Context, user *internal.User, dto CreatePollDTO) error
	Vote(ctx context.Context, user *internal.User, pollID string, dto VoteDTO) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{BaseHandler: baseHandler, Service: service}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.GetEngagement)
	r.Post("/announcements", h.CreateAnnouncement)
	r.Post("/polls", h.CreatePoll)
	r.Post("/polls/draft", h.EditPollDraft)
	r.Post("/polls/{id}/vote", h.Vote)
}

func (h *Handler) GetEngagement(w http.ResponseWriter, r *http.Request) {
	user, ok := h.MustUser(w, r)
	if !ok {
		return
	}
	view := h.Service.Page(r.Context(), user)
	h.Render(w, r, http.StatusOK, "engagement", web.Page{
		Title:   "Engagement",
		Active:  "engagement",
		View:    view,
		Notices: transport.ErrorNotices(view.Errors),
	})
}

func (h *Handler) CreateAnnouncement(w http.ResponseWriter, r *http.Request) {
	user, ok := h.MustUser(w, r)
	if !ok {
		return
	}

	var dto CreateAnnouncementDTO
	if err := transport.Bind(r, &dto, func(f url.Values) {
		pinned, _ := strconv.ParseBool(f.Get("isPinned"))
		dto = CreateAnnouncementDTO{
			Title:       f.Get("title"),
			Description: f.Get("description"),
			Visibility:  f.Get("visibility"),
			Department:  f.Get("department"),
			ExpiryDate:  f.Get("expiryDate"),
			IsPinned:    pinned || f.Get("isPinned") == "on",
		}
	}); err != nil {
		h.Fail(w, r, err, "Invalid announcement", "/engagement")
		return
	}

	if err := h.Service.CreateAnnouncement(r.Context(), user, dto); err != nil {
		h.Fail(w, r, err, "Failed to create announcement", "/engagement")
		return
	}
	h.Succeed(w, r, "Announcement published", "/engagement")
}

func pollFromForm(f url.Values) CreatePollDTO {
	return CreatePollDTO{
		Question:   f.Get("question"),
		Options:    f["options"],
		Deadline:   f.Get("deadline"),
		Visibility: f.Get("visibility"),
	}
}

func (h *Handler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	user, ok := h.MustUser(w, r)
	if !ok {
		return
	}

	var dto CreatePollDTO
	if err := transport.Bind(r, &dto, func(f url.Values) { dto = pollFromForm(f) }); err != nil {
		h.Fail(w, r, err, "Invalid poll", "/engagement")
		return
	}

	if err := h.Service.CreatePoll(r.Context(), user, dto); err != nil {
		if appErr, ok := internal.IsAppError(err); ok && appErr.Type == internal.ErrorTypeValidation && !transport.WantsJSON(r) {
			h.renderPollDraft(w, r, user, dto.Draft(), internal.UserMessage(err, "Invalid poll"))
			return
		}
		h.Fail(w, r, err, "Failed to create poll", "/engagement")
		return
	}
	h.Succeed(w, r, "Poll created", "/engagement")
}

// renderPollDraft shows a refused poll again with what the user typed. htmx
// swaps just the form; a plain submit gets the whole page back.
func (h *Handler) renderPollDraft(w http.ResponseWriter, r *http.Request, user *internal.User, draft PollDraft, msg string) {
	if len(draft.Options) == 0 {
		draft.Options = NewPollDraft().Options
	}
	if transport.IsHTMX(r) {
		h.RenderPartial(w, r, "engagement", "poll_form", web.Page{
			View: draftView{Draft: draft, DraftError: msg, Visibilities: Visibilities},
		})
		return
	}

	view := h.Service.Page(r.Context(), user)
	view.Draft = draft
	view.DraftError = msg
	h.Render(w, r, http.StatusUnprocessableEntity, "engagement", web.Page{
		Title:   "Engagement",
		Active:  "engagement",
		View:    view,
		Notices: transport.ErrorNotices(view.Errors),
	})
}

type draftView struct {
	Draft        PollDraft `json:"draft"`
	DraftError   string    `json:"error,omitempty"`
	Visibilities []string  `json:"-"`
}

// EditPollDraft adds or removes an option on the poll form and re-renders
// just the form.
func (h *Handler) EditPollDraft(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.WriteAppError(w, internal.NewValidationError("invalid form", internal.ErrCodeValidationFailed))
		return
	}
	draft := pollFromForm(r.PostForm).Draft()
	if len(draft.Options) == 0 {
		draft.Options = NewPollDraft().Options
	}

	view := draftView{Draft: draft, Visibilities: Visibilities}
	switch strings.ToLower(r.PostForm.Get("action")) {
	case "add":
		view.Draft.AddOption()
	case "remove":
		idx, err := strconv.Atoi(r.PostForm.Get("index"))
		if err != nil {
			idx = -1
		}
		if err := view.Draft.RemoveOption(idx); err != nil {
			view.DraftError = internal.UserMessage(err, "Cannot remove option")
		}
	default:
		h.WriteAppError(w, internal.NewValidationFieldError("action", "action must be add or remove", internal.ErrCodeInvalidAction))
		return
	}

	h.RenderPartial(w, r, "engagement", "poll_form", web.Page{View: view})
}

func (h *Handler) Vote(w http.ResponseWriter, r *http.Request) {
	user, ok := h.MustUser(w, r)
	if !ok {
		return
	}

	var dto VoteDTO
	if err := transport.Bind(r, &dto, func(f url.Values) {
		idx, err := strconv.Atoi(f.Get("optionIndex"))
		if err != nil {
			idx = -1
		}
		dto = VoteDTO{OptionIndex: idx}
	}); err != nil {
		h.Fail(w, r, err, "Invalid vote", "/engagement")
		return
	}

	if err := h.Service.Vote(r.Context(), user, chi.URLParam(r, "id"), dto); err != nil {
		h.Fail(w, r, err, "Failed to record vote", "/engagement")
		return
	}
	h.Succeed(w, r, "Vote recorded", "/engagement")
}
