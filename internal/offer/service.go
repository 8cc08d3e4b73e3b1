package offer

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/frahmantamala/hrms-portal/internal"
	"github.com/frahmantamala/hrms-portal/internal/hrmsapi"
)

type PageView struct {
	ApplicationID string       `json:"applicationId"`
	Action        string       `json:"action"`
	Email         string       `json:"email"`
	Application   *Application `json:"application,omitempty"`
	State         State        `json:"state"`
	Error         string       `json:"error,omitempty"`
}

type Service struct {
	api    hrmsapi.API
	logger *slog.Logger
	now    func() time.Time
}

func NewService(api hrmsapi.API, logger *slog.Logger) *Service {
	return &Service{api: api, logger: logger, now: time.Now}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func applicationPath(id string) string {
	return fmt.Sprintf("/api/recruitment/applications/%s", url.PathEscape(id))
}

func (s *Service) fetch(ctx context.Context, applicationID string) (*Application, error) {
	var app Application
	if err := s.api.Get(ctx, "", applicationPath(applicationID), nil, &app); err != nil {
		return nil, err
	}
	return &app, nil
}

// Load fetches the application behind an offer link.
func (s *Service) Load(ctx context.Context, applicationID, action, email string) (*PageView, error) {
	view := &PageView{ApplicationID: applicationID, Action: action, Email: email}
	if !ValidAction(action) {
		return view, internal.NewNotFoundError("Unknown offer action", internal.ErrCodeInvalidAction)
	}

	app, err := s.fetch(ctx, applicationID)
	if err != nil {
		s.logger.Error("offer fetch failed", "application_id", applicationID, "error", err)
		return view, err
	}
	view.Application = app
	view.State = Evaluate(*app, email, s.now())
	if view.State.EmailMismatch {
		s.logger.Warn("offer link email does not match candidate", "application_id", applicationID)
	}
	return view, nil
}

type acceptRequest struct {
	Email string `json:"email"`
}

type rejectRequest struct {
	Email  string `json:"email"`
	Reason string `json:"reason"`
}

// Respond accepts or rejects the offer. The application is refetched so an
// offer that expired or closed since the page loaded is refused locally.
func (s *Service) Respond(ctx context.Context, applicationID string, dto RespondDTO) error {
	dto.Normalize()
	if appErr := dto.Validate(); appErr != nil {
		return appErr
	}

	app, err := s.fetch(ctx, applicationID)
	if err != nil {
		return err
	}
	state := Evaluate(*app, dto.Email, s.now())
	switch {
	case state.Expired:
		return internal.NewConflictError("This offer has expired", internal.ErrCodeOfferExpired)
	case state.Terminal:
		return internal.NewConflictError(fmt.Sprintf("This offer has already been %s", state.Status), internal.ErrCodeOfferClosed)
	}

	var body interface{} = acceptRequest{Email: dto.Email}
	path := applicationPath(applicationID) + "/accept-offer"
	if dto.Action == ActionReject {
		body = rejectRequest{Email: dto.Email, Reason: dto.Reason}
		path = applicationPath(applicationID) + "/reject-offer"
	}

	if err := s.api.Post(ctx, "", path, body, nil); err != nil {
		s.logger.Error("offer response failed", "application_id", applicationID, "action", dto.Action, "error", err)
		return err
	}
	s.logger.Info("offer response recorded", "application_id", applicationID, "action", dto.Action)
	return nil
}
