package engagement

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/frahmantamala/hrms-portal/internal"
	"github.com/frahmantamala/hrms-portal/internal/auth"
	"github.com/frahmantamala/hrms-portal/internal/core/datamodel/employee"
	model "github.com/frahmantamala/hrms-portal/internal/core/datamodel/engagement"
	"github.com/frahmantamala/hrms-portal/internal/hrmsapi"
	"golang.org/x/sync/errgroup"
)

type PageView struct {
	Announcements []model.Announcement `json:"announcements"`
	Polls         []PollView           `json:"polls"`
	CanManage     bool                 `json:"canManage"`
	Draft         PollDraft            `json:"draft"`
	DraftError    string               `json:"-"`
	Errors        []string             `json:"errors,omitempty"`
	Visibilities  []string             `json:"-"`
	Departments   []string             `json:"-"`
}

type Service struct {
	api         hrmsapi.API
	permissions auth.PermissionChecker
	logger      *slog.Logger
	now         func() time.Time
}

func NewService(api hrmsapi.API, permissions auth.PermissionChecker, logger *slog.Logger) *Service {
	return &Service{api: api, permissions: permissions, logger: logger, now: time.Now}
}

// WithClock replaces the clock used for expiry checks.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Announcements returns the announcements still visible, pinned first.
func (s *Service) Announcements(ctx context.Context, user *internal.User) ([]model.Announcement, error) {
	var list hrmsapi.List[model.Announcement]
	if err := s.api.Get(ctx, user.Token, "/api/engagement/announcements", nil, &list); err != nil {
		return nil, err
	}
	return Visible(list, s.now()), nil
}

func (s *Service) polls(ctx context.Context, user *internal.User) ([]model.Poll, error) {
	var list hrmsapi.List[model.Poll]
	if err := s.api.Get(ctx, user.Token, "/api/engagement/polls", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Page fetches announcements and polls together. Either failing leaves both
// sections empty.
func (s *Service) Page(ctx context.Context, user *internal.User) *PageView {
	view := &PageView{
		Announcements: []model.Announcement{},
		Polls:         []PollView{},
		CanManage:     s.permissions.CanManageEngagement(user),
		Draft:         NewPollDraft(),
		Visibilities:  Visibilities,
		Departments:   employee.Departments,
	}

	var (
		announcements []model.Announcement
		polls         []model.Poll
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		announcements, err = s.Announcements(gctx, user)
		return err
	})
	g.Go(func() error {
		var err error
		polls, err = s.polls(gctx, user)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("engagement fetch failed", "user_id", user.ID, "error", err)
		view.Errors = append(view.Errors, internal.UserMessage(err, "Failed to load engagement data"))
		return view
	}

	view.Announcements = announcements
	now := s.now()
	for _, p := range polls {
		view.Polls = append(view.Polls, NewPollView(p, user.ID, now))
	}
	return view
}

func (s *Service) CreateAnnouncement(ctx context.Context, user *internal.User, dto CreateAnnouncementDTO) error {
	if !s.permissions.CanManageEngagement(user) {
		return internal.ErrNotPermitted
	}
	dto.Normalize()
	req, appErr := dto.Validate()
	if appErr != nil {
		return appErr
	}
	if err := s.api.Post(ctx, user.Token, "/api/engagement/announcements", req, nil); err != nil {
		s.logger.Error("announcement creation failed", "user_id", user.ID, "error", err)
		return err
	}
	s.logger.Info("announcement created", "user_id", user.ID, "pinned", req.IsPinned)
	return nil
}

func (s *Service) CreatePoll(ctx context.Context, user *internal.User, dto CreatePollDTO) error {
	if !s.permissions.CanManageEngagement(user) {
		return internal.ErrNotPermitted
	}
	req, appErr := dto.Validate()
	if appErr != nil {
		return appErr
	}
	if err := s.api.Post(ctx, user.Token, "/api/engagement/polls", req, nil); err != nil {
		s.logger.Error("poll creation failed", "user_id", user.ID, "error", err)
		return err
	}
	s.logger.Info("poll created", "user_id", user.ID, "options", len(req.Options))
	return nil
}

// Vote casts the user's single vote. The poll is refetched first so voted
// and expired polls are refused without a mutation.
func (s *Service) Vote(ctx context.Context, user *internal.User, pollID string, dto VoteDTO) error {
	polls, err := s.polls(ctx, user)
	if err != nil {
		return err
	}

	var found *PollView
	for _, p := range polls {
		if p.ID == pollID {
			v := NewPollView(p, user.ID, s.now())
			found = &v
			break
		}
	}
	switch {
	case found == nil:
		return internal.NewNotFoundError("Poll not found", internal.ErrCodeInvalidOption)
	case found.HasVoted:
		return internal.NewConflictError("You have already voted on this poll", internal.ErrCodeInvalidAction)
	case found.Expired:
		return internal.NewConflictError("This poll has closed", internal.ErrCodeInvalidAction)
	case dto.OptionIndex < 0 || dto.OptionIndex >= len(found.Options):
		return internal.NewValidationFieldError("optionIndex", "Unknown poll option", internal.ErrCodeInvalidOption)
	}

	path := fmt.Sprintf("/api/engagement/polls/%s/vote", url.PathEscape(pollID))
	if err := s.api.Post(ctx, user.Token, path, dto, nil); err != nil {
		s.logger.Error("vote failed", "poll_id", pollID, "error", err)
		return err
	}
	s.logger.Info("vote cast", "poll_id", pollID, "user_id", user.ID)
	return nil
}
