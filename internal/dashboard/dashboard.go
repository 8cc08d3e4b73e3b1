package dashboard

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/frahmantamala/hrms-portal/internal"
	"github.com/frahmantamala/hrms-portal/internal/core/datamodel/employee"
	model "github.com/frahmantamala/hrms-portal/internal/core/datamodel/engagement"
	"github.com/frahmantamala/hrms-portal/internal/hrmsapi"
	"github.com/frahmantamala/hrms-portal/internal/hrprofile"
	"golang.org/x/sync/errgroup"
)

const (
	VariantEmployee = "employee"
	VariantManager  = "manager"
	VariantHR       = "hr"
	VariantAdmin    = "admin"
)

const maxAnnouncements = 5

// Variant picks the dashboard layout for a role. Unknown roles get the
// employee layout.
func Variant(user *internal.User) string {
	switch {
	case user.HasRole(internal.RoleAdmin):
		return VariantAdmin
	case user.HasRole(internal.RoleHR):
		return VariantHR
	case user.HasRole(internal.RoleManager):
		return VariantManager
	}
	return VariantEmployee
}

type ProfileSource interface {
	Mine(ctx context.Context, user *internal.User) (*hrprofile.Profile, error)
	Pending(ctx context.Context, user *internal.User) ([]employee.HRProfile, error)
	Decide(ctx context.Context, user *internal.User, profileID string, dto hrprofile.DecisionDTO) error
}

type AnnouncementSource interface {
	Announcements(ctx context.Context, user *internal.User) ([]model.Announcement, error)
}

type PageView struct {
	Variant          string               `json:"variant"`
	Stats            *StatsView           `json:"stats"`
	Profile          *hrprofile.Profile   `json:"profile,omitempty"`
	Announcements    []model.Announcement `json:"announcements"`
	PendingApprovals []employee.HRProfile `json:"pendingApprovals,omitempty"`
	Errors           []string             `json:"errors,omitempty"`
}

type Service struct {
	api           hrmsapi.API
	profiles      ProfileSource
	announcements AnnouncementSource
	logger        *slog.Logger
}

func NewService(api hrmsapi.API, profiles ProfileSource, announcements AnnouncementSource, logger *slog.Logger) *Service {
	return &Service{api: api, profiles: profiles, announcements: announcements, logger: logger}
}

// Page loads every dashboard section in parallel. Sections fail on their
// own: the rest of the page still renders.
func (s *Service) Page(ctx context.Context, user *internal.User) *PageView {
	view := &PageView{
		Variant:       Variant(user),
		Announcements: []model.Announcement{},
	}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	fail := func(section string, err error) {
		s.logger.Error("dashboard fetch failed", "section", section, "user_id", user.ID, "error", err)
		mu.Lock()
		view.Errors = append(view.Errors, internal.UserMessage(err, "Failed to load "+section))
		mu.Unlock()
	}

	g.Go(func() error {
		var stats Stats
		if err := s.api.Get(ctx, user.Token, "/api/dashboard/stats", nil, &stats); err != nil {
			fail("statistics", err)
			return nil
		}
		view.Stats = NewStatsView(stats)
		return nil
	})

	if view.Variant != VariantAdmin {
		g.Go(func() error {
			profile, err := s.profiles.Mine(ctx, user)
			if err != nil {
				fail("profile", err)
				return nil
			}
			view.Profile = profile
			return nil
		})
	}

	g.Go(func() error {
		list, err := s.announcements.Announcements(ctx, user)
		if err != nil {
			fail("announcements", err)
			return nil
		}
		if len(list) > maxAnnouncements {
			list = list[:maxAnnouncements]
		}
		view.Announcements = list
		return nil
	})

	if view.Variant == VariantManager {
		g.Go(func() error {
			pending, err := s.profiles.Pending(ctx, user)
			if err != nil {
				fail("pending approvals", err)
				return nil
			}
			view.PendingApprovals = pending
			return nil
		})
	}

	_ = g.Wait()
	sort.Strings(view.Errors)
	return view
}

// DecideHRProfile approves or rejects a pending HR profile from the manager
// dashboard.
func (s *Service) DecideHRProfile(ctx context.Context, user *internal.User, profileID string, dto hrprofile.DecisionDTO) error {
	return s.profiles.Decide(ctx, user, profileID, dto)
}
