package employee

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/frahmantamala/hrms-portal/internal"
	"github.com/frahmantamala/hrms-portal/internal/auth"
	model "github.com/frahmantamala/hrms-portal/internal/core/datamodel/employee"
	"github.com/frahmantamala/hrms-portal/internal/hrmsapi"
	"github.com/frahmantamala/hrms-portal/internal/hrprofile"
)

type HRProfileSource interface {
	All(ctx context.Context, user *internal.User, filter hrprofile.Filter) ([]model.HRProfile, error)
	Decide(ctx context.Context, user *internal.User, profileID string, dto hrprofile.DecisionDTO) error
}

type Row struct {
	model.Employee
	Name       string `json:"name"`
	CanApprove bool   `json:"canApprove"`
}

type ProfileRow struct {
	model.HRProfile
	CanDecide bool `json:"canDecide"`
}

type PageView struct {
	Filter        Filter       `json:"filter"`
	Employees     []Row        `json:"employees"`
	HRProfiles    []ProfileRow `json:"hrProfiles,omitempty"`
	Total         int          `json:"total"`
	ShowHRTab     bool         `json:"showHrTab"`
	Errors        []string     `json:"errors,omitempty"`
	Departments   []string     `json:"-"`
	Statuses      []string     `json:"-"`
	ProfileStatus []string     `json:"-"`
}

type Service struct {
	api         hrmsapi.API
	profiles    HRProfileSource
	permissions auth.PermissionChecker
	logger      *slog.Logger
}

func NewService(api hrmsapi.API, profiles HRProfileSource, permissions auth.PermissionChecker, logger *slog.Logger) *Service {
	return &Service{api: api, profiles: profiles, permissions: permissions, logger: logger}
}

// Page loads the tab the filter selects. The hr-profiles tab falls back to
// the directory for users who cannot review profiles.
func (s *Service) Page(ctx context.Context, user *internal.User, filter Filter) *PageView {
	showHR := s.permissions.CanReviewHRProfiles(user)
	if filter.Tab == TabHRProfiles && !showHR {
		filter.Tab = TabEmployees
	}
	view := &PageView{
		Filter:        filter,
		Employees:     []Row{},
		ShowHRTab:     showHR,
		Departments:   model.Departments,
		Statuses:      model.EmploymentStatuses,
		ProfileStatus: HRProfileStatuses,
	}

	if filter.Tab == TabHRProfiles {
		profiles, err := s.profiles.All(ctx, user, hrprofile.Filter{Search: filter.Search, Status: filter.Status})
		if err != nil {
			s.logger.Error("hr profiles fetch failed", "user_id", user.ID, "error", err)
			view.Errors = append(view.Errors, internal.UserMessage(err, "Failed to load HR profiles"))
		}
		view.HRProfiles = make([]ProfileRow, 0, len(profiles))
		for _, p := range profiles {
			view.HRProfiles = append(view.HRProfiles, ProfileRow{HRProfile: p, CanDecide: p.IsPending()})
		}
		view.Total = len(view.HRProfiles)
		return view
	}

	var list hrmsapi.List[model.Employee]
	if err := s.api.Get(ctx, user.Token, "/api/employees", filter.Query(), &list); err != nil {
		s.logger.Error("employees fetch failed", "user_id", user.ID, "error", err)
		view.Errors = append(view.Errors, internal.UserMessage(err, "Failed to load employees"))
	}
	canApprove := s.permissions.CanApproveEmployeeProfiles(user)
	for _, e := range list {
		view.Employees = append(view.Employees, Row{
			Employee:   e,
			Name:       e.DisplayName(),
			CanApprove: canApprove && PendingReview(e),
		})
	}
	view.Total = len(view.Employees)
	return view
}

type approveProfileRequest struct {
	Status string `json:"status"`
}

// ApproveProfile approves or rejects an employee's submitted profile.
func (s *Service) ApproveProfile(ctx context.Context, user *internal.User, employeeID string, dto hrprofile.DecisionDTO) error {
	if !s.permissions.CanApproveEmployeeProfiles(user) {
		return internal.ErrNotPermitted
	}
	dto.Normalize()
	if appErr := dto.Validate(); appErr != nil {
		return appErr
	}

	path := fmt.Sprintf("/api/employees/%s/approve-profile", url.PathEscape(employeeID))
	if err := s.api.Put(ctx, user.Token, path, approveProfileRequest{Status: dto.Status}, nil); err != nil {
		s.logger.Error("employee profile decision failed", "employee_id", employeeID, "error", err)
		return err
	}
	s.logger.Info("employee profile decided", "employee_id", employeeID, "status", dto.Status, "by", user.ID)
	return nil
}

func (s *Service) DecideHRProfile(ctx context.Context, user *internal.User, profileID string, dto hrprofile.DecisionDTO) error {
	return s.profiles.Decide(ctx, user, profileID, dto)
}
