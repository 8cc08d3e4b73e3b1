package hrprofile

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/frahmantamala/hrms-portal/internal"
	"github.com/frahmantamala/hrms-portal/internal/core/common/validation"
	"github.com/frahmantamala/hrms-portal/internal/core/datamodel/employee"
	"github.com/frahmantamala/hrms-portal/internal/hrmsapi"
)

const (
	DecisionApproved = "approved"
	DecisionRejected = "rejected"
)

// DecisionDTO is the approve/reject form shared by profile reviews.
type DecisionDTO struct {
	Status   string `json:"status"`
	Comments string `json:"comments,omitempty"`
}

func (d *DecisionDTO) Normalize() {
	d.Status = strings.ToLower(strings.TrimSpace(d.Status))
	d.Comments = strings.TrimSpace(d.Comments)
}

func (d DecisionDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("status", d.Status).Required().OneOf(DecisionApproved, DecisionRejected)
	v.Field("comments", d.Comments).MaxLength(1000)
	return v.Validate()
}

type Filter struct {
	Search string `json:"search"`
	Status string `json:"status"`
}

func (f Filter) Query() url.Values {
	q := url.Values{}
	if s := strings.TrimSpace(f.Search); s != "" {
		q.Set("search", s)
	}
	if f.Status != "" && f.Status != "all" {
		q.Set("status", f.Status)
	}
	return q
}

// Profile is whichever profile the signed-in user owns: the employee record,
// or the HR profile for hr users.
type Profile struct {
	Kind              string  `json:"kind"`
	Name              string  `json:"name"`
	EmployeeID        string  `json:"employeeId"`
	Department        string  `json:"department"`
	Designation       string  `json:"designation"`
	Status            string  `json:"status"`
	ProfileCompletion float64 `json:"profileCompletion"`
}

type Service struct {
	api    hrmsapi.API
	logger *slog.Logger
}

func NewService(api hrmsapi.API, logger *slog.Logger) *Service {
	return &Service{api: api, logger: logger}
}

// Mine loads the signed-in user's own profile. Admins have none.
func (s *Service) Mine(ctx context.Context, user *internal.User) (*Profile, error) {
	switch {
	case user.HasRole(internal.RoleHR):
		var p employee.HRProfile
		if err := s.api.Get(ctx, user.Token, "/api/hr-profile/my-profile", nil, &p); err != nil {
			return nil, err
		}
		return &Profile{
			Kind:              "hr",
			Name:              p.PersonalInfo.FullName,
			EmployeeID:        p.EmployeeID,
			Department:        p.CompanyDetails.Department,
			Designation:       p.CompanyDetails.Designation,
			Status:            p.Status,
			ProfileCompletion: p.ProfileCompletion,
		}, nil
	case user.HasRole(internal.RoleEmployee, internal.RoleManager):
		var e employee.Employee
		if err := s.api.Get(ctx, user.Token, "/api/profile/my-profile", nil, &e); err != nil {
			return nil, err
		}
		return &Profile{
			Kind:              "employee",
			Name:              e.DisplayName(),
			EmployeeID:        e.EmployeeID,
			Department:        e.CompanyDetails.Department,
			Designation:       e.CompanyDetails.Designation,
			Status:            e.ProfileStatus,
			ProfileCompletion: e.ProfileCompletion,
		}, nil
	}
	return nil, nil
}

func (s *Service) Pending(ctx context.Context, user *internal.User) ([]employee.HRProfile, error) {
	if !user.HasRole(internal.RoleManager) {
		return nil, internal.ErrNotPermitted
	}
	var profiles hrmsapi.List[employee.HRProfile]
	if err := s.api.Get(ctx, user.Token, "/api/hr-profile/pending-approvals", nil, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

func (s *Service) All(ctx context.Context, user *internal.User, filter Filter) ([]employee.HRProfile, error) {
	if !user.HasRole(internal.RoleManager) {
		return nil, internal.ErrNotPermitted
	}
	var profiles hrmsapi.List[employee.HRProfile]
	if err := s.api.Get(ctx, user.Token, "/api/hr-profile/all", filter.Query(), &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

// Decide approves or rejects an HR profile. Managers only.
func (s *Service) Decide(ctx context.Context, user *internal.User, profileID string, dto DecisionDTO) error {
	if !user.HasRole(internal.RoleManager) {
		return internal.ErrNotPermitted
	}
	dto.Normalize()
	if appErr := dto.Validate(); appErr != nil {
		return appErr
	}

	path := fmt.Sprintf("/api/hr-profile/%s/approve", url.PathEscape(profileID))
	if err := s.api.Put(ctx, user.Token, path, dto, nil); err != nil {
		s.logger.Error("hr profile decision failed", "profile_id", profileID, "status", dto.Status, "error", err)
		return err
	}
	s.logger.Info("hr profile decided", "profile_id", profileID, "status", dto.Status, "manager_id", user.ID)
	return nil
}
