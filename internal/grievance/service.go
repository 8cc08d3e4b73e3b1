package grievance

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/frahmantamala/hrms-portal/internal"
	"github.com/frahmantamala/hrms-portal/internal/auth"
	"github.com/frahmantamala/hrms-portal/internal/hrmsapi"
)

type Row struct {
	Grievance
	Color         string `json:"color"`
	ResolverLabel string `json:"resolverLabel,omitempty"`
	CanResolve    bool   `json:"canResolve"`
}

type PageView struct {
	Status     string         `json:"status"`
	Counts     map[string]int `json:"counts"`
	Grievances []Row          `json:"grievances"`
	CanSubmit  bool           `json:"canSubmit"`
	Errors     []string       `json:"errors,omitempty"`
	Statuses   []string       `json:"-"`
	Types      []string       `json:"-"`
	Categories []string       `json:"-"`
	Priorities []string       `json:"-"`
}

type Service struct {
	api         hrmsapi.API
	permissions auth.PermissionChecker
	logger      *slog.Logger
}

func NewService(api hrmsapi.API, permissions auth.PermissionChecker, logger *slog.Logger) *Service {
	return &Service{api: api, permissions: permissions, logger: logger}
}

func normalizeStatus(raw string) string {
	raw = strings.TrimSpace(raw)
	for _, s := range Statuses {
		if strings.EqualFold(s, raw) {
			return s
		}
	}
	return "all"
}

// Page lists the tickets visible to the user with counts over the whole
// list and rows filtered by status.
func (s *Service) Page(ctx context.Context, user *internal.User, status string) *PageView {
	view := &PageView{
		Status:     normalizeStatus(status),
		CanSubmit:  s.permissions.CanSubmitGrievance(user),
		Statuses:   Statuses,
		Types:      Types,
		Categories: Categories,
		Priorities: Priorities,
		Grievances: []Row{},
	}

	var list hrmsapi.List[Grievance]
	if err := s.api.Get(ctx, user.Token, "/api/grievances", nil, &list); err != nil {
		s.logger.Error("grievances fetch failed", "user_id", user.ID, "error", err)
		view.Errors = append(view.Errors, internal.UserMessage(err, "Failed to load grievances"))
	}

	view.Counts = Count(list)
	canResolve := s.permissions.CanResolveGrievance(user)
	for _, g := range FilterByStatus(list, view.Status) {
		row := Row{Grievance: g, Color: StatusColor(g.Status), CanResolve: canResolve && g.Resolvable()}
		if g.Resolution != nil {
			role := g.Resolution.ResolvedByRole
			if role == "" {
				role = g.Resolution.ResolvedBy.Role
			}
			row.ResolverLabel = ResolverLabel(role)
		}
		view.Grievances = append(view.Grievances, row)
	}
	return view
}

func (s *Service) Submit(ctx context.Context, user *internal.User, dto SubmitGrievanceDTO) error {
	if !s.permissions.CanSubmitGrievance(user) {
		return internal.ErrNotPermitted
	}
	dto.Normalize()
	if appErr := dto.Validate(); appErr != nil {
		return appErr
	}
	if err := s.api.Post(ctx, user.Token, "/api/grievances", dto, nil); err != nil {
		s.logger.Error("grievance submission failed", "user_id", user.ID, "error", err)
		return err
	}
	s.logger.Info("grievance submitted", "user_id", user.ID, "category", dto.Category, "priority", dto.Priority)
	return nil
}

func (s *Service) Resolve(ctx context.Context, user *internal.User, grievanceID string, dto ResolveGrievanceDTO) error {
	if !s.permissions.CanResolveGrievance(user) {
		return internal.ErrNotPermitted
	}
	if appErr := dto.Validate(); appErr != nil {
		return appErr
	}
	dto.Resolution = strings.TrimSpace(dto.Resolution)

	path := fmt.Sprintf("/api/grievances/%s/resolve", url.PathEscape(grievanceID))
	if err := s.api.Put(ctx, user.Token, path, dto, nil); err != nil {
		s.logger.Error("grievance resolution failed", "grievance_id", grievanceID, "error", err)
		return err
	}
	s.logger.Info("grievance resolved", "grievance_id", grievanceID, "by", user.ID)
	return nil
}
