package leave

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"sync"

	"github.com/frahmantamala/hrms-portal/internal"
	"github.com/frahmantamala/hrms-portal/internal/core/datamodel/employee"
	"github.com/frahmantamala/hrms-portal/internal/hrmsapi"
	"github.com/frahmantamala/hrms-portal/internal/hrprofile"
	"golang.org/x/sync/errgroup"
)

type ModeOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type Row struct {
	Leave
	CanAct bool `json:"canAct"`
}

type EmployeeOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PageView is everything the leaves page renders.
type PageView struct {
	Mode         string           `json:"mode"`
	Modes        []ModeOption     `json:"modes"`
	Leaves       []Row            `json:"leaves"`
	Summary      map[string]int   `json:"summary"`
	Balance      Balance          `json:"balance"`
	DefaultType  LeaveType        `json:"defaultType"`
	CanApply     bool             `json:"canApply"`
	Employees    []EmployeeOption `json:"employees,omitempty"`
	Statuses     []string         `json:"-"`
	Types        []LeaveType      `json:"-"`
	Errors       []string         `json:"errors,omitempty"`
	SelectedName string           `json:"selectedName,omitempty"`
}

type Service struct {
	api    hrmsapi.API
	logger *slog.Logger
}

func NewService(api hrmsapi.API, logger *slog.Logger) *Service {
	return &Service{api: api, logger: logger}
}

// Modes lists the view modes a role can switch between.
func Modes(user *internal.User, employees []EmployeeOption) []ModeOption {
	modes := []ModeOption{{Value: string(ModeMy), Label: "My Leaves"}}
	switch {
	case user.HasRole(internal.RoleManager):
		modes = append(modes, ModeOption{Value: string(ModeTeam), Label: "Team Approvals"})
	case user.HasRole(internal.RoleHR, internal.RoleAdmin):
		if user.HasRole(internal.RoleAdmin) {
			modes = append(modes, ModeOption{Value: string(ModeAll), Label: "All Employees"})
		}
		for _, e := range employees {
			modes = append(modes, ModeOption{Value: Mode{Kind: ModeEmployee, EmployeeID: e.ID}.String(), Label: e.Name})
		}
	}
	return modes
}

func leavesQuery(m Mode) url.Values {
	q := url.Values{}
	switch m.Kind {
	case ModeEmployee:
		q.Set("employeeId", m.EmployeeID)
	case ModeTeam, ModeAll:
		q.Set("view", string(m.Kind))
	default:
		q.Set("view", string(ModeMy))
	}
	return q
}

// Page fetches the leave list, the relevant balance and, for hr and admin,
// the employee picker. A failed fetch leaves its section empty and is
// reported in Errors.
func (s *Service) Page(ctx context.Context, user *internal.User, rawMode string) *PageView {
	mode := ResolveMode(user, rawMode)
	view := &PageView{
		Mode:     mode.String(),
		Balance:  Balance{},
		CanApply: mode.Kind == ModeMy,
		Statuses: Statuses,
		Types:    Types,
	}

	var (
		mu        sync.Mutex
		leaves    hrmsapi.List[Leave]
		balance   Balance
		employees hrmsapi.List[employee.Employee]
		g         errgroup.Group
	)
	fail := func(section string, err error) {
		s.logger.Error("leaves page fetch failed", "section", section, "error", err)
		mu.Lock()
		view.Errors = append(view.Errors, internal.UserMessage(err, "Failed to load "+section))
		mu.Unlock()
	}

	g.Go(func() error {
		if err := s.api.Get(ctx, user.Token, "/api/leaves", leavesQuery(mode), &leaves); err != nil {
			fail("leaves", err)
		}
		return nil
	})

	if mode.Kind != ModeAll {
		g.Go(func() error {
			var q url.Values
			if mode.Kind == ModeEmployee {
				q = url.Values{"employeeId": {mode.EmployeeID}}
			}
			if err := s.api.Get(ctx, user.Token, "/api/leaves/balance", q, &balance); err != nil {
				fail("leave balance", err)
			}
			return nil
		})
	}

	if user.HasRole(internal.RoleHR, internal.RoleAdmin) {
		g.Go(func() error {
			if err := s.api.Get(ctx, user.Token, "/api/employees", nil, &employees); err != nil {
				fail("employees", err)
			}
			return nil
		})
	}

	_ = g.Wait()
	sort.Strings(view.Errors)

	if balance != nil {
		view.Balance = balance
	}
	view.DefaultType = DefaultType(view.Balance)

	for _, e := range employees {
		view.Employees = append(view.Employees, EmployeeOption{ID: e.ID, Name: e.DisplayName()})
		if mode.Kind == ModeEmployee && e.ID == mode.EmployeeID {
			view.SelectedName = e.DisplayName()
		}
	}
	view.Modes = Modes(user, view.Employees)

	view.Leaves = make([]Row, 0, len(leaves))
	for _, l := range leaves {
		view.Leaves = append(view.Leaves, Row{Leave: l, CanAct: CanAct(user, mode, l)})
	}
	view.Summary = Summarize(leaves)
	return view
}

func (s *Service) Apply(ctx context.Context, user *internal.User, dto ApplyLeaveDTO) error {
	dto.Normalize()
	req, appErr := dto.Validate()
	if appErr != nil {
		return appErr
	}

	if err := s.api.Post(ctx, user.Token, "/api/leaves", req, nil); err != nil {
		s.logger.Error("leave application failed", "user_id", user.ID, "error", err)
		return err
	}
	s.logger.Info("leave applied", "user_id", user.ID, "type", req.LeaveType, "days", req.TotalDays)
	return nil
}

// Decide approves or rejects a leave. Only roles that can hold approval
// authority get through; the backend decides the rest.
func (s *Service) Decide(ctx context.Context, user *internal.User, leaveID string, dto hrprofile.DecisionDTO) error {
	if !user.HasRole(internal.RoleManager, internal.RoleHR, internal.RoleAdmin) {
		return internal.ErrNotPermitted
	}
	dto.Normalize()
	if appErr := dto.Validate(); appErr != nil {
		return appErr
	}

	path := fmt.Sprintf("/api/leaves/%s/approve", url.PathEscape(leaveID))
	if err := s.api.Put(ctx, user.Token, path, dto, nil); err != nil {
		s.logger.Error("leave decision failed", "leave_id", leaveID, "status", dto.Status, "error", err)
		return err
	}
	s.logger.Info("leave decided", "leave_id", leaveID, "status", dto.Status, "by", user.ID)
	return nil
}
