package leave

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/frahmantamala/hrms-portal/internal"
	"github.com/frahmantamala/hrms-portal/internal/core/datamodel"
	"github.com/frahmantamala/hrms-portal/internal/core/datamodel/employee"
)

type LeaveType string

const (
	TypePaid   LeaveType = "PL"
	TypeUnpaid LeaveType = "UL"
	TypeCasual LeaveType = "CL"
	TypeSick   LeaveType = "SL"
)

var Types = []LeaveType{TypePaid, TypeUnpaid, TypeCasual, TypeSick}

var typeLabels = map[LeaveType]string{
	TypePaid:   "Paid Leave",
	TypeUnpaid: "Unpaid Leave",
	TypeCasual: "Casual Leave",
	TypeSick:   "Sick Leave",
}

func (t LeaveType) Label() string {
	if l, ok := typeLabels[t]; ok {
		return l
	}
	return string(t)
}

const (
	StatusPending         = "Pending"
	StatusManagerApproved = "Manager Approved"
	StatusManagerRejected = "Manager Rejected"
	StatusHRApproved      = "HR Approved"
	StatusHRRejected      = "HR Rejected"
)

var Statuses = []string{StatusPending, StatusManagerApproved, StatusManagerRejected, StatusHRApproved, StatusHRRejected}

type Leave struct {
	ID        string         `json:"_id"`
	Employee  employee.Ref   `json:"employee"`
	LeaveType LeaveType      `json:"leaveType"`
	StartDate datamodel.Time `json:"startDate"`
	EndDate   datamodel.Time `json:"endDate"`
	TotalDays float64        `json:"totalDays"`
	Status    string         `json:"status"`
	Reason    string         `json:"reason"`
	Comments  string         `json:"comments,omitempty"`
	AppliedAt datamodel.Time `json:"createdAt"`
}

// Balance is the remaining days per leave type. Types the backend did not
// report are absent.
type Balance map[LeaveType]float64

// UnmarshalJSON accepts {"PL": 4} as well as {"PL": {"remaining": 4}} and
// {"PL": {"available": 4}}, optionally wrapped in {"balance": ...}.
func (b *Balance) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if inner, ok := fields["balance"]; ok && len(bytes.TrimSpace(inner)) > 0 && bytes.TrimSpace(inner)[0] == '{' {
		return b.UnmarshalJSON(inner)
	}

	out := Balance{}
	for key, raw := range fields {
		t := LeaveType(strings.ToUpper(key))
		if _, known := typeLabels[t]; !known {
			continue
		}
		var n float64
		if err := json.Unmarshal(raw, &n); err == nil {
			out[t] = n
			continue
		}
		var nested struct {
			Remaining *float64 `json:"remaining"`
			Available *float64 `json:"available"`
		}
		if err := json.Unmarshal(raw, &nested); err == nil {
			switch {
			case nested.Remaining != nil:
				out[t] = *nested.Remaining
			case nested.Available != nil:
				out[t] = *nested.Available
			}
		}
	}
	*b = out
	return nil
}

// TotalDays counts calendar days from start to end inclusive. An end before
// the start yields zero.
func TotalDays(start, end time.Time) int {
	s := civil(start)
	e := civil(end)
	if e.Before(s) {
		return 0
	}
	return int(e.Sub(s).Hours()/24) + 1
}

func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DefaultType picks paid leave only when the paid balance is known and
// positive.
func DefaultType(b Balance) LeaveType {
	if remaining, ok := b[TypePaid]; ok && remaining > 0 {
		return TypePaid
	}
	return TypeUnpaid
}

type ModeKind string

const (
	ModeMy       ModeKind = "my"
	ModeTeam     ModeKind = "team"
	ModeEmployee ModeKind = "employee"
	ModeAll      ModeKind = "all"
)

// Mode is which leaves the page lists.
type Mode struct {
	Kind       ModeKind `json:"kind"`
	EmployeeID string   `json:"employeeId,omitempty"`
}

func (m Mode) String() string {
	if m.Kind == ModeEmployee {
		return string(ModeEmployee) + ":" + m.EmployeeID
	}
	return string(m.Kind)
}

func ParseMode(raw string) Mode {
	raw = strings.TrimSpace(raw)
	if id, ok := strings.CutPrefix(raw, string(ModeEmployee)+":"); ok {
		return Mode{Kind: ModeEmployee, EmployeeID: strings.TrimSpace(id)}
	}
	return Mode{Kind: ModeKind(raw)}
}

// ResolveMode keeps the requested mode only when the role may use it.
func ResolveMode(user *internal.User, raw string) Mode {
	m := ParseMode(raw)
	switch m.Kind {
	case ModeTeam:
		if user.HasRole(internal.RoleManager) {
			return m
		}
	case ModeEmployee:
		if user.HasRole(internal.RoleHR, internal.RoleAdmin) && m.EmployeeID != "" {
			return m
		}
	case ModeAll:
		if user.HasRole(internal.RoleAdmin) {
			return m
		}
	}
	return Mode{Kind: ModeMy}
}

// CanAct reports whether the viewer gets approve/reject buttons for l in
// mode m. Managers act on pending leaves of their team; hr and admin act on
// pending or manager-approved leaves outside their own list.
func CanAct(user *internal.User, m Mode, l Leave) bool {
	switch {
	case user.HasRole(internal.RoleManager):
		return m.Kind == ModeTeam && l.Status == StatusPending
	case user.HasRole(internal.RoleHR, internal.RoleAdmin):
		return m.Kind != ModeMy && (l.Status == StatusPending || l.Status == StatusManagerApproved)
	}
	return false
}

// Summarize counts leaves per status. Every known status is present.
func Summarize(leaves []Leave) map[string]int {
	out := make(map[string]int, len(Statuses))
	for _, s := range Statuses {
		out[s] = 0
	}
	for _, l := range leaves {
		out[l.Status]++
	}
	return out
}
