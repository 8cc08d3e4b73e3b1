package dashboard

import (
	"github.com/frahmantamala/hrms-portal/internal/core/datamodel"
	"github.com/frahmantamala/hrms-portal/internal/leave"
)

// Stats mirrors /api/dashboard/stats. Sections a role does not get are left
// at their zero value by the backend.
type Stats struct {
	TotalEmployees   int               `json:"totalEmployees"`
	ActiveEmployees  int               `json:"activeEmployees"`
	PendingLeaves    int               `json:"pendingLeaves"`
	PendingApprovals int               `json:"pendingApprovals"`
	OpenGrievances   int               `json:"openGrievances"`
	Attendance       Attendance        `json:"attendance"`
	LeaveUsage       []LeaveUsage      `json:"leaveUsage"`
	TeamStatus       TeamStatus        `json:"teamStatus"`
	Departments      []DepartmentCount `json:"departmentBreakdown"`
	RecentActivities []Activity        `json:"recentActivities"`
}

type Attendance struct {
	Present int `json:"present"`
	Absent  int `json:"absent"`
	Late    int `json:"late"`
	Total   int `json:"total"`
}

// Rate is the share of present days as a percentage. Late days count as
// present.
func (a Attendance) Rate() float64 {
	total := a.Total
	if total == 0 {
		total = a.Present + a.Absent + a.Late
	}
	return ratio(float64(a.Present+a.Late), float64(total))
}

type LeaveUsage struct {
	Type  leave.LeaveType `json:"type"`
	Used  float64         `json:"used"`
	Total float64         `json:"total"`
}

type TeamStatus struct {
	Present int `json:"present"`
	OnLeave int `json:"onLeave"`
	Remote  int `json:"remote"`
}

type DepartmentCount struct {
	Department string `json:"department"`
	Count      int    `json:"count"`
}

type Activity struct {
	Type      string         `json:"type"`
	Message   string         `json:"message"`
	Timestamp datamodel.Time `json:"timestamp"`
}

func ratio(part, whole float64) float64 {
	if whole <= 0 {
		return 0
	}
	return part / whole * 100
}

type UsageView struct {
	Type    leave.LeaveType `json:"type"`
	Label   string          `json:"label"`
	Used    float64         `json:"used"`
	Total   float64         `json:"total"`
	Percent float64         `json:"percent"`
}

type BarView struct {
	Label   string  `json:"label"`
	Value   int     `json:"value"`
	Percent float64 `json:"percent"`
}

// StatsView is Stats with the derived percentages the page draws as bars.
type StatsView struct {
	Stats
	AttendanceRate float64     `json:"attendanceRate"`
	Usage          []UsageView `json:"usage"`
	DepartmentBars []BarView   `json:"departmentBars"`
}

func NewStatsView(s Stats) *StatsView {
	view := &StatsView{Stats: s, AttendanceRate: s.Attendance.Rate()}
	for _, u := range s.LeaveUsage {
		view.Usage = append(view.Usage, UsageView{
			Type:    u.Type,
			Label:   u.Type.Label(),
			Used:    u.Used,
			Total:   u.Total,
			Percent: ratio(u.Used, u.Total),
		})
	}

	peak := 0
	for _, d := range s.Departments {
		if d.Count > peak {
			peak = d.Count
		}
	}
	for _, d := range s.Departments {
		view.DepartmentBars = append(view.DepartmentBars, BarView{
			Label:   d.Department,
			Value:   d.Count,
			Percent: ratio(float64(d.Count), float64(peak)),
		})
	}
	return view
}
