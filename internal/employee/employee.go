package employee

import (
	"net/url"
	"strings"

	model "github.com/frahmantamala/hrms-portal/internal/core/datamodel/employee"
)

const (
	TabEmployees  = "employees"
	TabHRProfiles = "hr-profiles"
)

var HRProfileStatuses = []string{model.ProfileStatusPending, model.ProfileStatusApproved, model.ProfileStatusRejected}

// Filter is the directory query shared by the page, the table fragment and
// the backend call.
type Filter struct {
	Search     string `json:"search"`
	Department string `json:"department"`
	Status     string `json:"status"`
	Tab        string `json:"tab"`
}

func FilterFromQuery(q url.Values) Filter {
	f := Filter{
		Search:     strings.TrimSpace(q.Get("search")),
		Department: strings.TrimSpace(q.Get("department")),
		Status:     strings.TrimSpace(q.Get("status")),
		Tab:        q.Get("tab"),
	}
	if f.Tab != TabHRProfiles {
		f.Tab = TabEmployees
	}
	return f
}

func set(q url.Values, key, value string) {
	if value != "" && value != "all" {
		q.Set(key, value)
	}
}

// Query is the backend query for the employee list.
func (f Filter) Query() url.Values {
	q := url.Values{}
	set(q, "search", f.Search)
	set(q, "department", f.Department)
	set(q, "status", f.Status)
	return q
}

// PendingReview reports employee profiles still waiting for approval.
func PendingReview(e model.Employee) bool {
	return e.ProfileStatus == model.ProfileStatusPending || e.ProfileStatus == "submitted"
}
