package grievance

import (
	"github.com/frahmantamala/hrms-portal/internal"
	"github.com/frahmantamala/hrms-portal/internal/core/datamodel"
	"github.com/frahmantamala/hrms-portal/internal/core/datamodel/employee"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	StatusOpen       = "Open"
	StatusInProgress = "In Progress"
	StatusResolved   = "Resolved"
	StatusClosed     = "Closed"
)

var Statuses = []string{StatusOpen, StatusInProgress, StatusResolved, StatusClosed}

var (
	Types      = []string{"Complaint", "Grievance", "Suggestion"}
	Categories = []string{"Workplace Environment", "Harassment", "Compensation", "Management", "Policy", "Other"}
	Priorities = []string{"Low", "Medium", "High", "Urgent"}
)

type Resolution struct {
	ResolvedBy     employee.Ref   `json:"resolvedBy"`
	ResolvedByRole string         `json:"resolvedByRole,omitempty"`
	Details        string         `json:"details"`
	ResolvedAt     datamodel.Time `json:"resolvedAt"`
}

type Grievance struct {
	ID          string         `json:"_id"`
	TicketID    string         `json:"ticketId,omitempty"`
	Type        string         `json:"type"`
	Category    string         `json:"category"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Priority    string         `json:"priority"`
	Status      string         `json:"status"`
	SubmittedBy employee.Ref   `json:"submittedBy"`
	Resolution  *Resolution    `json:"resolution,omitempty"`
	CreatedAt   datamodel.Time `json:"createdAt"`
}

var statusColors = map[string]string{
	StatusOpen:       "blue",
	StatusInProgress: "amber",
	StatusResolved:   "green",
	StatusClosed:     "gray",
}

func StatusColor(status string) string {
	if c, ok := statusColors[status]; ok {
		return c
	}
	return "gray"
}

var resolverLabels = map[internal.Role]string{
	internal.RoleManager: "Manager",
	internal.RoleHR:      "HR Team",
	internal.RoleAdmin:   "Administrator",
}

var titleCaser = cases.Title(language.English)

func ResolverLabel(role string) string {
	if l, ok := resolverLabels[internal.ParseRole(role)]; ok {
		return l
	}
	if role == "" {
		return "Unknown"
	}
	return titleCaser.String(role)
}

// Resolvable reports tickets that still accept a resolution.
func (g Grievance) Resolvable() bool {
	return g.Status == StatusOpen || g.Status == StatusInProgress
}

// Count tallies tickets per status plus "all".
func Count(list []Grievance) map[string]int {
	out := map[string]int{"all": len(list)}
	for _, s := range Statuses {
		out[s] = 0
	}
	for _, g := range list {
		out[g.Status]++
	}
	return out
}

// FilterByStatus keeps tickets in status; "" and "all" keep everything.
func FilterByStatus(list []Grievance, status string) []Grievance {
	if status == "" || status == "all" {
		return list
	}
	out := make([]Grievance, 0, len(list))
	for _, g := range list {
		if g.Status == status {
			out = append(out, g)
		}
	}
	return out
}
