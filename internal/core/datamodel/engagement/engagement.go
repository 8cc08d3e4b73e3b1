package engagement

import (
	"time"

	"github.com/frahmantamala/hrms-portal/internal/core/datamodel"
)

const (
	VisibilityAll        = "All"
	VisibilityDepartment = "Department"
)

type Announcement struct {
	ID          string         `json:"_id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Visibility  string         `json:"visibility"`
	Department  string         `json:"department,omitempty"`
	ExpiryDate  datamodel.Time `json:"expiryDate"`
	IsPinned    bool           `json:"isPinned"`
	CreatedBy   string         `json:"createdByName,omitempty"`
	CreatedAt   datamodel.Time `json:"createdAt"`
}

func (a Announcement) Expired(now time.Time) bool {
	return !a.ExpiryDate.IsZero() && a.ExpiryDate.Before(now)
}

type PollOption struct {
	ID    string   `json:"_id,omitempty"`
	Text  string   `json:"text"`
	Votes []string `json:"votes"`
}

type Poll struct {
	ID         string         `json:"_id"`
	Question   string         `json:"question"`
	Options    []PollOption   `json:"options"`
	Deadline   datamodel.Time `json:"deadline"`
	Visibility string         `json:"visibility"`
	CreatedAt  datamodel.Time `json:"createdAt"`
}
