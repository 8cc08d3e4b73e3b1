package offer

import (
	"strings"
	"time"

	"github.com/frahmantamala/hrms-portal/internal/core/datamodel"
)

const (
	ActionAccept = "accept"
	ActionReject = "reject"
)

const (
	StatusAccepted = "Accepted"
	StatusRejected = "Rejected"
	StatusExpired  = "Expired"
)

type Candidate struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Job struct {
	Title      string `json:"title"`
	Department string `json:"department"`
	Location   string `json:"location,omitempty"`
}

type Offer struct {
	Salary     float64        `json:"salary"`
	Currency   string         `json:"currency,omitempty"`
	StartDate  datamodel.Time `json:"startDate"`
	ExpiryDate datamodel.Time `json:"expiryDate"`
	Status     string         `json:"status"`
}

// Application is the recruitment record an offer link points at.
type Application struct {
	ID        string    `json:"_id"`
	Candidate Candidate `json:"candidate"`
	Job       Job       `json:"job"`
	Offer     Offer     `json:"offer"`
	Status    string    `json:"status"`
}

// OfferStatus prefers the offer's own status over the application's.
func (a Application) OfferStatus() string {
	if s := strings.TrimSpace(a.Offer.Status); s != "" {
		return s
	}
	return strings.TrimSpace(a.Status)
}

// State is what the page may offer for an application at a given time.
type State struct {
	Status        string `json:"status"`
	Expired       bool   `json:"expired"`
	Terminal      bool   `json:"terminal"`
	CanRespond    bool   `json:"canRespond"`
	EmailMismatch bool   `json:"emailMismatch"`
}

func IsTerminal(status string) bool {
	return strings.EqualFold(status, StatusAccepted) || strings.EqualFold(status, StatusRejected)
}

// Evaluate decides the offer state. Expiry is checked first and disables
// the actions whatever the status says.
func Evaluate(app Application, email string, now time.Time) State {
	st := State{Status: app.OfferStatus()}
	st.Expired = strings.EqualFold(st.Status, StatusExpired) ||
		(!app.Offer.ExpiryDate.IsZero() && app.Offer.ExpiryDate.Before(now))
	st.Terminal = IsTerminal(st.Status)
	st.CanRespond = !st.Expired && !st.Terminal
	email = strings.TrimSpace(email)
	st.EmailMismatch = email != "" && app.Candidate.Email != "" && !strings.EqualFold(email, app.Candidate.Email)
	return st
}

func ValidAction(action string) bool {
	return action == ActionAccept || action == ActionReject
}
