package employee

import "github.com/frahmantamala/hrms-portal/internal/core/datamodel"

type PersonalInfo struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
}

type CompanyDetails struct {
	Department       string         `json:"department"`
	Designation      string         `json:"designation"`
	EmploymentStatus string         `json:"employmentStatus"`
	DateOfJoining    datamodel.Time `json:"dateOfJoining"`
	ReportingManager string         `json:"reportingManager,omitempty"`
}

// Employee is the directory record owned by the backend.
type Employee struct {
	ID                string         `json:"_id"`
	EmployeeID        string         `json:"employeeId"`
	PersonalInfo      PersonalInfo   `json:"personalInfo"`
	CompanyDetails    CompanyDetails `json:"companyDetails"`
	ProfileStatus     string         `json:"profileStatus"`
	ProfileCompletion float64        `json:"profileCompletion"`
}

func (e Employee) DisplayName() string {
	if e.PersonalInfo.FullName != "" {
		return e.PersonalInfo.FullName
	}
	return e.EmployeeID
}

const (
	ProfileStatusPending  = "pending"
	ProfileStatusApproved = "approved"
	ProfileStatusRejected = "rejected"
)

// HRProfile is the profile an hr user submits for manager approval.
type HRProfile struct {
	ID                string         `json:"_id"`
	EmployeeID        string         `json:"employeeId"`
	PersonalInfo      PersonalInfo   `json:"personalInfo"`
	CompanyDetails    CompanyDetails `json:"companyDetails"`
	Status            string         `json:"status"`
	ProfileCompletion float64        `json:"profileCompletion"`
	SubmittedAt       datamodel.Time `json:"submittedAt"`
	Comments          string         `json:"comments,omitempty"`
}

func (p HRProfile) IsPending() bool {
	return p.Status == ProfileStatusPending || p.Status == "submitted"
}

// Departments and EmploymentStatuses are the fixed options offered by filters
// and forms.
var (
	Departments        = []string{"Engineering", "Human Resources", "Finance", "Sales", "Marketing", "Operations"}
	EmploymentStatuses = []string{"Active", "Inactive", "On Leave", "Terminated"}
)
