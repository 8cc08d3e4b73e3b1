package leave

import (
	"strings"
	"time"

	"github.com/frahmantamala/hrms-portal/internal"
	"github.com/frahmantamala/hrms-portal/internal/core/common/validation"
)

// ApplyLeaveDTO is the application form as posted by the browser.
type ApplyLeaveDTO struct {
	LeaveType string `json:"leaveType"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Reason    string `json:"reason"`
}

type applyLeaveRequest struct {
	LeaveType LeaveType `json:"leaveType"`
	StartDate string    `json:"startDate"`
	EndDate   string    `json:"endDate"`
	TotalDays int       `json:"totalDays"`
	Reason    string    `json:"reason"`
}

func (d *ApplyLeaveDTO) Normalize() {
	d.LeaveType = strings.ToUpper(strings.TrimSpace(d.LeaveType))
	d.StartDate = strings.TrimSpace(d.StartDate)
	d.EndDate = strings.TrimSpace(d.EndDate)
	d.Reason = strings.TrimSpace(d.Reason)
}

// Validate checks the form and returns the backend request with the
// computed day count.
func (d ApplyLeaveDTO) Validate() (*applyLeaveRequest, *internal.AppError) {
	types := make([]string, len(Types))
	for i, t := range Types {
		types[i] = string(t)
	}

	v := validation.NewValidator()
	v.Field("leaveType", d.LeaveType).Required().OneOf(types...)
	v.Field("startDate", d.StartDate).Required().Custom(dateField("startDate"))
	v.Field("endDate", d.EndDate).Required().Custom(dateField("endDate"))
	v.Field("reason", d.Reason).Required().MaxLength(500)
	if appErr := v.Validate(); appErr != nil {
		return nil, appErr
	}

	start, _ := validation.ParseDate(d.StartDate)
	end, _ := validation.ParseDate(d.EndDate)
	days := TotalDays(start, end)
	if days <= 0 {
		return nil, internal.NewValidationFieldError("endDate", "End date must be on or after the start date", internal.ErrCodeInvalidDateRange)
	}

	return &applyLeaveRequest{
		LeaveType: LeaveType(d.LeaveType),
		StartDate: start.Format(time.DateOnly),
		EndDate:   end.Format(time.DateOnly),
		TotalDays: days,
		Reason:    d.Reason,
	}, nil
}

func dateField(name string) func(interface{}) *internal.AppError {
	return func(value interface{}) *internal.AppError {
		raw, _ := value.(string)
		if raw == "" {
			return nil
		}
		if _, err := validation.ParseDate(raw); err != nil {
			return internal.NewValidationFieldError(name, name+" must be a date (YYYY-MM-DD)", internal.ErrCodeInvalidDate)
		}
		return nil
	}
}
