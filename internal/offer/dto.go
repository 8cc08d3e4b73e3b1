package offer

import (
	"errors"
	"strings"

	"github.com/frahmantamala/hrms-portal/internal"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type RespondDTO struct {
	Action string `json:"action" validate:"required,oneof=accept reject"`
	Email  string `json:"email" validate:"required,email"`
	Reason string `json:"reason" validate:"required_if=Action reject,max=1000"`
}

func (d *RespondDTO) Normalize() {
	d.Action = strings.ToLower(strings.TrimSpace(d.Action))
	d.Email = strings.TrimSpace(d.Email)
	d.Reason = strings.TrimSpace(d.Reason)
}

var fieldErrors = map[string]struct {
	field   string
	message string
	code    internal.ErrorCode
}{
	"Action": {"action", "Action must be accept or reject", internal.ErrCodeInvalidAction},
	"Email":  {"email", "A valid email address is required", internal.ErrCodeMissingEmail},
	"Reason": {"reason", "Please give a reason for declining the offer", internal.ErrCodeMissingReason},
}

func (d RespondDTO) Validate() *internal.AppError {
	err := validate.Struct(d)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	details := internal.ValidationErrors{}
	for _, fe := range verrs {
		m, ok := fieldErrors[fe.Field()]
		if !ok {
			continue
		}
		message := m.message
		if fe.Tag() == "max" {
			message = m.field + " is too long"
		}
		details.Errors = append(details.Errors, internal.ValidationError{Field: m.field, Message: message, Code: string(m.code)})
	}
	return internal.NewValidationError("Validation failed", internal.ErrCodeValidationFailed).WithDetails(details)
}
