package grievance

import (
	"strings"

	"github.com/frahmantamala/hrms-portal/internal"
	"github.com/frahmantamala/hrms-portal/internal/core/common/validation"
)

type SubmitGrievanceDTO struct {
	Type        string `json:"type"`
	Category    string `json:"category"`
	Priority    string `json:"priority"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (d *SubmitGrievanceDTO) Normalize() {
	d.Type = strings.TrimSpace(d.Type)
	d.Category = strings.TrimSpace(d.Category)
	d.Priority = strings.TrimSpace(d.Priority)
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
}

func (d SubmitGrievanceDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("type", d.Type).Required().OneOf(Types...)
	v.Field("category", d.Category).Required().OneOf(Categories...)
	v.Field("priority", d.Priority).Required().OneOf(Priorities...)
	v.Field("title", d.Title).Required().MaxLength(200)
	v.Field("description", d.Description).Required().MaxLength(5000)
	return v.Validate()
}

type ResolveGrievanceDTO struct {
	Resolution string `json:"resolution"`
}

func (d ResolveGrievanceDTO) Validate() *internal.AppError {
	if strings.TrimSpace(d.Resolution) == "" {
		return internal.NewValidationFieldError("resolution", "Resolution details are required", internal.ErrCodeMissingResolution)
	}
	return nil
}
