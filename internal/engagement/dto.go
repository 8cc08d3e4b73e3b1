package engagement

import (
	"strings"
	"time"

	"github.com/frahmantamala/hrms-portal/internal"
	"github.com/frahmantamala/hrms-portal/internal/core/common/validation"
	model "github.com/frahmantamala/hrms-portal/internal/core/datamodel/engagement"
)

type CreateAnnouncementDTO struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Visibility  string `json:"visibility"`
	Department  string `json:"department"`
	ExpiryDate  string `json:"expiryDate"`
	IsPinned    bool   `json:"isPinned"`
}

type createAnnouncementRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Visibility  string     `json:"visibility"`
	Department  string     `json:"department,omitempty"`
	ExpiryDate  *time.Time `json:"expiryDate,omitempty"`
	IsPinned    bool       `json:"isPinned"`
}

func (d *CreateAnnouncementDTO) Normalize() {
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	d.Visibility = strings.TrimSpace(d.Visibility)
	d.Department = strings.TrimSpace(d.Department)
	if d.Visibility == "" {
		d.Visibility = model.VisibilityAll
	}
	if d.Visibility == model.VisibilityAll {
		d.Department = ""
	}
}

func (d CreateAnnouncementDTO) Validate() (*createAnnouncementRequest, *internal.AppError) {
	v := validation.NewValidator()
	v.Field("title", d.Title).Required().MaxLength(200)
	v.Field("description", d.Description).Required().MaxLength(5000)
	v.Field("visibility", d.Visibility).OneOf(Visibilities...)
	if d.Visibility == model.VisibilityDepartment {
		v.Field("department", d.Department).Required()
	}
	if appErr := v.Validate(); appErr != nil {
		return nil, appErr
	}

	expiry, err := validation.ParseDate(d.ExpiryDate)
	if err != nil {
		return nil, internal.NewValidationFieldError("expiryDate", "expiryDate must be a date (YYYY-MM-DD)", internal.ErrCodeInvalidDate)
	}
	req := &createAnnouncementRequest{
		Title:       d.Title,
		Description: d.Description,
		Visibility:  d.Visibility,
		Department:  d.Department,
		IsPinned:    d.IsPinned,
	}
	if !expiry.IsZero() {
		req.ExpiryDate = &expiry
	}
	return req, nil
}

type CreatePollDTO struct {
	Question   string   `json:"question"`
	Options    []string `json:"options"`
	Deadline   string   `json:"deadline"`
	Visibility string   `json:"visibility"`
}

type pollOptionRequest struct {
	Text string `json:"text"`
}

type createPollRequest struct {
	Question   string              `json:"question"`
	Options    []pollOptionRequest `json:"options"`
	Deadline   *time.Time          `json:"deadline,omitempty"`
	Visibility string              `json:"visibility"`
}

func (d CreatePollDTO) Draft() PollDraft {
	return PollDraft{Question: d.Question, Options: d.Options, Deadline: d.Deadline, Visibility: d.Visibility}
}

func (d CreatePollDTO) Validate() (*createPollRequest, *internal.AppError) {
	question := strings.TrimSpace(d.Question)
	visibility := strings.TrimSpace(d.Visibility)
	if visibility == "" {
		visibility = model.VisibilityAll
	}

	v := validation.NewValidator()
	v.Field("question", question).Required().MaxLength(500)
	v.Field("visibility", visibility).OneOf(Visibilities...)
	if appErr := v.Validate(); appErr != nil {
		return nil, appErr
	}

	filled := FilledOptions(d.Options)
	if len(filled) < minPollOptions {
		return nil, internal.NewValidationFieldError("options", "A poll needs at least two non-empty options", internal.ErrCodeInsufficientOptions)
	}

	deadline, err := validation.ParseDate(d.Deadline)
	if err != nil {
		return nil, internal.NewValidationFieldError("deadline", "deadline must be a date (YYYY-MM-DD)", internal.ErrCodeInvalidDate)
	}

	req := &createPollRequest{Question: question, Visibility: visibility}
	for _, o := range filled {
		req.Options = append(req.Options, pollOptionRequest{Text: o})
	}
	if !deadline.IsZero() {
		req.Deadline = &deadline
	}
	return req, nil
}

type VoteDTO struct {
	OptionIndex int `json:"optionIndex"`
}
