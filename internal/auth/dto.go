package auth

import (
	"strings"

	errors "github.com/frahmantamala/hrms-portal/internal"
	"github.com/frahmantamala/hrms-portal/internal/core/common/validation"
)

// LoginDTO is the sign-in form.
type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Next     string `json:"next,omitempty"`
}

func (d *LoginDTO) Normalize() {
	d.Email = strings.TrimSpace(d.Email)
	d.Next = safeNext(d.Next)
}

func (d LoginDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("email", d.Email).Required().MaxLength(254)
	v.Field("password", d.Password).Required()
	return v.Validate()
}

// safeNext keeps post-login redirects on this site.
func safeNext(next string) string {
	next = strings.TrimSpace(next)
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	if strings.HasPrefix(next, "/login") || strings.HasPrefix(next, "/logout") {
		return "/"
	}
	return next
}
