package auth

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/hrms-portal/internal/core/datamodel/session"
	"github.com/golang-jwt/jwt/v5"
)

// SessionRepository persists signed-in sessions keyed by token digest.
type SessionRepository interface {
	Create(ctx context.Context, s *session.Session) error
	FindByTokenHash(ctx context.Context, tokenHash string) (*session.Session, error)
	ModifyFlash(ctx context.Context, sessionID string, fn func(current string) (string, error)) error
	Delete(ctx context.Context, sessionID string) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

var ErrSessionNotFound = errors.New("session not found")

// Claims are the fields the portal reads from the backend-issued JWT.
type Claims struct {
	UserID     string `json:"id"`
	AltUserID  string `json:"userId"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	EmployeeID string `json:"employeeId"`
	jwt.RegisteredClaims
}

func (c *Claims) subject() string {
	switch {
	case c.UserID != "":
		return c.UserID
	case c.AltUserID != "":
		return c.AltUserID
	default:
		return c.Subject
	}
}

type backendUser struct {
	ID         string `json:"_id"`
	AltID      string `json:"id"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	EmployeeID string `json:"employeeId"`
	Name       string `json:"name"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  backendUser `json:"user"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

const maxFlashNotices = 10
