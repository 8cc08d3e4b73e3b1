package session

import "time"

// Session is one signed-in browser. TokenHash is the digest of the cookie
// value; the raw token only exists in the cookie.
type Session struct {
	ID           string    `gorm:"column:id;primaryKey"`
	TokenHash    string    `gorm:"column:token_hash;uniqueIndex;not null"`
	UserID       string    `gorm:"column:user_id;not null"`
	EmployeeID   string    `gorm:"column:employee_id"`
	Email        string    `gorm:"column:email;not null"`
	Name         string    `gorm:"column:name"`
	Role         string    `gorm:"column:role;not null"`
	BackendToken string    `gorm:"column:backend_token;not null"`
	Flash        string    `gorm:"column:flash;not null;default:'[]'"`
	ExpiresAt    time.Time `gorm:"column:expires_at;index;not null"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (Session) TableName() string {
	return "portal_sessions"
}
