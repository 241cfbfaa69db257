package entity

import (
	"time"

	sessionentity "github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/session/entity"
)

// User is a console account as managed by administrators. The logged-in
// account is the session Identity; this is the admin-side record.
type User struct {
	ID          int64              `json:"id"`
	Name        string             `json:"name"`
	Username    string             `json:"username"`
	Email       string             `json:"email,omitempty"`
	Role        sessionentity.Role `json:"role"`
	Hotels      []int64            `json:"hotels,omitempty"`
	Active      bool               `json:"active"`
	LastLoginAt *time.Time         `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time          `json:"createdAt"`
}

// Input is the create/update payload. Password is required on create and
// optional on update (empty keeps the current one).
type Input struct {
	Name     string             `json:"name"`
	Username string             `json:"username"`
	Email    string             `json:"email,omitempty"`
	Password string             `json:"password,omitempty"`
	Role     sessionentity.Role `json:"role"`
	Hotels   []int64            `json:"hotels,omitempty"`
	Active   *bool              `json:"active,omitempty"`
}

// StatusChange enables or disables an account.
type StatusChange struct {
	Active bool `json:"active"`
}
