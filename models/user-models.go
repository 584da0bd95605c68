package models

import "time"

const (
	RoleAdmin        = "admin"
	RoleCollaborator = "collaborator"

	// OAuthPasswordSentinel marks accounts created through Google sign-in,
	// which never authenticate with a password.
	OAuthPasswordSentinel = "oauth"
)

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex;not null" json:"username"`
	Password  string    `gorm:"not null" json:"-"`
	Role      string    `gorm:"not null;default:'collaborator'" json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleCollaborator
}
