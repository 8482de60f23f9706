package model

import (
	"time"

	"gorm.io/gorm"
)

// Roles assignable to a user. A freshly signed-up user has no role at all
// (empty string) and carries no elevated capability.
const (
	RoleAdmin          = "Admin"
	RoleProjectManager = "ProjectManager"
	RoleDeveloper      = "Developer"
)

type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"type:varchar(32);uniqueIndex:idx_username;not null" json:"username"`
	Email     string         `gorm:"type:varchar(128);uniqueIndex:idx_email;not null" json:"email"`
	Password  string         `gorm:"type:varchar(128);not null" json:"-"`
	Role      string         `gorm:"type:varchar(20);default:'';index:idx_role" json:"role"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "users" }

type UserBrief struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
}

func (u *User) Brief() UserBrief {
	return UserBrief{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
	}
}
