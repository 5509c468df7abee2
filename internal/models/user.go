package models

import "gorm.io/gorm"

type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleUser  UserRole = "usuario"
)

// ParseRole maps provisioning input to a stored role. "user" is kept as an
// alias of the regular role.
func ParseRole(s string) (UserRole, bool) {
	switch s {
	case "", string(RoleUser), "user":
		return RoleUser, true
	case string(RoleAdmin):
		return RoleAdmin, true
	}
	return "", false
}

type User struct {
	gorm.Model
	Email        string   `gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string   `gorm:"not null"`
	Role         UserRole `gorm:"type:varchar(20);not null;default:'usuario'"`
}
