package auth

import "reportes-ciudadanos/internal/models"

// Identity is the caller resolved from the session at the request boundary.
// The zero value is the anonymous caller.
type Identity struct {
	Email string
	Role  models.UserRole
}

func (i Identity) Authenticated() bool {
	return i.Email != "" && i.Role != ""
}

func (i Identity) IsAdmin() bool {
	return i.Authenticated() && i.Role == models.RoleAdmin
}
