package database

import (
	"context"
	"log"

	"reportes-ciudadanos/internal/models"
	"reportes-ciudadanos/internal/repository"
)

type SeedUser struct {
	Email    string
	Password string
	Role     models.UserRole
}

// Seed provisions the bootstrap accounts. Existing emails are left untouched.
func Seed(ctx context.Context, users repository.UserStore, accounts []SeedUser) {
	for _, u := range accounts {
		created, err := users.Create(ctx, u.Email, u.Password, u.Role)
		if err != nil {
			log.Printf("failed to create seed user %s: %v", u.Email, err)
			continue
		}
		if !created {
			// already provisioned
			continue
		}
		log.Printf("created seed user: %s (role=%s)", u.Email, u.Role)
	}
}
