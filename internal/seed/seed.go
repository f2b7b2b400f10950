// Package seed creates the data a fresh installation needs to be usable.
package seed

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/bmvt/backend/internal/app/models"
	"github.com/bmvt/backend/internal/app/models/dto/enums"
	"github.com/bmvt/backend/internal/pkg/auth"
	"github.com/bmvt/backend/internal/pkg/validation"
)

// AdminStore is the user persistence needed to seed the first account.
type AdminStore interface {
	EmailExists(ctx context.Context, email string, excludeID int64) (bool, error)
	Create(ctx context.Context, user *models.User) error
}

// Admin describes the bootstrap administrator.
type Admin struct {
	Name     string
	Email    string
	Password string
}

// CreateDefaultData creates the bootstrap administrator when a password is
// configured and no account uses its email yet. It returns true when the
// account was created.
func CreateDefaultData(ctx context.Context, users AdminStore, admin Admin, lgr zerolog.Logger) (bool, error) {
	email := strings.ToLower(strings.TrimSpace(admin.Email))
	if admin.Password == "" || email == "" {
		lgr.Debug().Msg("No admin password configured, skipping seed")
		return false, nil
	}
	if !validation.IsEmail(email) {
		return false, fmt.Errorf("seed admin email %q is invalid", email)
	}
	if len(admin.Password) < validation.PasswordMinLength {
		return false, fmt.Errorf("seed admin password must be at least %d characters", validation.PasswordMinLength)
	}

	exists, err := users.EmailExists(ctx, email, 0)
	if err != nil {
		return false, fmt.Errorf("checking seed admin: %w", err)
	}
	if exists {
		lgr.Debug().Str("email", email).Msg("Admin account already present")
		return false, nil
	}

	hash, err := auth.HashPassword(admin.Password)
	if err != nil {
		return false, fmt.Errorf("hashing seed admin password: %w", err)
	}
	name := strings.TrimSpace(admin.Name)
	if name == "" {
		name = "Administrateur"
	}
	user := &models.User{Name: name, Email: email, Role: enums.RoleAdmin, PasswordHash: hash}
	if err := users.Create(ctx, user); err != nil {
		return false, fmt.Errorf("creating seed admin: %w", err)
	}
	lgr.Info().Int64("userID", user.ID).Str("email", email).Msg("Admin account created")
	return true, nil
}
