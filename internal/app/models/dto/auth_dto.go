package dto

import "github.com/bmvt/backend/internal/app/models"

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" example:"admin@bmvt.local"`
	Password string `json:"password" example:"motdepasse"`
}

// RegisterRequest is shared by self-registration and admin account creation.
type RegisterRequest struct {
	Name     string `json:"name" example:"Awa Diop"`
	Email    string `json:"email" example:"awa@bmvt.sn"`
	Password string `json:"password" example:"motdepasse"`
	Role     string `json:"role,omitempty" example:"Agent"`
}

// UserSummary is the user block returned with a token.
type UserSummary struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// NewUserSummary strips a user down to its public identity.
func NewUserSummary(u *models.User) UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, Role: string(u.Role)}
}

// AuthResponse represents successful authentication response
type AuthResponse struct {
	User  UserSummary `json:"user"`
	Token string      `json:"token"`
}
