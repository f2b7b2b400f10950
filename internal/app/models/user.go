package models

import (
	"time"

	"github.com/bmvt/backend/internal/app/models/dto/enums"
)

// User defines the user model based on the 'users' table
type User struct {
	ID           int64          `json:"id" db:"id" example:"1"`
	Name         string         `json:"name" db:"name" example:"Awa Diop"`
	Email        string         `json:"email" db:"email" example:"awa@bmvt.sn"`
	Role         enums.RoleType `json:"role" db:"role" example:"Agent"`
	PasswordHash string         `json:"-" db:"password_hash"`
	LastLoginAt  *time.Time     `json:"lastLoginAt" db:"last_login_at"`
	CreatedAt    time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time      `json:"updatedAt" db:"updated_at"`
}
