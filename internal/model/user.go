package model

import (
	"time"

	"github.com/google/uuid"
)

// User roles
const (
	RoleFarmer   = "farmer"
	RoleConsumer = "consumer"
)

// User represents a marketplace account, either a farmer or a consumer.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	FullName     string    `json:"fullName" db:"full_name"`
	Phone        string    `json:"phone,omitempty" db:"phone"`
	Role         string    `json:"role" db:"role"`
	Address      string    `json:"address,omitempty" db:"address"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	IsActive     bool      `json:"isActive" db:"is_active"`
}

// RegisterRequest represents the registration form payload.
type RegisterRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	FullName        string `json:"fullName"`
	Phone           string `json:"phone"`
	Role            string `json:"role"`
	Address         string `json:"address"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// LoginRequest represents the login form payload.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
