package models

import "time"

// Role tags the privilege level of a user
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User represents a registered account
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Not serialized
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// PublicUser is the only view of a user handed back after registration
type PublicUser struct {
	Email    string `json:"email"`
	Username string `json:"username"`
}

// Public strips everything but email and username
func (u *User) Public() *PublicUser {
	return &PublicUser{Email: u.Email, Username: u.Username}
}

// RegisterInput is the registration form payload
type RegisterInput struct {
	Name     string `json:"name" validate:"required"`
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,emailshape"`
	Password string `json:"password" validate:"required"`
	Role     Role   `json:"role"`
}

// LoginInput is the login form payload
type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}
