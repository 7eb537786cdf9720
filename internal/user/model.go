package user

import "time"

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RegisterRequest payload for account creation.
// swagger:model RegisterRequest
type RegisterRequest struct {
	Email    string `json:"email"    example:"test@example.com"`
	Password string `json:"password" example:"secret123"`
	Name     string `json:"name"     example:"John Doe"`
}

// LoginRequest payload for authentication.
// swagger:model LoginRequest
type LoginRequest struct {
	Email    string `json:"email"    example:"test@example.com"`
	Password string `json:"password" example:"secret123"`
}

// UpdateRequest payload for partial profile update.
// swagger:model UpdateProfileRequest
type UpdateRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
