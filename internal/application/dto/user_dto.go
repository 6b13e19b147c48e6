package dto

import "time"

// RegisterRequest entrada para registro (auth).
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"omitempty,max=200"`
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LoginRequest entrada para login. CompanyID elige la membresía; vacío emite un
// token solo de identidad, sin capacidades.
type LoginRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	CompanyID string `json:"company_id" validate:"omitempty,uuid"`
}

// LoginResponse salida con token JWT y capacidades resueltas para la sesión.
type LoginResponse struct {
	Token        string             `json:"token"`
	ExpiresAt    time.Time          `json:"expires_at"`
	User         UserResponse       `json:"user"`
	Role         string             `json:"role"`
	Capabilities CapabilityResponse `json:"capabilities"`
}
