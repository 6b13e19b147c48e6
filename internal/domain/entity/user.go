package entity

import "time"

// Estados de usuario.
const (
	UserStatusActive    = "active"
	UserStatusInactive  = "inactive"
	UserStatusSuspended = "suspended"
)

// User representa un usuario del sistema. El rol vive en Membership, no aquí:
// un mismo usuario puede pertenecer a varias empresas con roles distintos.
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
