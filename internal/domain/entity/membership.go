package entity

import "time"

// Membership vincula un usuario con una empresa y su único rol activo en ella.
type Membership struct {
	UserID    string
	CompanyID string
	Role      string  // token crudo tal como se guardó (taxonomía completa o reducida)
	BranchID  *string // sucursal opcional
	CreatedAt time.Time
}
