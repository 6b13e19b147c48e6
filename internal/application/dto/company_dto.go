package dto

import "time"

// CreateCompanyRequest entrada para crear una empresa. El creador queda como company_owner.
type CreateCompanyRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=200"`
	TaxID    string `json:"tax_id" validate:"omitempty,max=30"`
	Currency string `json:"currency" validate:"omitempty,len=3"`
}

// CompanyResponse salida de una empresa.
type CompanyResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	TaxID     string    `json:"tax_id"`
	Currency  string    `json:"currency"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// AssignRoleRequest asigna (o reemplaza) el rol de un usuario en la empresa.
// Acepta tokens de cualquiera de las dos taxonomías.
type AssignRoleRequest struct {
	UserID   string  `json:"user_id" validate:"required,uuid"`
	Role     string  `json:"role" validate:"required,max=40"`
	BranchID *string `json:"branch_id,omitempty" validate:"omitempty,uuid"`
}

// MembershipResponse membresía tal como quedó persistida.
type MembershipResponse struct {
	UserID    string  `json:"user_id"`
	CompanyID string  `json:"company_id"`
	Role      string  `json:"role"`
	BranchID  *string `json:"branch_id,omitempty"`
}
