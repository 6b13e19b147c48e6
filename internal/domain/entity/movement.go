package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Dirección del movimiento de caja.
const (
	DirectionIN  = "IN"  // ingreso
	DirectionOUT = "OUT" // egreso
)

// Estados del ciclo de vida de un movimiento.
const (
	MovementStatusDraft     = "DRAFT"
	MovementStatusSubmitted = "SUBMITTED"
	MovementStatusApproved  = "APPROVED"
	MovementStatusRejected  = "REJECTED"
)

// Movement evento de caja (ingreso o egreso) sujeto a flujo de aprobación.
type Movement struct {
	ID            string
	CompanyID     string
	BranchID      *string
	Direction     string
	Amount        decimal.Decimal // siempre > 0; la dirección da el signo
	AccountID     string
	CategoryID    string
	CostCenterID  *string
	Description   string
	Date          time.Time // fecha contable del movimiento
	Status        string
	CreatedBy     string
	ReviewedBy    *string
	ReviewedAt    *time.Time
	ReviewComment *string // motivo de rechazo o comentario de aprobación
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsTerminal informa si el movimiento ya fue aprobado o rechazado.
func (m *Movement) IsTerminal() bool {
	return m.Status == MovementStatusApproved || m.Status == MovementStatusRejected
}
