package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateMovementRequest body para POST /api/movements (queda en DRAFT).
type CreateMovementRequest struct {
	Direction    string          `json:"direction" validate:"required,oneof=IN OUT"`
	Amount       decimal.Decimal `json:"amount"`
	AccountID    string          `json:"account_id" validate:"required"`
	CategoryID   string          `json:"category_id" validate:"required"`
	CostCenterID *string         `json:"cost_center_id,omitempty"`
	BranchID     *string         `json:"branch_id,omitempty" validate:"omitempty,uuid"`
	Description  string          `json:"description" validate:"max=500"`
	Date         time.Time       `json:"date" validate:"required"`
}

// UpdateMovementRequest body para PUT /api/movements/:id (solo DRAFT).
type UpdateMovementRequest struct {
	Amount       *decimal.Decimal `json:"amount,omitempty"`
	AccountID    *string          `json:"account_id,omitempty"`
	CategoryID   *string          `json:"category_id,omitempty"`
	CostCenterID *string          `json:"cost_center_id,omitempty"`
	Description  *string          `json:"description,omitempty" validate:"omitempty,max=500"`
	Date         *time.Time       `json:"date,omitempty"`
}

// ReviewMovementRequest body para approve/reject. Comment es obligatorio al rechazar.
type ReviewMovementRequest struct {
	Comment string `json:"comment" validate:"max=500"`
}

// ListMovementsRequest query de GET /api/movements.
type ListMovementsRequest struct {
	PageRequest
	Status string `query:"status" validate:"omitempty,oneof=DRAFT SUBMITTED APPROVED REJECTED"`
	Mine   bool   `query:"mine"`
	From   string `query:"from"`
	To     string `query:"to"`
}

// MovementResponse salida de un movimiento.
type MovementResponse struct {
	ID                 string          `json:"id"`
	CompanyID          string          `json:"company_id"`
	BranchID           *string         `json:"branch_id,omitempty"`
	Direction          string          `json:"direction"`
	Amount             decimal.Decimal `json:"amount"`
	AccountID          string          `json:"account_id"`
	CategoryID         string          `json:"category_id"`
	CostCenterID       *string         `json:"cost_center_id,omitempty"`
	Description        string          `json:"description"`
	Date               time.Time       `json:"date"`
	Status             string          `json:"status"`
	CreatedBy          string          `json:"created_by"`
	ReviewedBy         *string         `json:"reviewed_by,omitempty"`
	ReviewedAt         *time.Time      `json:"reviewed_at,omitempty"`
	ReviewComment      *string         `json:"review_comment,omitempty"`
	DuplicateSuspected bool            `json:"duplicate_suspected"`
	DuplicateOf        []string        `json:"duplicate_of,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// MovementListResponse lista paginada de movimientos.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
