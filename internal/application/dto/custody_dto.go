package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateCustodyRequest body para POST /api/custodies.
type CreateCustodyRequest struct {
	EmployeeID     string           `json:"employee_id" validate:"required,uuid"`
	Name           string           `json:"name" validate:"required,min=1,max=120"`
	OpeningBalance decimal.Decimal  `json:"opening_balance"`
	MaxLimit       *decimal.Decimal `json:"max_limit,omitempty"`
}

// CustodyTransactionRequest body para POST /api/custodies/:id/transactions.
type CustodyTransactionRequest struct {
	Kind   string          `json:"kind" validate:"required,oneof=ISSUE SPEND RETURN SETTLEMENT"`
	Amount decimal.Decimal `json:"amount"`
	Notes  *string         `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// CustodyResponse custodia con saldo leído del libro en esta misma petición.
type CustodyResponse struct {
	ID             string           `json:"id"`
	CompanyID      string           `json:"company_id"`
	EmployeeID     string           `json:"employee_id"`
	Name           string           `json:"name"`
	OpeningBalance decimal.Decimal  `json:"opening_balance"`
	MaxLimit       *decimal.Decimal `json:"max_limit,omitempty"`
	CurrentBalance decimal.Decimal  `json:"current_balance"`
	Active         bool             `json:"active"`
	CreatedAt      time.Time        `json:"created_at"`
}

// CustodyTransactionResponse asiento confirmado.
type CustodyTransactionResponse struct {
	ID           string          `json:"id"`
	CustodyID    string          `json:"custody_id"`
	Kind         string          `json:"kind"`
	Amount       decimal.Decimal `json:"amount"`
	Notes        *string         `json:"notes,omitempty"`
	CreatedBy    string          `json:"created_by"`
	CreatedAt    time.Time       `json:"created_at"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
}

// CustodyStatementResponse libro de la custodia en orden cronológico.
type CustodyStatementResponse struct {
	Custody      CustodyResponse              `json:"custody"`
	Transactions []CustodyTransactionResponse `json:"transactions"`
}
