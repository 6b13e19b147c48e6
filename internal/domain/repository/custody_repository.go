package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/cashdesk-api/internal/domain/entity"
)

// CustodyRepository puerto de persistencia de custodias (no del libro).
type CustodyRepository interface {
	Create(ctx context.Context, c *entity.Custody) error
	GetByID(ctx context.Context, id string) (*entity.Custody, error)
	ListByCompany(ctx context.Context, companyID string, employeeID string) ([]*entity.Custody, error)
	SetActive(ctx context.Context, id string, active bool) error
}

// CustodyLedger colaborador autoritativo del libro de custodias.
type CustodyLedger interface {
	// ComputeBalance saldo autoritativo mantenido por la BD.
	ComputeBalance(ctx context.Context, custodyID string) (decimal.Decimal, error)
	// ListTransactions asientos confirmados en orden de creación.
	ListTransactions(ctx context.Context, custodyID string) ([]*entity.CustodyTransaction, error)
	// CommitTransaction todo o nada: bloquea la custodia, revalida el saldo y
	// agrega el asiento. Devuelve domain.ErrInsufficientBalance si el saldo no alcanza
	// en el momento de confirmar. Completa tx.ID, tx.CreatedAt y tx.BalanceAfter.
	CommitTransaction(ctx context.Context, tx *entity.CustodyTransaction) error
}
