// Package custody casos de uso de custodias (caja chica) y su libro de asientos.
package custody

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/cashdesk-api/internal/application/dto"
	"github.com/jhoicas/cashdesk-api/internal/application/session"
	"github.com/jhoicas/cashdesk-api/internal/domain"
	"github.com/jhoicas/cashdesk-api/internal/domain/access"
	rules "github.com/jhoicas/cashdesk-api/internal/domain/custody"
	"github.com/jhoicas/cashdesk-api/internal/domain/entity"
	"github.com/jhoicas/cashdesk-api/internal/domain/repository"
	"github.com/jhoicas/cashdesk-api/pkg/logger"
)

// UseCase administra custodias y registra asientos contra el libro autoritativo.
type UseCase struct {
	custodies   repository.CustodyRepository
	ledger      repository.CustodyLedger
	memberships repository.MembershipRepository
	locker      Locker
	lockTTL     time.Duration
	log         *logger.Logger
	now         func() time.Time
}

// NewUseCase construye el caso de uso. locker nil equivale a NopLocker.
func NewUseCase(
	custodies repository.CustodyRepository,
	ledger repository.CustodyLedger,
	memberships repository.MembershipRepository,
	locker Locker,
	lockTTL time.Duration,
	log *logger.Logger,
) *UseCase {
	if locker == nil {
		locker = NopLocker{}
	}
	if lockTTL <= 0 {
		lockTTL = 5 * time.Second
	}
	return &UseCase{
		custodies:   custodies,
		ledger:      ledger,
		memberships: memberships,
		locker:      locker,
		lockTTL:     lockTTL,
		log:         log.Component("custody"),
		now:         time.Now,
	}
}

// Create abre una custodia para un empleado de la empresa.
func (uc *UseCase) Create(ctx context.Context, p *session.Principal, in dto.CreateCustodyRequest) (*dto.CustodyResponse, error) {
	if !p.Caps.Has(access.PermCustodyManage) {
		return nil, domain.ErrPermissionDenied
	}
	name := strings.TrimSpace(in.Name)
	if name == "" || in.OpeningBalance.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	if in.MaxLimit != nil && (!in.MaxLimit.IsPositive() || in.OpeningBalance.GreaterThan(*in.MaxLimit)) {
		return nil, domain.ErrLimitExceeded
	}
	if _, err := uc.memberships.FetchMembership(ctx, in.EmployeeID, p.CompanyID); err != nil {
		if errors.Is(err, domain.ErrNoPermissionsAssigned) {
			// El titular debe pertenecer a la empresa.
			return nil, domain.ErrInvalidInput
		}
		return nil, err
	}

	now := uc.now()
	c := &entity.Custody{
		ID:             uuid.New().String(),
		CompanyID:      p.CompanyID,
		EmployeeID:     in.EmployeeID,
		Name:           name,
		OpeningBalance: in.OpeningBalance,
		MaxLimit:       in.MaxLimit,
		Active:         true,
		CreatedBy:      p.UserID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := uc.custodies.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("custody: crear: %w", err)
	}
	return toCustodyResponse(c, c.OpeningBalance), nil
}

// ApplyTransaction registra un asiento. Orden: autorizar, validar localmente,
// leer saldo fresco, prevalidar, lock distribuido (best-effort) y confirmar
// atómicamente en la BD. Si algo falla no queda ningún estado modificado.
func (uc *UseCase) ApplyTransaction(ctx context.Context, p *session.Principal, custodyID string, in dto.CustodyTransactionRequest) (*dto.CustodyTransactionResponse, error) {
	c, err := uc.load(ctx, p, custodyID)
	if err != nil {
		return nil, err
	}
	if !rules.CanRecord(p.Caps, p.UserID, c, in.Kind) {
		if !rules.ValidKind(in.Kind) {
			return nil, domain.ErrInvalidInput
		}
		return nil, domain.ErrPermissionDenied
	}
	if !in.Amount.IsPositive() {
		return nil, domain.ErrInvalidInput
	}
	if !c.Active {
		return nil, domain.ErrCustodyInactive
	}

	balance, err := uc.ledger.ComputeBalance(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	if err := rules.Check(c, in.Kind, in.Amount, balance); err != nil {
		if errors.Is(err, domain.ErrInsufficientBalance) {
			uc.log.Warn().Str("custody_id", c.ID).Str("amount", in.Amount.String()).Str("balance", balance.String()).Msg("asiento rechazado: saldo insuficiente")
		}
		return nil, err
	}

	release, err := uc.locker.Obtain(ctx, "custody:"+c.ID, uc.lockTTL)
	if err != nil {
		uc.log.Warn().Err(err).Str("custody_id", c.ID).Msg("lock distribuido no disponible; se confía en el bloqueo de fila")
	} else {
		defer release()
	}

	tx := &entity.CustodyTransaction{
		ID:        uuid.New().String(),
		CustodyID: c.ID,
		Kind:      in.Kind,
		Amount:    in.Amount,
		Notes:     in.Notes,
		CreatedBy: p.UserID,
		CreatedAt: uc.now(),
	}
	if err := uc.ledger.CommitTransaction(ctx, tx); err != nil {
		if errors.Is(err, domain.ErrInsufficientBalance) {
			uc.log.Warn().Str("custody_id", c.ID).Msg("asiento rechazado al confirmar: saldo insuficiente")
		}
		return nil, err
	}
	uc.log.Info().Str("custody_id", c.ID).Str("kind", tx.Kind).Str("amount", tx.Amount.String()).
		Str("balance_after", tx.BalanceAfter.String()).Msg("asiento confirmado")
	return toTransactionResponse(tx), nil
}

// Get devuelve la custodia con su saldo actual.
func (uc *UseCase) Get(ctx context.Context, p *session.Principal, id string) (*dto.CustodyResponse, error) {
	c, err := uc.load(ctx, p, id)
	if err != nil {
		return nil, err
	}
	balance, err := uc.ledger.ComputeBalance(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	return toCustodyResponse(c, balance), nil
}

// List custodias visibles para el actor: todas con custody:manage, si no solo las propias.
func (uc *UseCase) List(ctx context.Context, p *session.Principal) ([]dto.CustodyResponse, error) {
	if !p.Caps.Has(access.PermCustodyView) {
		return nil, domain.ErrPermissionDenied
	}
	// Filtro por empleado: vacío (todas) solo para quien administra custodias.
	employee := access.Guard(p.Caps, access.Require(access.ModeAny, access.PermCustodyManage),
		func() string { return "" },
		access.Content(func() string { return p.UserID }))
	list, err := uc.custodies.ListByCompany(ctx, p.CompanyID, employee)
	if err != nil {
		return nil, fmt.Errorf("custody: listar: %w", err)
	}
	out := make([]dto.CustodyResponse, 0, len(list))
	for _, c := range list {
		balance, err := uc.ledger.ComputeBalance(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, *toCustodyResponse(c, balance))
	}
	return out, nil
}

// Statement libro de la custodia. El saldo se calcula sobre la misma lista de asientos
// que se devuelve, para que ambos sean coherentes.
func (uc *UseCase) Statement(ctx context.Context, p *session.Principal, id string) (*dto.CustodyStatementResponse, error) {
	c, err := uc.load(ctx, p, id)
	if err != nil {
		return nil, err
	}
	txs, err := uc.ledger.ListTransactions(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	items := make([]dto.CustodyTransactionResponse, 0, len(txs))
	for _, tx := range txs {
		items = append(items, *toTransactionResponse(tx))
	}
	return &dto.CustodyStatementResponse{
		Custody:      *toCustodyResponse(c, rules.CurrentBalance(c.OpeningBalance, txs)),
		Transactions: items,
	}, nil
}

// Deactivate cierra la custodia; no admite más asientos.
func (uc *UseCase) Deactivate(ctx context.Context, p *session.Principal, id string) error {
	if !p.Caps.Has(access.PermCustodyManage) {
		return domain.ErrPermissionDenied
	}
	c, err := uc.load(ctx, p, id)
	if err != nil {
		return err
	}
	if !c.Active {
		return domain.ErrCustodyInactive
	}
	return uc.custodies.SetActive(ctx, c.ID, false)
}

func (uc *UseCase) load(ctx context.Context, p *session.Principal, id string) (*entity.Custody, error) {
	if !p.Caps.Has(access.PermCustodyView) {
		return nil, domain.ErrPermissionDenied
	}
	c, err := uc.custodies.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil || c.CompanyID != p.CompanyID || !rules.CanView(p.Caps, p.UserID, c) {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func toCustodyResponse(c *entity.Custody, balance decimal.Decimal) *dto.CustodyResponse {
	return &dto.CustodyResponse{
		ID:             c.ID,
		CompanyID:      c.CompanyID,
		EmployeeID:     c.EmployeeID,
		Name:           c.Name,
		OpeningBalance: c.OpeningBalance,
		MaxLimit:       c.MaxLimit,
		CurrentBalance: balance,
		Active:         c.Active,
		CreatedAt:      c.CreatedAt,
	}
}

func toTransactionResponse(tx *entity.CustodyTransaction) *dto.CustodyTransactionResponse {
	return &dto.CustodyTransactionResponse{
		ID:           tx.ID,
		CustodyID:    tx.CustodyID,
		Kind:         tx.Kind,
		Amount:       tx.Amount,
		Notes:        tx.Notes,
		CreatedBy:    tx.CreatedBy,
		CreatedAt:    tx.CreatedAt,
		BalanceAfter: tx.BalanceAfter,
	}
}
