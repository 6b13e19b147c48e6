package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/cashdesk-api/internal/domain"
	rules "github.com/jhoicas/cashdesk-api/internal/domain/custody"
	"github.com/jhoicas/cashdesk-api/internal/domain/entity"
	"github.com/jhoicas/cashdesk-api/internal/domain/repository"
)

var (
	_ repository.CustodyRepository = (*CustodyRepo)(nil)
	_ repository.CustodyLedger     = (*LedgerRepo)(nil)
)

const custodyColumns = `id, company_id, employee_id, name, opening_balance, max_limit, active, created_by, created_at, updated_at`

func scanCustody(row pgx.Row) (*entity.Custody, error) {
	var c entity.Custody
	err := row.Scan(&c.ID, &c.CompanyID, &c.EmployeeID, &c.Name, &c.OpeningBalance, &c.MaxLimit,
		&c.Active, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CustodyRepo custodias (sin el libro).
type CustodyRepo struct {
	q Querier
}

// NewCustodyRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCustodyRepository(q Querier) *CustodyRepo {
	return &CustodyRepo{q: q}
}

// Create persiste una custodia nueva.
func (r *CustodyRepo) Create(ctx context.Context, c *entity.Custody) error {
	query := `INSERT INTO custodies (` + custodyColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query, c.ID, c.CompanyID, c.EmployeeID, c.Name, c.OpeningBalance, c.MaxLimit,
		c.Active, c.CreatedBy, c.CreatedAt, c.UpdatedAt)
	return wrap("insert custody", err)
}

// GetByID (nil, nil) si no existe.
func (r *CustodyRepo) GetByID(ctx context.Context, id string) (*entity.Custody, error) {
	c, err := scanCustody(r.q.QueryRow(ctx, `SELECT `+custodyColumns+` FROM custodies WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, wrap("get custody", err)
	}
	return c, nil
}

// ListByCompany custodias de la empresa; employeeID vacío = todas.
func (r *CustodyRepo) ListByCompany(ctx context.Context, companyID, employeeID string) ([]*entity.Custody, error) {
	query := `SELECT ` + custodyColumns + ` FROM custodies
		WHERE company_id = $1 AND ($2 = '' OR employee_id::text = $2)
		ORDER BY active DESC, name`
	rows, err := r.q.Query(ctx, query, companyID, employeeID)
	if err != nil {
		return nil, wrap("list custodies", err)
	}
	defer rows.Close()

	var list []*entity.Custody
	for rows.Next() {
		c, err := scanCustody(rows)
		if err != nil {
			return nil, wrap("scan custody", err)
		}
		list = append(list, c)
	}
	return list, wrap("list custodies", rows.Err())
}

// SetActive activa o desactiva la custodia.
func (r *CustodyRepo) SetActive(ctx context.Context, id string, active bool) error {
	cmd, err := r.q.Exec(ctx, `UPDATE custodies SET active = $2, updated_at = now() WHERE id = $1`, id, active)
	if err != nil {
		return wrap("set custody active", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// LedgerRepo libro de asientos. Es el colaborador autoritativo del saldo.
type LedgerRepo struct {
	q  Querier
	tx *TxRunner
}

// NewLedgerRepository construye el libro. Las lecturas usan q; las escrituras
// abren su propia transacción con tx.
func NewLedgerRepository(q Querier, tx *TxRunner) *LedgerRepo {
	return &LedgerRepo{q: q, tx: tx}
}

const balanceQuery = `
	SELECT c.opening_balance + COALESCE(SUM(
		CASE WHEN t.kind IN ('SPEND', 'SETTLEMENT') THEN -t.amount ELSE t.amount END
	), 0)
	FROM custodies c
	LEFT JOIN custody_transactions t ON t.custody_id = c.id
	WHERE c.id = $1
	GROUP BY c.id, c.opening_balance`

// ComputeBalance saldo de apertura más la suma con signo de los asientos.
func (r *LedgerRepo) ComputeBalance(ctx context.Context, custodyID string) (decimal.Decimal, error) {
	var balance decimal.Decimal
	if err := r.q.QueryRow(ctx, balanceQuery, custodyID).Scan(&balance); err != nil {
		if isNoRows(err) {
			return decimal.Zero, domain.ErrNotFound
		}
		return decimal.Zero, wrap("compute balance", err)
	}
	return balance, nil
}

// ListTransactions asientos en orden cronológico.
func (r *LedgerRepo) ListTransactions(ctx context.Context, custodyID string) ([]*entity.CustodyTransaction, error) {
	const query = `
		SELECT id, custody_id, kind, amount, notes, created_by, created_at, balance_after
		FROM custody_transactions WHERE custody_id = $1
		ORDER BY created_at, seq`
	rows, err := r.q.Query(ctx, query, custodyID)
	if err != nil {
		return nil, wrap("list custody transactions", err)
	}
	defer rows.Close()

	var list []*entity.CustodyTransaction
	for rows.Next() {
		var t entity.CustodyTransaction
		if err := rows.Scan(&t.ID, &t.CustodyID, &t.Kind, &t.Amount, &t.Notes, &t.CreatedBy, &t.CreatedAt, &t.BalanceAfter); err != nil {
			return nil, wrap("scan custody transaction", err)
		}
		list = append(list, &t)
	}
	return list, wrap("list custody transactions", rows.Err())
}

// CommitTransaction bloquea la fila de la custodia (SELECT FOR UPDATE), recalcula
// el saldo desde el libro, valida y agrega el asiento con su saldo resultante.
// Dos gastos concurrentes se serializan en el bloqueo: el segundo ve el saldo ya
// descontado y recibe ErrInsufficientBalance.
func (r *LedgerRepo) CommitTransaction(ctx context.Context, tx *entity.CustodyTransaction) error {
	return r.tx.InTx(ctx, func(q Querier) error {
		c, err := scanCustody(q.QueryRow(ctx, `SELECT `+custodyColumns+` FROM custodies WHERE id = $1 FOR UPDATE`, tx.CustodyID))
		if err != nil {
			if isNoRows(err) {
				return domain.ErrNotFound
			}
			return wrap("lock custody", err)
		}

		var balance decimal.Decimal
		if err := q.QueryRow(ctx, balanceQuery, tx.CustodyID).Scan(&balance); err != nil {
			return wrap("recompute balance", err)
		}
		if err := rules.Check(c, tx.Kind, tx.Amount, balance); err != nil {
			return err
		}

		after := balance.Add(rules.Signed(tx.Kind, tx.Amount))
		const insert = `
			INSERT INTO custody_transactions (id, custody_id, kind, amount, notes, created_by, created_at, balance_after)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING created_at`
		err = q.QueryRow(ctx, insert, tx.ID, tx.CustodyID, tx.Kind, tx.Amount, tx.Notes, tx.CreatedBy, tx.CreatedAt, after).
			Scan(&tx.CreatedAt)
		if err != nil {
			if isCheckViolation(err) {
				return domain.ErrInsufficientBalance
			}
			return wrap("insert custody transaction", err)
		}
		tx.BalanceAfter = after
		return nil
	})
}
