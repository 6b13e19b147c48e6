package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/cashdesk-api/internal/application/usecase"
	"github.com/jhoicas/cashdesk-api/internal/domain/repository"
)

// Ensure TxRunner implements usecase.CompanyTxRunner.
var _ usecase.CompanyTxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// InTx inicia una transacción, ejecuta fn con la tx como Querier y hace Commit o Rollback.
// Un contexto cancelado a mitad de camino deja la transacción sin confirmar.
func (r *TxRunner) InTx(ctx context.Context, fn func(q Querier) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return wrap("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return wrap("commit transaction", err)
	}
	return nil
}

// RunCompany ejecuta fn con repos de empresa y membresía atados a la misma tx.
func (r *TxRunner) RunCompany(ctx context.Context, fn func(
	companies repository.CompanyRepository,
	memberships repository.MembershipRepository,
) error) error {
	return r.InTx(ctx, func(q Querier) error {
		return fn(NewCompanyRepository(q), NewMembershipRepository(q))
	})
}
