package postgres

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/cashdesk-api/internal/domain/repository"
)

var _ repository.DashboardRepository = (*DashboardRepo)(nil)

// DashboardRepo consultas de solo lectura para los KPIs. Ningún filtro incluye DRAFT.
type DashboardRepo struct {
	q Querier
}

// NewDashboardRepository construye el adaptador del dashboard.
func NewDashboardRepository(q Querier) *DashboardRepo {
	return &DashboardRepo{q: q}
}

// scopeFilter condición común: empresa, rango de fechas y sucursal opcional ($1..$4).
const scopeFilter = `
	company_id = $1
	AND date BETWEEN $2 AND $3
	AND ($4::uuid IS NULL OR branch_id = $4::uuid)`

func scopeArgs(s repository.DashboardScope) []any {
	return []any{s.CompanyID, s.From, s.To, s.BranchID}
}

// SumApproved ingresos y egresos APPROVED del período.
func (r *DashboardRepo) SumApproved(ctx context.Context, s repository.DashboardScope) (decimal.Decimal, decimal.Decimal, error) {
	query := `
	SELECT
	    COALESCE(SUM(amount) FILTER (WHERE direction = 'IN'),  0) AS inward,
	    COALESCE(SUM(amount) FILTER (WHERE direction = 'OUT'), 0) AS outward
	FROM movements
	WHERE status = 'APPROVED' AND ` + scopeFilter

	var in, out decimal.Decimal
	if err := r.q.QueryRow(ctx, query, scopeArgs(s)...).Scan(&in, &out); err != nil {
		return decimal.Zero, decimal.Zero, wrap("dashboard.SumApproved", err)
	}
	return in, out, nil
}

// CountPending movimientos SUBMITTED del período.
func (r *DashboardRepo) CountPending(ctx context.Context, s repository.DashboardScope) (int, error) {
	query := `SELECT COUNT(*) FROM movements WHERE status = 'SUBMITTED' AND ` + scopeFilter
	var n int
	if err := r.q.QueryRow(ctx, query, scopeArgs(s)...).Scan(&n); err != nil {
		return 0, wrap("dashboard.CountPending", err)
	}
	return n, nil
}

// TopOutwardCategories categorías con mayor egreso aprobado.
func (r *DashboardRepo) TopOutwardCategories(ctx context.Context, s repository.DashboardScope, limit int) ([]repository.CategoryTotal, error) {
	query := `
	SELECT category_id, SUM(amount) AS total, COUNT(*) AS n
	FROM movements
	WHERE status = 'APPROVED' AND direction = 'OUT' AND ` + scopeFilter + `
	GROUP BY category_id
	ORDER BY total DESC
	LIMIT $5`
	rows, err := r.q.Query(ctx, query, append(scopeArgs(s), limit)...)
	if err != nil {
		return nil, wrap("dashboard.TopOutwardCategories", err)
	}
	defer rows.Close()

	var out []repository.CategoryTotal
	for rows.Next() {
		var c repository.CategoryTotal
		if err := rows.Scan(&c.CategoryID, &c.Total, &c.Count); err != nil {
			return nil, wrap("dashboard.TopOutwardCategories scan", err)
		}
		out = append(out, c)
	}
	return out, wrap("dashboard.TopOutwardCategories", rows.Err())
}

// CustodyTotals custodias activas y saldo total en ellas.
func (r *DashboardRepo) CustodyTotals(ctx context.Context, companyID string) (int, decimal.Decimal, error) {
	const query = `
	SELECT COUNT(*), COALESCE(SUM(b.balance), 0)
	FROM (
	    SELECT c.opening_balance + COALESCE(SUM(
	        CASE WHEN t.kind IN ('SPEND', 'SETTLEMENT') THEN -t.amount ELSE t.amount END
	    ), 0) AS balance
	    FROM custodies c
	    LEFT JOIN custody_transactions t ON t.custody_id = c.id
	    WHERE c.company_id = $1 AND c.active
	    GROUP BY c.id, c.opening_balance
	) b`
	var n int
	var total decimal.Decimal
	if err := r.q.QueryRow(ctx, query, companyID).Scan(&n, &total); err != nil {
		return 0, decimal.Zero, wrap("dashboard.CustodyTotals", err)
	}
	return n, total, nil
}
