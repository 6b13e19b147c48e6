package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// DashboardScope ventana de agregación. BranchID nil = todas las sucursales.
type DashboardScope struct {
	CompanyID string
	BranchID  *string
	From      time.Time
	To        time.Time
}

// CategoryTotal total aprobado de egresos por categoría.
type CategoryTotal struct {
	CategoryID string
	Total      decimal.Decimal
	Count      int
}

// DashboardRepository consultas de solo lectura para los KPIs.
// Ninguna incluye movimientos en DRAFT.
type DashboardRepository interface {
	// SumApproved suma movimientos APPROVED por dirección dentro del alcance.
	SumApproved(ctx context.Context, scope DashboardScope) (inward, outward decimal.Decimal, err error)

	// CountPending cuenta movimientos SUBMITTED dentro del alcance.
	CountPending(ctx context.Context, scope DashboardScope) (int, error)

	// TopOutwardCategories devuelve las `limit` categorías con más egreso aprobado.
	TopOutwardCategories(ctx context.Context, scope DashboardScope, limit int) ([]CategoryTotal, error)

	// CustodyTotals cantidad de custodias activas y saldo total en ellas.
	CustodyTotals(ctx context.Context, companyID string) (active int, outstanding decimal.Decimal, err error)
}
