package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// DashboardQuery query de GET /api/dashboard/summary. Fechas en formato 2006-01-02;
// vacías = mes en curso.
type DashboardQuery struct {
	From     string `query:"from"`
	To       string `query:"to"`
	BranchID string `query:"branch_id" validate:"omitempty,uuid"`
}

// DashboardSummaryDTO KPIs del período. Los borradores nunca cuentan.
type DashboardSummaryDTO struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`

	ApprovedInward  decimal.Decimal `json:"approved_inward"`  // ingresos aprobados
	ApprovedOutward decimal.Decimal `json:"approved_outward"` // egresos aprobados
	Net             decimal.Decimal `json:"net"`              // inward - outward
	PendingCount    int             `json:"pending_count"`    // movimientos SUBMITTED

	ActiveCustodies    int             `json:"active_custodies"`
	CustodyOutstanding decimal.Decimal `json:"custody_outstanding"` // saldo total en custodias activas

	TopCategories []CategoryTotalDTO `json:"top_categories"`

	// Metadatos del período
	DateLabel string `json:"date_label"` // ej: "Marzo 2026"
}

// CategoryTotalDTO egreso aprobado por categoría.
type CategoryTotalDTO struct {
	CategoryID string          `json:"category_id"`
	Total      decimal.Decimal `json:"total"`
	Count      int             `json:"count"`
}
