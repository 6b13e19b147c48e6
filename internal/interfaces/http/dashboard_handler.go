package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/cashdesk-api/internal/application/analytics"
	"github.com/jhoicas/cashdesk-api/internal/application/dto"
)

// DashboardHandler maneja los endpoints del módulo de Dashboard.
type DashboardHandler struct {
	uc *appanalytics.DashboardUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// GetSummary devuelve los KPIs del período: ingresos y egresos aprobados,
// pendientes de aprobación, custodias activas y top de categorías de egreso.
// GET /api/dashboard/summary?from=2026-03-01&to=2026-03-31
//
// Sin fechas se usa el mes en curso. Un usuario asignado a una sucursal solo ve
// esa sucursal aunque pida otra.
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	var q dto.DashboardQuery
	if err := parseQuery(c, &q); err != nil {
		return writeError(c, err)
	}
	summary, err := h.uc.GetSummary(c.UserContext(), GetPrincipal(c), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(summary)
}
