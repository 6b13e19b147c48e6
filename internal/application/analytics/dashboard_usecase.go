// Package analytics contiene el agregador del dashboard de caja.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/cashdesk-api/internal/application/dto"
	"github.com/jhoicas/cashdesk-api/internal/application/session"
	"github.com/jhoicas/cashdesk-api/internal/domain"
	"github.com/jhoicas/cashdesk-api/internal/domain/access"
	"github.com/jhoicas/cashdesk-api/internal/domain/repository"
)

const dashboardTopCategories = 5 // categorías en el widget de egresos

var dashboardRequirement = access.Require(access.ModeAny, access.PermDashboardView)

// DashboardUseCase genera los KPIs del período.
//
// Fuente de datos: DashboardRepository (consultas read-only). Nada se cachea
// más allá de la petición.
type DashboardUseCase struct {
	repo repository.DashboardRepository
	now  func() time.Time
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(repo repository.DashboardRepository) *DashboardUseCase {
	return &DashboardUseCase{repo: repo, now: time.Now}
}

// GetSummary construye el DashboardSummaryDTO para la empresa del actor.
//
// Cuatro llamadas en paralelo:
//  1. SumApproved          → ApprovedInward + ApprovedOutward
//  2. CountPending         → PendingCount
//  3. TopOutwardCategories → TopCategories
//  4. CustodyTotals        → ActiveCustodies + CustodyOutstanding
func (uc *DashboardUseCase) GetSummary(ctx context.Context, p *session.Principal, q dto.DashboardQuery) (*dto.DashboardSummaryDTO, error) {
	var out *dto.DashboardSummaryDTO
	err := access.GuardErr(p.Caps, dashboardRequirement, func() error {
		var err error
		out, err = uc.summary(ctx, p, q)
		return err
	})
	return out, err
}

func (uc *DashboardUseCase) summary(ctx context.Context, p *session.Principal, q dto.DashboardQuery) (*dto.DashboardSummaryDTO, error) {
	scope, err := uc.scope(p, q)
	if err != nil {
		return nil, err
	}

	type sumsResult struct {
		inward, outward decimal.Decimal
		err             error
	}
	type pendingResult struct {
		count int
		err   error
	}
	type topResult struct {
		cats []repository.CategoryTotal
		err  error
	}
	type custodyResult struct {
		active      int
		outstanding decimal.Decimal
		err         error
	}

	sumsCh := make(chan sumsResult, 1)
	pendingCh := make(chan pendingResult, 1)
	topCh := make(chan topResult, 1)
	custodyCh := make(chan custodyResult, 1)

	go func() {
		in, out, err := uc.repo.SumApproved(ctx, scope)
		sumsCh <- sumsResult{in, out, err}
	}()
	go func() {
		n, err := uc.repo.CountPending(ctx, scope)
		pendingCh <- pendingResult{n, err}
	}()
	go func() {
		cats, err := uc.repo.TopOutwardCategories(ctx, scope, dashboardTopCategories)
		topCh <- topResult{cats, err}
	}()
	go func() {
		n, total, err := uc.repo.CustodyTotals(ctx, scope.CompanyID)
		custodyCh <- custodyResult{n, total, err}
	}()

	sums := <-sumsCh
	pending := <-pendingCh
	top := <-topCh
	cust := <-custodyCh

	if sums.err != nil {
		return nil, fmt.Errorf("dashboard: totales aprobados: %w", sums.err)
	}
	if pending.err != nil {
		return nil, fmt.Errorf("dashboard: pendientes: %w", pending.err)
	}
	if top.err != nil {
		return nil, fmt.Errorf("dashboard: top categorías: %w", top.err)
	}
	if cust.err != nil {
		return nil, fmt.Errorf("dashboard: custodias: %w", cust.err)
	}

	cats := make([]dto.CategoryTotalDTO, 0, len(top.cats))
	for _, c := range top.cats {
		cats = append(cats, dto.CategoryTotalDTO{CategoryID: c.CategoryID, Total: c.Total.Round(2), Count: c.Count})
	}

	return &dto.DashboardSummaryDTO{
		From:               scope.From,
		To:                 scope.To,
		ApprovedInward:     sums.inward.Round(2),
		ApprovedOutward:    sums.outward.Round(2),
		Net:                sums.inward.Sub(sums.outward).Round(2),
		PendingCount:       pending.count,
		ActiveCustodies:    cust.active,
		CustodyOutstanding: cust.outstanding.Round(2),
		TopCategories:      cats,
		DateLabel:          periodLabel(scope.From, scope.To),
	}, nil
}

// scope rango pedido o, por defecto, el mes en curso hasta hoy 23:59:59.
// Un usuario atado a una sucursal solo ve esa sucursal.
func (uc *DashboardUseCase) scope(p *session.Principal, q dto.DashboardQuery) (repository.DashboardScope, error) {
	now := uc.now()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	to := todayStart.Add(24*time.Hour - time.Nanosecond)

	if q.From != "" {
		t, err := time.ParseInLocation("2006-01-02", q.From, now.Location())
		if err != nil {
			return repository.DashboardScope{}, domain.ErrInvalidInput
		}
		from = t
	}
	if q.To != "" {
		t, err := time.ParseInLocation("2006-01-02", q.To, now.Location())
		if err != nil {
			return repository.DashboardScope{}, domain.ErrInvalidInput
		}
		to = t.Add(24*time.Hour - time.Nanosecond)
	}
	if to.Before(from) {
		return repository.DashboardScope{}, domain.ErrInvalidInput
	}

	scope := repository.DashboardScope{CompanyID: p.CompanyID, From: from, To: to}
	switch {
	case p.BranchID != nil:
		scope.BranchID = p.BranchID
	case q.BranchID != "":
		b := q.BranchID
		scope.BranchID = &b
	}
	return scope, nil
}

// periodLabel etiqueta legible: "Marzo 2026" si el rango cae en un solo mes.
func periodLabel(from, to time.Time) string {
	if from.Year() == to.Year() && from.Month() == to.Month() {
		return monthLabel(from)
	}
	return fmt.Sprintf("%s - %s", monthLabel(from), monthLabel(to))
}

// monthLabel devuelve una etiqueta legible del mes, ej: "Febrero 2026".
func monthLabel(t time.Time) string {
	months := [...]string{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
	return fmt.Sprintf("%s %d", months[t.Month()-1], t.Year())
}
