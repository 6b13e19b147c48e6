package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/cashdesk-api/internal/application/dto"
	"github.com/jhoicas/cashdesk-api/internal/application/session"
	"github.com/jhoicas/cashdesk-api/internal/domain"
	"github.com/jhoicas/cashdesk-api/internal/domain/access"
	"github.com/jhoicas/cashdesk-api/internal/domain/entity"
	"github.com/jhoicas/cashdesk-api/internal/domain/repository"
)

// memDashboard agrega sobre una lista de movimientos como lo harían las consultas SQL.
type memDashboard struct {
	movements []entity.Movement
	scopes    []repository.DashboardScope
	custErr   error
}

func (m *memDashboard) inScope(mv entity.Movement, s repository.DashboardScope) bool {
	if mv.CompanyID != s.CompanyID || mv.Date.Before(s.From) || mv.Date.After(s.To) {
		return false
	}
	return s.BranchID == nil || (mv.BranchID != nil && *mv.BranchID == *s.BranchID)
}

func (m *memDashboard) SumApproved(_ context.Context, s repository.DashboardScope) (decimal.Decimal, decimal.Decimal, error) {
	in, out := decimal.Zero, decimal.Zero
	for _, mv := range m.movements {
		if !m.inScope(mv, s) || mv.Status != entity.MovementStatusApproved {
			continue
		}
		if mv.Direction == entity.DirectionIN {
			in = in.Add(mv.Amount)
		} else {
			out = out.Add(mv.Amount)
		}
	}
	return in, out, nil
}

func (m *memDashboard) CountPending(_ context.Context, s repository.DashboardScope) (int, error) {
	n := 0
	for _, mv := range m.movements {
		if m.inScope(mv, s) && mv.Status == entity.MovementStatusSubmitted {
			n++
		}
	}
	return n, nil
}

func (m *memDashboard) TopOutwardCategories(_ context.Context, s repository.DashboardScope, _ int) ([]repository.CategoryTotal, error) {
	m.scopes = append(m.scopes, s)
	return []repository.CategoryTotal{{CategoryID: "cat-1", Total: decimal.RequireFromString("40.004"), Count: 1}}, nil
}

func (m *memDashboard) CustodyTotals(context.Context, string) (int, decimal.Decimal, error) {
	if m.custErr != nil {
		return 0, decimal.Zero, m.custErr
	}
	return 2, decimal.NewFromInt(750), nil
}

func mv(status, direction string, amount int64, day int) entity.Movement {
	return entity.Movement{
		CompanyID: "c1",
		Status:    status,
		Direction: direction,
		Amount:    decimal.NewFromInt(amount),
		Date:      time.Date(2026, 3, day, 12, 0, 0, 0, time.UTC),
	}
}

func owner() *session.Principal {
	return &session.Principal{UserID: "u", CompanyID: "c1", Caps: access.ResolveRole(access.RoleCompanyOwner)}
}

func newUC(repo repository.DashboardRepository) *DashboardUseCase {
	uc := NewDashboardUseCase(repo)
	uc.now = func() time.Time { return time.Date(2026, 3, 20, 10, 0, 0, 0, time.UTC) }
	return uc
}

func TestGetSummary_BorradoresNoCuentan(t *testing.T) {
	repo := &memDashboard{movements: []entity.Movement{
		mv(entity.MovementStatusApproved, entity.DirectionIN, 1000, 2),
		mv(entity.MovementStatusApproved, entity.DirectionOUT, 300, 5),
		mv(entity.MovementStatusDraft, entity.DirectionOUT, 9999, 6),
		mv(entity.MovementStatusSubmitted, entity.DirectionOUT, 50, 7),
		mv(entity.MovementStatusSubmitted, entity.DirectionOUT, 70, 8),
		mv(entity.MovementStatusRejected, entity.DirectionIN, 400, 9),
	}}

	got, err := newUC(repo).GetSummary(context.Background(), owner(), dto.DashboardQuery{})
	require.NoError(t, err)
	assert.True(t, got.ApprovedInward.Equal(decimal.NewFromInt(1000)))
	assert.True(t, got.ApprovedOutward.Equal(decimal.NewFromInt(300)))
	assert.True(t, got.Net.Equal(decimal.NewFromInt(700)))
	assert.Equal(t, 2, got.PendingCount)
	assert.Equal(t, 2, got.ActiveCustodies)
	assert.True(t, got.CustodyOutstanding.Equal(decimal.NewFromInt(750)))
	require.Len(t, got.TopCategories, 1)
	assert.Equal(t, "40", got.TopCategories[0].Total.String())
	assert.Equal(t, "Marzo 2026", got.DateLabel)
}

func TestGetSummary_AgregarUnBorradorNoCambiaNada(t *testing.T) {
	repo := &memDashboard{movements: []entity.Movement{mv(entity.MovementStatusApproved, entity.DirectionOUT, 10, 3)}}
	uc := newUC(repo)
	before, err := uc.GetSummary(context.Background(), owner(), dto.DashboardQuery{})
	require.NoError(t, err)

	repo.movements = append(repo.movements, mv(entity.MovementStatusDraft, entity.DirectionOUT, 500, 3))
	after, err := uc.GetSummary(context.Background(), owner(), dto.DashboardQuery{})
	require.NoError(t, err)

	assert.True(t, before.ApprovedOutward.Equal(after.ApprovedOutward))
	assert.Equal(t, before.PendingCount, after.PendingCount)
}

func TestGetSummary_SinPermiso(t *testing.T) {
	p := &session.Principal{UserID: "e", CompanyID: "c1", Caps: access.ResolveRole(access.RoleEmployee)}
	_, err := newUC(&memDashboard{}).GetSummary(context.Background(), p, dto.DashboardQuery{})
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)
}

func TestGetSummary_Rango(t *testing.T) {
	repo := &memDashboard{}
	uc := newUC(repo)

	got, err := uc.GetSummary(context.Background(), owner(), dto.DashboardQuery{From: "2026-01-15", To: "2026-02-10"})
	require.NoError(t, err)
	assert.Equal(t, "Enero 2026 - Febrero 2026", got.DateLabel)

	_, err = uc.GetSummary(context.Background(), owner(), dto.DashboardQuery{From: "2026-03-10", To: "2026-03-01"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.GetSummary(context.Background(), owner(), dto.DashboardQuery{From: "ayer"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGetSummary_SucursalDelUsuarioPrevalece(t *testing.T) {
	repo := &memDashboard{}
	p := owner()
	branch := "b-1"
	p.BranchID = &branch

	_, err := newUC(repo).GetSummary(context.Background(), p, dto.DashboardQuery{BranchID: "b-2"})
	require.NoError(t, err)
	require.Len(t, repo.scopes, 1)
	require.NotNil(t, repo.scopes[0].BranchID)
	assert.Equal(t, "b-1", *repo.scopes[0].BranchID)
}

func TestGetSummary_ErrorDeConsulta(t *testing.T) {
	repo := &memDashboard{custErr: domain.ErrCollaboratorUnavailable}
	_, err := newUC(repo).GetSummary(context.Background(), owner(), dto.DashboardQuery{})
	assert.True(t, errors.Is(err, domain.ErrCollaboratorUnavailable))
}
