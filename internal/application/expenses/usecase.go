// Package expenses casos de uso del flujo de aprobación de movimientos de caja.
package expenses

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/cashdesk-api/internal/application/dto"
	"github.com/jhoicas/cashdesk-api/internal/application/notification"
	"github.com/jhoicas/cashdesk-api/internal/application/session"
	"github.com/jhoicas/cashdesk-api/internal/domain"
	"github.com/jhoicas/cashdesk-api/internal/domain/access"
	"github.com/jhoicas/cashdesk-api/internal/domain/entity"
	"github.com/jhoicas/cashdesk-api/internal/domain/movement"
	"github.com/jhoicas/cashdesk-api/internal/domain/repository"
	"github.com/jhoicas/cashdesk-api/pkg/logger"
)

// UseCase crea, edita y revisa movimientos. Cada transición se valida localmente
// con las reglas de dominio y se confirma en la BD, que vuelve a comprobar el estado.
type UseCase struct {
	movements   repository.MovementRepository
	memberships repository.MembershipRepository
	notifier    Notifier
	log         *logger.Logger
	now         func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	movements repository.MovementRepository,
	memberships repository.MembershipRepository,
	notifier Notifier,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		movements:   movements,
		memberships: memberships,
		notifier:    notifier,
		log:         log.Component("expenses"),
		now:         time.Now,
	}
}

// Create registra un movimiento en DRAFT a nombre del actor.
func (uc *UseCase) Create(ctx context.Context, p *session.Principal, in dto.CreateMovementRequest) (*dto.MovementResponse, error) {
	if !movement.CanCreate(p.Caps) {
		return nil, domain.ErrPermissionDenied
	}
	now := uc.now()
	branch := in.BranchID
	if branch == nil {
		branch = p.BranchID
	}
	m := &entity.Movement{
		ID:           uuid.New().String(),
		CompanyID:    p.CompanyID,
		BranchID:     branch,
		Direction:    in.Direction,
		Amount:       in.Amount,
		AccountID:    in.AccountID,
		CategoryID:   in.CategoryID,
		CostCenterID: in.CostCenterID,
		Description:  strings.TrimSpace(in.Description),
		Date:         in.Date,
		Status:       entity.MovementStatusDraft,
		CreatedBy:    p.UserID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := movement.Validate(m); err != nil {
		return nil, err
	}
	if err := uc.movements.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("expenses: crear movimiento: %w", err)
	}
	return uc.withDuplicates(ctx, m), nil
}

// Update modifica un borrador.
func (uc *UseCase) Update(ctx context.Context, p *session.Principal, id string, in dto.UpdateMovementRequest) (*dto.MovementResponse, error) {
	m, err := uc.load(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if err := movement.CheckEdit(m, p.UserID, p.Caps); err != nil {
		return nil, err
	}
	if in.Amount != nil {
		m.Amount = *in.Amount
	}
	if in.AccountID != nil {
		m.AccountID = *in.AccountID
	}
	if in.CategoryID != nil {
		m.CategoryID = *in.CategoryID
	}
	if in.CostCenterID != nil {
		m.CostCenterID = in.CostCenterID
	}
	if in.Description != nil {
		m.Description = strings.TrimSpace(*in.Description)
	}
	if in.Date != nil {
		m.Date = *in.Date
	}
	if err := movement.Validate(m); err != nil {
		return nil, err
	}
	m.UpdatedAt = uc.now()
	if err := uc.movements.UpdateDraft(ctx, m); err != nil {
		return nil, err
	}
	return uc.withDuplicates(ctx, m), nil
}

// Submit envía el borrador a revisión y avisa a los aprobadores.
func (uc *UseCase) Submit(ctx context.Context, p *session.Principal, id string) (*dto.MovementResponse, error) {
	m, err := uc.load(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if err := movement.CheckSubmit(m, p.UserID); err != nil {
		return nil, err
	}
	updated, err := uc.movements.CommitTransition(ctx, repository.MovementTransition{
		MovementID: m.ID,
		CompanyID:  m.CompanyID,
		FromStatus: entity.MovementStatusDraft,
		ToStatus:   entity.MovementStatusSubmitted,
		ActorID:    p.UserID,
		At:         uc.now(),
	})
	if err != nil {
		return nil, err
	}

	resp := uc.withDuplicates(ctx, updated)
	approvers, err := uc.memberships.ListUserIDsWithRoles(ctx, updated.CompanyID, access.RoleTokensWith(access.PermExpensesApprove))
	if err != nil {
		// El envío ya quedó confirmado; el aviso es secundario.
		uc.log.Error().Err(err).Str("movement_id", updated.ID).Msg("no se pudo obtener aprobadores")
		return resp, nil
	}
	approvers = without(approvers, p.UserID)
	uc.notifier.Push(updated.CompanyID, notification.KindMovementSubmitted, updated.ID,
		fmt.Sprintf("Movimiento por %s pendiente de revisión", updated.Amount.StringFixed(2)), approvers...)
	if resp.DuplicateSuspected {
		uc.notifier.Push(updated.CompanyID, notification.KindDuplicateFlagged, updated.ID,
			domain.MessageFor(domain.KindDuplicateSuspected), approvers...)
	}
	return resp, nil
}

// Approve aprueba un movimiento enviado.
func (uc *UseCase) Approve(ctx context.Context, p *session.Principal, id string, in dto.ReviewMovementRequest) (*dto.MovementResponse, error) {
	return uc.review(ctx, p, id, movement.ActionApprove, in.Comment)
}

// Reject rechaza un movimiento enviado. El motivo es obligatorio.
func (uc *UseCase) Reject(ctx context.Context, p *session.Principal, id string, in dto.ReviewMovementRequest) (*dto.MovementResponse, error) {
	return uc.review(ctx, p, id, movement.ActionReject, in.Comment)
}

func (uc *UseCase) review(ctx context.Context, p *session.Principal, id string, action movement.Action, comment string) (*dto.MovementResponse, error) {
	m, err := uc.load(ctx, p, id)
	if err != nil {
		return nil, err
	}
	comment = strings.TrimSpace(comment)
	if err := movement.CheckReview(m, p.Caps, action, comment); err != nil {
		return nil, err
	}
	to, _ := movement.Next(m.Status, action)
	t := repository.MovementTransition{
		MovementID: m.ID,
		CompanyID:  m.CompanyID,
		FromStatus: m.Status,
		ToStatus:   to,
		ActorID:    p.UserID,
		At:         uc.now(),
	}
	if comment != "" {
		t.Comment = &comment
	}
	updated, err := uc.movements.CommitTransition(ctx, t)
	if err != nil {
		if domain.KindOf(err) == domain.KindInvalidTransition {
			uc.log.Warn().Str("movement_id", m.ID).Str("action", string(action)).Msg("revisión concurrente: el movimiento ya no estaba pendiente")
		}
		return nil, err
	}

	kind, verb := notification.KindMovementApproved, "aprobado"
	if to == entity.MovementStatusRejected {
		kind, verb = notification.KindMovementRejected, "rechazado"
	}
	uc.notifier.Push(updated.CompanyID, kind, updated.ID, fmt.Sprintf("Tu movimiento por %s fue %s", updated.Amount.StringFixed(2), verb), updated.CreatedBy)
	return toMovementResponse(updated), nil
}

// Delete elimina un borrador.
func (uc *UseCase) Delete(ctx context.Context, p *session.Principal, id string) error {
	m, err := uc.load(ctx, p, id)
	if err != nil {
		return err
	}
	if err := movement.CheckDelete(m, p.UserID, p.Caps); err != nil {
		return err
	}
	return uc.movements.DeleteDraft(ctx, m.ID)
}

// Get devuelve un movimiento con la marca de posible duplicado.
func (uc *UseCase) Get(ctx context.Context, p *session.Principal, id string) (*dto.MovementResponse, error) {
	m, err := uc.load(ctx, p, id)
	if err != nil {
		return nil, err
	}
	return uc.withDuplicates(ctx, m), nil
}

// List lista movimientos de la empresa. Quien no revisa ni consulta reportes solo ve los suyos.
func (uc *UseCase) List(ctx context.Context, p *session.Principal, in dto.ListMovementsRequest) (*dto.MovementListResponse, error) {
	if !p.Caps.Has(access.PermExpensesView) {
		return nil, domain.ErrPermissionDenied
	}
	in.DefaultPage()
	f := repository.MovementFilter{
		CompanyID: p.CompanyID,
		Status:    in.Status,
		Limit:     in.Limit,
		Offset:    in.Offset,
	}
	if in.Mine || !seesAll(p.Caps) {
		f.CreatedBy = p.UserID
	}
	var err error
	if f.From, err = parseDay(in.From); err != nil {
		return nil, err
	}
	if f.To, err = parseDay(in.To); err != nil {
		return nil, err
	}
	if f.To != nil {
		end := f.To.Add(24*time.Hour - time.Nanosecond)
		f.To = &end
	}

	list, total, err := uc.movements.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("expenses: listar: %w", err)
	}
	items := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, *toMovementResponse(m))
	}
	return &dto.MovementListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset, Total: total},
	}, nil
}

// load obtiene el movimiento y aplica visibilidad. Un movimiento de otra empresa
// o ajeno sin permiso de revisión se reporta como inexistente.
func (uc *UseCase) load(ctx context.Context, p *session.Principal, id string) (*entity.Movement, error) {
	if !p.Caps.Has(access.PermExpensesView) {
		return nil, domain.ErrPermissionDenied
	}
	m, err := uc.movements.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil || m.CompanyID != p.CompanyID {
		return nil, domain.ErrNotFound
	}
	if m.CreatedBy != p.UserID && !seesAll(p.Caps) {
		return nil, domain.ErrNotFound
	}
	return m, nil
}

// withDuplicates arma la respuesta y marca posibles duplicados. Si la consulta
// de candidatos falla el movimiento se devuelve igual, sin marca.
func (uc *UseCase) withDuplicates(ctx context.Context, m *entity.Movement) *dto.MovementResponse {
	resp := toMovementResponse(m)
	candidates, err := uc.movements.ListSameDay(ctx, m.CompanyID, m.CreatedBy, m.Date)
	if err != nil {
		uc.log.Warn().Err(err).Str("movement_id", m.ID).Msg("detección de duplicados omitida")
		return resp
	}
	for _, d := range movement.FindDuplicates(m, candidates) {
		resp.DuplicateOf = append(resp.DuplicateOf, d.ID)
	}
	resp.DuplicateSuspected = len(resp.DuplicateOf) > 0
	return resp
}

func seesAll(caps access.CapabilitySet) bool {
	return access.Authorize(caps, access.ModeAny, access.PermExpensesApprove, access.PermExpensesReject, access.PermReportsView)
}

func parseDay(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, domain.ErrInvalidInput
	}
	return &t, nil
}

func without(ids []string, drop string) []string {
	out := ids[:0:0]
	for _, id := range ids {
		if id != drop {
			out = append(out, id)
		}
	}
	return out
}

func toMovementResponse(m *entity.Movement) *dto.MovementResponse {
	return &dto.MovementResponse{
		ID:            m.ID,
		CompanyID:     m.CompanyID,
		BranchID:      m.BranchID,
		Direction:     m.Direction,
		Amount:        m.Amount,
		AccountID:     m.AccountID,
		CategoryID:    m.CategoryID,
		CostCenterID:  m.CostCenterID,
		Description:   m.Description,
		Date:          m.Date,
		Status:        m.Status,
		CreatedBy:     m.CreatedBy,
		ReviewedBy:    m.ReviewedBy,
		ReviewedAt:    m.ReviewedAt,
		ReviewComment: m.ReviewComment,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
