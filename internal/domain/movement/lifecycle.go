// Package movement define la máquina de estados de los movimientos de caja:
// DRAFT → SUBMITTED → {APPROVED, REJECTED}. APPROVED y REJECTED son terminales.
package movement

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/cashdesk-api/internal/domain"
	"github.com/jhoicas/cashdesk-api/internal/domain/access"
	"github.com/jhoicas/cashdesk-api/internal/domain/entity"
)

// Action acción sobre un movimiento existente.
type Action string

const (
	ActionSubmit  Action = "SUBMIT"
	ActionApprove Action = "APPROVE"
	ActionReject  Action = "REJECT"
	ActionEdit    Action = "EDIT"
	ActionDelete  Action = "DELETE"
)

// transitions estado actual → acción → estado destino.
// EDIT y DELETE no cambian de estado pero solo existen desde DRAFT.
var transitions = map[string]map[Action]string{
	entity.MovementStatusDraft: {
		ActionSubmit: entity.MovementStatusSubmitted,
		ActionEdit:   entity.MovementStatusDraft,
		ActionDelete: entity.MovementStatusDraft,
	},
	entity.MovementStatusSubmitted: {
		ActionApprove: entity.MovementStatusApproved,
		ActionReject:  entity.MovementStatusRejected,
	},
}

// Next devuelve el estado destino de aplicar action desde status.
func Next(status string, action Action) (string, error) {
	to, ok := transitions[status][action]
	if !ok {
		return "", domain.ErrInvalidTransition
	}
	return to, nil
}

// Validate verifica los campos obligatorios de un movimiento nuevo o en borrador.
func Validate(m *entity.Movement) error {
	if m == nil {
		return domain.ErrInvalidInput
	}
	if m.Direction != entity.DirectionIN && m.Direction != entity.DirectionOUT {
		return domain.ErrInvalidInput
	}
	if !m.Amount.GreaterThan(decimal.Zero) {
		return domain.ErrInvalidInput
	}
	if strings.TrimSpace(m.AccountID) == "" || strings.TrimSpace(m.CategoryID) == "" {
		return domain.ErrInvalidInput
	}
	if m.Date.IsZero() {
		return domain.ErrInvalidInput
	}
	return nil
}

// CanCreate informa si el actor puede crear borradores.
func CanCreate(caps access.CapabilitySet) bool {
	return access.Authorize(caps, access.ModeAny, access.PermExpensesCreate)
}

// CheckSubmit solo el creador envía su borrador, y debe estar completo.
func CheckSubmit(m *entity.Movement, actorID string) error {
	if _, err := Next(m.Status, ActionSubmit); err != nil {
		return err
	}
	if m.CreatedBy != actorID {
		return domain.ErrPermissionDenied
	}
	return Validate(m)
}

// CheckReview valida aprobación o rechazo. El permiso se verifica antes que el
// estado para no filtrar información de movimientos ajenos.
func CheckReview(m *entity.Movement, caps access.CapabilitySet, action Action, comment string) error {
	switch action {
	case ActionApprove:
		if !access.Authorize(caps, access.ModeAny, access.PermExpensesApprove) {
			return domain.ErrPermissionDenied
		}
	case ActionReject:
		if !access.Authorize(caps, access.ModeAny, access.PermExpensesReject) {
			return domain.ErrPermissionDenied
		}
	default:
		return domain.ErrInvalidTransition
	}
	if _, err := Next(m.Status, action); err != nil {
		return err
	}
	if action == ActionReject && strings.TrimSpace(comment) == "" {
		return domain.ErrInvalidInput
	}
	return nil
}

// CheckEdit un movimiento solo se modifica en DRAFT, por su creador o por un aprobador.
func CheckEdit(m *entity.Movement, actorID string, caps access.CapabilitySet) error {
	if m.IsTerminal() {
		return domain.ErrMovementImmutable
	}
	if _, err := Next(m.Status, ActionEdit); err != nil {
		return err
	}
	if m.CreatedBy != actorID && !caps.Has(access.PermExpensesApprove) {
		return domain.ErrPermissionDenied
	}
	return nil
}

// CheckDelete un borrador lo elimina su creador o un administrador.
func CheckDelete(m *entity.Movement, actorID string, caps access.CapabilitySet) error {
	if m.IsTerminal() {
		return domain.ErrMovementImmutable
	}
	if _, err := Next(m.Status, ActionDelete); err != nil {
		return err
	}
	if m.CreatedBy != actorID && !caps.Has(access.PermExpensesDeleteAny) {
		return domain.ErrPermissionDenied
	}
	return nil
}
