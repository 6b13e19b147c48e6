package repository

import (
	"context"
	"time"

	"github.com/jhoicas/cashdesk-api/internal/domain/entity"
)

// MovementFilter filtros de listado de movimientos.
type MovementFilter struct {
	CompanyID string
	Status    string
	CreatedBy string
	From, To  *time.Time
	Limit     int
	Offset    int
}

// MovementTransition acción de revisión confirmada de forma atómica por la BD.
type MovementTransition struct {
	MovementID string
	CompanyID  string
	FromStatus string
	ToStatus   string
	ActorID    string
	Comment    *string
	At         time.Time
}

// MovementRepository puerto de persistencia de movimientos de caja.
type MovementRepository interface {
	Create(ctx context.Context, m *entity.Movement) error
	GetByID(ctx context.Context, id string) (*entity.Movement, error)
	// UpdateDraft modifica campos editables solo si sigue en DRAFT; si no, ErrInvalidTransition.
	UpdateDraft(ctx context.Context, m *entity.Movement) error
	// DeleteDraft borra solo si sigue en DRAFT; si no, ErrInvalidTransition.
	DeleteDraft(ctx context.Context, id string) error
	List(ctx context.Context, f MovementFilter) ([]*entity.Movement, int, error)
	// ListSameDay movimientos del creador en la fecha calendario dada (candidatos a duplicado).
	ListSameDay(ctx context.Context, companyID, createdBy string, day time.Time) ([]*entity.Movement, error)
	// CommitTransition confirma el cambio de estado solo si el estado actual en BD
	// es FromStatus. Cero filas afectadas ⇒ domain.ErrInvalidTransition.
	CommitTransition(ctx context.Context, t MovementTransition) (*entity.Movement, error)
}
