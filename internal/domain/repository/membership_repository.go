package repository

import (
	"context"

	"github.com/jhoicas/cashdesk-api/internal/domain/entity"
)

// MembershipRepository arranque de autorización: empresa, rol y sucursal del usuario.
type MembershipRepository interface {
	// FetchMembership devuelve domain.ErrNoPermissionsAssigned si no hay fila de rol;
	// no es lo mismo que "no autenticado".
	FetchMembership(ctx context.Context, userID, companyID string) (*entity.Membership, error)
	Upsert(ctx context.Context, m *entity.Membership) error
	// ListUserIDsWithRoles usuarios de la empresa cuyo rol está entre roles.
	ListUserIDsWithRoles(ctx context.Context, companyID string, roles []string) ([]string, error)
}
