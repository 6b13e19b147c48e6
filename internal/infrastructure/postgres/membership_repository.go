package postgres

import (
	"context"

	"github.com/jhoicas/cashdesk-api/internal/domain"
	"github.com/jhoicas/cashdesk-api/internal/domain/access"
	"github.com/jhoicas/cashdesk-api/internal/domain/entity"
	"github.com/jhoicas/cashdesk-api/internal/domain/repository"
)

var _ repository.MembershipRepository = (*MembershipRepo)(nil)

// MembershipRepo membresías usuario-empresa con su rol.
type MembershipRepo struct {
	q Querier
}

// NewMembershipRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMembershipRepository(q Querier) *MembershipRepo {
	return &MembershipRepo{q: q}
}

// FetchMembership devuelve domain.ErrNoPermissionsAssigned si no hay fila.
func (r *MembershipRepo) FetchMembership(ctx context.Context, userID, companyID string) (*entity.Membership, error) {
	const query = `
		SELECT user_id, company_id, role, branch_id, created_at
		FROM memberships WHERE user_id = $1 AND company_id = $2`
	var m entity.Membership
	err := r.q.QueryRow(ctx, query, userID, companyID).Scan(
		&m.UserID, &m.CompanyID, &m.Role, &m.BranchID, &m.CreatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrNoPermissionsAssigned
		}
		return nil, wrap("fetch membership", err)
	}
	return &m, nil
}

// Upsert crea la membresía o reemplaza su rol y sucursal.
func (r *MembershipRepo) Upsert(ctx context.Context, m *entity.Membership) error {
	const query = `
		INSERT INTO memberships (user_id, company_id, role, branch_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, company_id)
		DO UPDATE SET role = EXCLUDED.role, branch_id = EXCLUDED.branch_id`
	_, err := r.q.Exec(ctx, query, m.UserID, m.CompanyID, m.Role, m.BranchID, m.CreatedAt)
	return wrap("upsert membership", err)
}

// ListUserIDsWithRoles usuarios activos de la empresa con alguno de los roles dados.
func (r *MembershipRepo) ListUserIDsWithRoles(ctx context.Context, companyID string, roles []string) ([]string, error) {
	if len(roles) == 0 {
		return nil, nil
	}
	// Los tokens de la taxonomía reducida se comparan normalizados, igual que
	// access.ParseCondensedRole ("Custody-Officer " = custody_officer).
	const query = `
		SELECT m.user_id
		FROM memberships m
		JOIN users u ON u.id = m.user_id
		WHERE m.company_id = $1
		  AND (m.role = ANY($2) OR lower(translate(btrim(m.role), '- ', '__')) = ANY($3))
		  AND u.status = 'active'
		ORDER BY m.user_id`
	rows, err := r.q.Query(ctx, query, companyID, roles, condensedTokens(roles))
	if err != nil {
		return nil, wrap("list members by role", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, wrap("scan member", err)
		}
		ids = append(ids, id)
	}
	return ids, wrap("list members by role", rows.Err())
}

// condensedTokens tokens de la lista que pertenecen a la taxonomía reducida.
func condensedTokens(roles []string) []string {
	out := []string{}
	for _, r := range roles {
		if c := access.ParseCondensedRole(r); c != access.CondensedUnknown {
			out = append(out, string(c))
		}
	}
	return out
}
