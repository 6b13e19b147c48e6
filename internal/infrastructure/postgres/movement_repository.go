package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/cashdesk-api/internal/domain"
	"github.com/jhoicas/cashdesk-api/internal/domain/entity"
	"github.com/jhoicas/cashdesk-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo movimientos de caja sobre PostgreSQL (usable con pool o tx).
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementColumns = `
	id, company_id, branch_id, direction, amount, account_id, category_id, cost_center_id,
	description, date, status, created_by, reviewed_by, reviewed_at, review_comment,
	created_at, updated_at`

func scanMovement(row pgx.Row) (*entity.Movement, error) {
	var m entity.Movement
	err := row.Scan(
		&m.ID, &m.CompanyID, &m.BranchID, &m.Direction, &m.Amount, &m.AccountID, &m.CategoryID, &m.CostCenterID,
		&m.Description, &m.Date, &m.Status, &m.CreatedBy, &m.ReviewedBy, &m.ReviewedAt, &m.ReviewComment,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Create persiste un movimiento nuevo (en DRAFT).
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	query := `INSERT INTO movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.CompanyID, m.BranchID, m.Direction, m.Amount, m.AccountID, m.CategoryID, m.CostCenterID,
		m.Description, m.Date, m.Status, m.CreatedBy, m.ReviewedBy, m.ReviewedAt, m.ReviewComment,
		m.CreatedAt, m.UpdatedAt,
	)
	return wrap("insert movement", err)
}

// GetByID obtiene un movimiento. (nil, nil) si no existe.
func (r *MovementRepo) GetByID(ctx context.Context, id string) (*entity.Movement, error) {
	m, err := scanMovement(r.q.QueryRow(ctx, `SELECT `+movementColumns+` FROM movements WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, wrap("get movement", err)
	}
	return m, nil
}

// UpdateDraft modifica los campos editables solo si el movimiento sigue en DRAFT.
func (r *MovementRepo) UpdateDraft(ctx context.Context, m *entity.Movement) error {
	const query = `
		UPDATE movements
		   SET amount = $2, account_id = $3, category_id = $4, cost_center_id = $5,
		       description = $6, date = $7, updated_at = $8
		 WHERE id = $1 AND status = 'DRAFT'`
	cmd, err := r.q.Exec(ctx, query,
		m.ID, m.Amount, m.AccountID, m.CategoryID, m.CostCenterID, m.Description, m.Date, m.UpdatedAt,
	)
	if err != nil {
		return wrap("update movement", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrInvalidTransition
	}
	return nil
}

// DeleteDraft borra el movimiento solo si sigue en DRAFT.
func (r *MovementRepo) DeleteDraft(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM movements WHERE id = $1 AND status = 'DRAFT'`, id)
	if err != nil {
		return wrap("delete movement", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrInvalidTransition
	}
	return nil
}

// List filtra y pagina. Devuelve además el total sin paginar.
func (r *MovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.Movement, int, error) {
	where := []string{"company_id = $1"}
	args := []any{f.CompanyID}
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.Status != "" {
		add("status = $%d", f.Status)
	}
	if f.CreatedBy != "" {
		add("created_by = $%d", f.CreatedBy)
	}
	if f.From != nil {
		add("date >= $%d", *f.From)
	}
	if f.To != nil {
		add("date <= $%d", *f.To)
	}
	clause := strings.Join(where, " AND ")

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM movements WHERE `+clause, args...).Scan(&total); err != nil {
		return nil, 0, wrap("count movements", err)
	}

	args = append(args, f.Limit, f.Offset)
	query := fmt.Sprintf(`SELECT %s FROM movements WHERE %s ORDER BY date DESC, created_at DESC LIMIT $%d OFFSET $%d`,
		movementColumns, clause, len(args)-1, len(args))
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, wrap("list movements", err)
	}
	defer rows.Close()

	var list []*entity.Movement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, 0, wrap("scan movement", err)
		}
		list = append(list, m)
	}
	return list, total, wrap("list movements", rows.Err())
}

// ListSameDay movimientos del creador con la misma fecha calendario (UTC).
func (r *MovementRepo) ListSameDay(ctx context.Context, companyID, createdBy string, day time.Time) ([]*entity.Movement, error) {
	start := time.Date(day.UTC().Year(), day.UTC().Month(), day.UTC().Day(), 0, 0, 0, 0, time.UTC)
	query := `SELECT ` + movementColumns + ` FROM movements
		WHERE company_id = $1 AND created_by = $2 AND date >= $3 AND date < $4`
	rows, err := r.q.Query(ctx, query, companyID, createdBy, start, start.Add(24*time.Hour))
	if err != nil {
		return nil, wrap("list same-day movements", err)
	}
	defer rows.Close()

	var list []*entity.Movement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, wrap("scan movement", err)
		}
		list = append(list, m)
	}
	return list, wrap("list same-day movements", rows.Err())
}

// CommitTransition cambia el estado solo si en la BD sigue siendo FromStatus y deja
// constancia en movement_transitions, todo en una sola sentencia. Si otra petición
// ganó la carrera no se afecta ninguna fila y se devuelve ErrInvalidTransition.
func (r *MovementRepo) CommitTransition(ctx context.Context, t repository.MovementTransition) (*entity.Movement, error) {
	review := t.ToStatus == entity.MovementStatusApproved || t.ToStatus == entity.MovementStatusRejected
	query := `
		WITH upd AS (
			UPDATE movements
			   SET status         = $4,
			       updated_at     = $6,
			       reviewed_by    = CASE WHEN $8 THEN $5 ELSE reviewed_by END,
			       reviewed_at    = CASE WHEN $8 THEN $6 ELSE reviewed_at END,
			       review_comment = CASE WHEN $8 THEN $7 ELSE review_comment END
			 WHERE id = $1 AND company_id = $2 AND status = $3
			RETURNING ` + movementColumns + `
		), log AS (
			INSERT INTO movement_transitions (movement_id, from_status, to_status, actor_id, comment, at)
			SELECT id, $3, $4, $5, $7, $6 FROM upd
		)
		SELECT ` + movementColumns + ` FROM upd`
	m, err := scanMovement(r.q.QueryRow(ctx, query,
		t.MovementID, t.CompanyID, t.FromStatus, t.ToStatus, t.ActorID, t.At, t.Comment, review,
	))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrInvalidTransition
		}
		return nil, wrap("commit transition", err)
	}
	return m, nil
}
