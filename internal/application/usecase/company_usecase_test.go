package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/cashdesk-api/internal/application/dto"
	"github.com/jhoicas/cashdesk-api/internal/application/session"
	"github.com/jhoicas/cashdesk-api/internal/application/usecase"
	"github.com/jhoicas/cashdesk-api/internal/domain"
	"github.com/jhoicas/cashdesk-api/internal/domain/access"
	"github.com/jhoicas/cashdesk-api/internal/domain/entity"
	"github.com/jhoicas/cashdesk-api/internal/domain/repository"
)

type memCompanies struct {
	rows    map[string]*entity.Company
	modules map[string]bool
	failOn  string
}

func (r *memCompanies) Create(_ context.Context, c *entity.Company) error {
	r.rows[c.ID] = c
	return nil
}
func (r *memCompanies) GetByID(_ context.Context, id string) (*entity.Company, error) {
	return r.rows[id], nil
}
func (r *memCompanies) HasActiveModule(_ context.Context, companyID, module string) (bool, error) {
	return r.modules[companyID+"/"+module], nil
}
func (r *memCompanies) ActivateModule(_ context.Context, companyID, module string) error {
	if module == r.failOn {
		return errors.New("fallo simulado")
	}
	r.modules[companyID+"/"+module] = true
	return nil
}

type memMemberships struct{ rows map[string]*entity.Membership }

func (r *memMemberships) FetchMembership(_ context.Context, userID, companyID string) (*entity.Membership, error) {
	m, ok := r.rows[userID+"|"+companyID]
	if !ok {
		return nil, domain.ErrNoPermissionsAssigned
	}
	return m, nil
}
func (r *memMemberships) Upsert(_ context.Context, m *entity.Membership) error {
	r.rows[m.UserID+"|"+m.CompanyID] = m
	return nil
}
func (r *memMemberships) ListUserIDsWithRoles(context.Context, string, []string) ([]string, error) {
	return nil, nil
}

type memUsers struct{ ids map[string]bool }

func (r memUsers) Create(context.Context, *entity.User) error { return nil }
func (r memUsers) GetByID(_ context.Context, id string) (*entity.User, error) {
	if !r.ids[id] {
		return nil, nil
	}
	return &entity.User{ID: id}, nil
}
func (r memUsers) GetByEmail(context.Context, string) (*entity.User, error) { return nil, nil }

// fakeTx aplica sobre copias y solo publica si fn termina sin error.
type fakeTx struct {
	companies   *memCompanies
	memberships *memMemberships
}

func (f *fakeTx) RunCompany(_ context.Context, fn func(repository.CompanyRepository, repository.MembershipRepository) error) error {
	c := &memCompanies{rows: map[string]*entity.Company{}, modules: map[string]bool{}, failOn: f.companies.failOn}
	m := &memMemberships{rows: map[string]*entity.Membership{}}
	if err := fn(c, m); err != nil {
		return err
	}
	for k, v := range c.rows {
		f.companies.rows[k] = v
	}
	for k, v := range c.modules {
		f.companies.modules[k] = v
	}
	for k, v := range m.rows {
		f.memberships.rows[k] = v
	}
	return nil
}

type invalidations struct{ keys []string }

func (i *invalidations) Invalidate(userID, companyID string) {
	i.keys = append(i.keys, userID+"|"+companyID)
}

type fixture struct {
	uc          *usecase.CompanyUseCase
	companies   *memCompanies
	memberships *memMemberships
	inv         *invalidations
}

func newFixture() *fixture {
	companies := &memCompanies{rows: map[string]*entity.Company{}, modules: map[string]bool{}}
	memberships := &memMemberships{rows: map[string]*entity.Membership{}}
	inv := &invalidations{}
	uc := usecase.NewCompanyUseCase(&fakeTx{companies, memberships}, companies, memberships,
		memUsers{ids: map[string]bool{"u2": true, "u3": true}}, inv)
	return &fixture{uc: uc, companies: companies, memberships: memberships, inv: inv}
}

func principal(role access.Role) *session.Principal {
	return &session.Principal{UserID: "u1", CompanyID: "c1", Role: role, Caps: access.ResolveRole(role)}
}

// ──────────────────────────────────────────────────────────────────────────────
// Alta de empresa
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_CreadorQuedaComoDueño(t *testing.T) {
	f := newFixture()
	resp, err := f.uc.Create(context.Background(), "u1", dto.CreateCompanyRequest{Name: " Obras SAS ", Currency: "cop"})
	require.NoError(t, err)
	assert.Equal(t, "Obras SAS", resp.Name)
	assert.Equal(t, "COP", resp.Currency)

	m := f.memberships.rows["u1|"+resp.ID]
	require.NotNil(t, m)
	assert.Equal(t, "company_owner", m.Role)
	for _, mod := range []string{entity.ModuleExpenses, entity.ModuleCustody, entity.ModuleReports} {
		assert.True(t, f.companies.modules[resp.ID+"/"+mod], mod)
	}
}

func TestCreate_TodoONada(t *testing.T) {
	f := newFixture()
	f.companies.failOn = entity.ModuleReports
	_, err := f.uc.Create(context.Background(), "u1", dto.CreateCompanyRequest{Name: "Obras"})
	require.Error(t, err)
	assert.Empty(t, f.companies.rows)
	assert.Empty(t, f.memberships.rows)
}

// ──────────────────────────────────────────────────────────────────────────────
// Roles
// ──────────────────────────────────────────────────────────────────────────────

func TestAssignRole_DueñoAsignaYSeInvalidaCache(t *testing.T) {
	f := newFixture()
	resp, err := f.uc.AssignRole(context.Background(), principal(access.RoleCompanyOwner),
		dto.AssignRoleRequest{UserID: "u2", Role: "Custody-Officer"})
	require.NoError(t, err)
	assert.Equal(t, "finance_manager", resp.Role, "se guarda normalizado a la taxonomía completa")
	assert.Equal(t, []string{"u2|c1"}, f.inv.keys)
}

func TestAssignRole_Restricciones(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.uc.AssignRole(ctx, principal(access.RoleFinanceManager), dto.AssignRoleRequest{UserID: "u2", Role: "employee"})
	assert.ErrorIs(t, err, domain.ErrPermissionDenied, "finance_manager no administra el equipo")

	_, err = f.uc.AssignRole(ctx, principal(access.RoleCompanyOwner), dto.AssignRoleRequest{UserID: "u2", Role: "system_admin"})
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)

	_, err = f.uc.AssignRole(ctx, principal(access.RoleSystemAdmin), dto.AssignRoleRequest{UserID: "u2", Role: "system_admin"})
	assert.NoError(t, err)

	_, err = f.uc.AssignRole(ctx, principal(access.RoleCompanyOwner), dto.AssignRoleRequest{UserID: "u2", Role: "jefe"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.AssignRole(ctx, principal(access.RoleCompanyOwner), dto.AssignRoleRequest{UserID: "u1", Role: "employee"})
	assert.ErrorIs(t, err, domain.ErrPermissionDenied, "nadie cambia su propio rol")

	_, err = f.uc.AssignRole(ctx, principal(access.RoleCompanyOwner), dto.AssignRoleRequest{UserID: "nadie", Role: "employee"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
