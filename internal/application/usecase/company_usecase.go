package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/cashdesk-api/internal/application/dto"
	"github.com/jhoicas/cashdesk-api/internal/application/session"
	"github.com/jhoicas/cashdesk-api/internal/domain"
	"github.com/jhoicas/cashdesk-api/internal/domain/access"
	"github.com/jhoicas/cashdesk-api/internal/domain/entity"
	"github.com/jhoicas/cashdesk-api/internal/domain/repository"
)

// defaultModules módulos activados al crear una empresa.
var defaultModules = []string{entity.ModuleExpenses, entity.ModuleCustody, entity.ModuleReports}

// CompanyUseCase alta de empresas y administración del equipo (roles).
type CompanyUseCase struct {
	tx          CompanyTxRunner
	companies   repository.CompanyRepository
	memberships repository.MembershipRepository
	users       repository.UserRepository
	caps        CapabilityInvalidator
}

// NewCompanyUseCase construye el caso de uso.
func NewCompanyUseCase(
	tx CompanyTxRunner,
	companies repository.CompanyRepository,
	memberships repository.MembershipRepository,
	users repository.UserRepository,
	caps CapabilityInvalidator,
) *CompanyUseCase {
	return &CompanyUseCase{tx: tx, companies: companies, memberships: memberships, users: users, caps: caps}
}

// Create crea la empresa con el creador como company_owner y los módulos por defecto.
func (uc *CompanyUseCase) Create(ctx context.Context, creatorID string, in dto.CreateCompanyRequest) (*dto.CompanyResponse, error) {
	name := strings.TrimSpace(in.Name)
	if creatorID == "" || name == "" {
		return nil, domain.ErrInvalidInput
	}
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = "USD"
	}
	now := time.Now()
	company := &entity.Company{
		ID:        uuid.New().String(),
		Name:      name,
		TaxID:     strings.TrimSpace(in.TaxID),
		Currency:  currency,
		Status:    "active",
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := uc.tx.RunCompany(ctx, func(companies repository.CompanyRepository, memberships repository.MembershipRepository) error {
		if err := companies.Create(ctx, company); err != nil {
			return err
		}
		if err := memberships.Upsert(ctx, &entity.Membership{
			UserID:    creatorID,
			CompanyID: company.ID,
			Role:      string(access.RoleCompanyOwner),
			CreatedAt: now,
		}); err != nil {
			return err
		}
		for _, m := range defaultModules {
			if err := companies.ActivateModule(ctx, company.ID, m); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toCompanyResponse(company), nil
}

// Get devuelve la empresa de la sesión.
func (uc *CompanyUseCase) Get(ctx context.Context, p *session.Principal) (*dto.CompanyResponse, error) {
	c, err := uc.companies.GetByID(ctx, p.CompanyID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	return toCompanyResponse(c), nil
}

// AssignRole asigna o reemplaza el rol de un usuario en la empresa del actor.
// Solo un system_admin puede otorgar system_admin, y nadie cambia su propio rol.
func (uc *CompanyUseCase) AssignRole(ctx context.Context, p *session.Principal, in dto.AssignRoleRequest) (*dto.MembershipResponse, error) {
	if !p.Caps.Has(access.PermTeamManage) {
		return nil, domain.ErrPermissionDenied
	}
	role := access.RoleFromToken(in.Role)
	if role == access.RoleUnknown {
		return nil, domain.ErrInvalidInput
	}
	if role == access.RoleSystemAdmin && !p.Caps.IsSystemAdmin {
		return nil, domain.ErrPermissionDenied
	}
	if in.UserID == p.UserID {
		return nil, domain.ErrPermissionDenied
	}
	u, err := uc.users.GetByID(ctx, in.UserID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if u == nil {
		return nil, domain.ErrUserNotFound
	}

	m := &entity.Membership{
		UserID:    in.UserID,
		CompanyID: p.CompanyID,
		Role:      string(role),
		BranchID:  in.BranchID,
		CreatedAt: time.Now(),
	}
	if err := uc.memberships.Upsert(ctx, m); err != nil {
		return nil, err
	}
	uc.caps.Invalidate(m.UserID, m.CompanyID)
	return &dto.MembershipResponse{UserID: m.UserID, CompanyID: m.CompanyID, Role: m.Role, BranchID: m.BranchID}, nil
}

func toCompanyResponse(c *entity.Company) *dto.CompanyResponse {
	return &dto.CompanyResponse{
		ID:        c.ID,
		Name:      c.Name,
		TaxID:     c.TaxID,
		Currency:  c.Currency,
		Status:    c.Status,
		CreatedAt: c.CreatedAt,
	}
}
