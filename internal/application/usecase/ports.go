package usecase

import (
	"context"

	"github.com/jhoicas/cashdesk-api/internal/domain/repository"
)

// CompanyTxRunner ejecuta fn en una transacción con repos atados a ella.
// Alta de empresa, membresía del dueño y módulos van juntas o no van.
type CompanyTxRunner interface {
	RunCompany(ctx context.Context, fn func(
		companies repository.CompanyRepository,
		memberships repository.MembershipRepository,
	) error) error
}

// CapabilityInvalidator descarta capacidades cacheadas tras un cambio de rol.
type CapabilityInvalidator interface {
	Invalidate(userID, companyID string)
}
