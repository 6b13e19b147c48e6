package repository

import (
	"context"

	"github.com/jhoicas/cashdesk-api/internal/domain/entity"
)

// CompanyRepository define el puerto de persistencia para Company (DIP).
// La implementación vive en infrastructure.
type CompanyRepository interface {
	Create(ctx context.Context, company *entity.Company) error
	GetByID(ctx context.Context, id string) (*entity.Company, error)
	HasActiveModule(ctx context.Context, companyID, moduleName string) (bool, error)
	// ActivateModule activa (o reactiva) un módulo sin vencimiento.
	ActivateModule(ctx context.Context, companyID, moduleName string) error
}
