package repository

import (
	"context"

	"github.com/jhoicas/inventario-traslados/internal/domain/entity"
)

// ServiceRepository puerto de persistencia del registro de servicios.
type ServiceRepository interface {
	GetByID(ctx context.Context, id string) (*entity.ServiceOffering, error)
	GetForUpdate(ctx context.Context, id string) (*entity.ServiceOffering, error)
	// UpdateLocation reescribe el puntero de ubicación del servicio.
	UpdateLocation(ctx context.Context, service *entity.ServiceOffering) error
	ListByLocation(ctx context.Context, loc entity.Location) ([]*entity.ServiceOffering, error)
}
