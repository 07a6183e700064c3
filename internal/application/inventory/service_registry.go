package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/inventario-traslados/internal/domain"
	"github.com/jhoicas/inventario-traslados/internal/domain/entity"
	"github.com/jhoicas/inventario-traslados/internal/domain/repository"
)

// ServiceRegistry reubica servicios indivisibles. Como LedgerStore, trabaja con el
// repositorio de la transacción del llamador.
type ServiceRegistry struct {
	repo repository.ServiceRepository
	now  func() time.Time
}

// NewServiceRegistry construye el registro sobre el repositorio de la transacción.
func NewServiceRegistry(repo repository.ServiceRepository) *ServiceRegistry {
	return &ServiceRegistry{repo: repo, now: time.Now}
}

// Relocate mueve el servicio de from a to reescribiendo su puntero de ubicación.
// ErrNotFoundAtSource si el servicio no está en from (un reintento del mismo movimiento
// falla así, sin doble movimiento); ErrAlreadyPresent si ya ocupa to.
func (r *ServiceRegistry) Relocate(ctx context.Context, serviceID string, from, to entity.Location) (*entity.ServiceOffering, error) {
	if serviceID == "" || from.DepartmentID == "" || to.DepartmentID == "" {
		return nil, domain.ErrInvalidInput
	}
	svc, err := r.repo.GetForUpdate(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	if svc == nil {
		return nil, fmt.Errorf("%w: servicio %s", domain.ErrNotFound, serviceID)
	}
	if svc.Location() != from {
		return nil, fmt.Errorf("%w: servicio %s está en %s, se esperaba %s",
			domain.ErrNotFoundAtSource, serviceID, svc.Location(), from)
	}
	if from == to {
		return nil, fmt.Errorf("%w: servicio %s en %s", domain.ErrAlreadyPresent, serviceID, to)
	}
	svc.MoveTo(to, r.now())
	if err := r.repo.UpdateLocation(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}
