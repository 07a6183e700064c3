package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventario-traslados/internal/domain"
	"github.com/jhoicas/inventario-traslados/internal/domain/entity"
	"github.com/jhoicas/inventario-traslados/internal/domain/repository"
)

// ResolveLocation valida que el departamento exista y que la sección (si viene) exista
// y pertenezca a ese departamento.
func ResolveLocation(ctx context.Context, repo repository.DepartmentRepository, departmentID, sectionID string) (entity.Location, error) {
	if departmentID == "" {
		return entity.Location{}, fmt.Errorf("%w: departamento requerido", domain.ErrInvalidInput)
	}
	dep, err := repo.GetDepartment(ctx, departmentID)
	if err != nil {
		return entity.Location{}, err
	}
	if dep == nil {
		return entity.Location{}, fmt.Errorf("%w: departamento %s", domain.ErrNotFound, departmentID)
	}
	if sectionID == "" {
		return entity.DepartmentLevel(departmentID), nil
	}
	sec, err := repo.GetSection(ctx, sectionID)
	if err != nil {
		return entity.Location{}, err
	}
	if sec == nil {
		return entity.Location{}, fmt.Errorf("%w: sección %s", domain.ErrNotFound, sectionID)
	}
	if sec.DepartmentID != departmentID {
		return entity.Location{}, fmt.Errorf("%w: la sección %s no pertenece al departamento %s",
			domain.ErrInvalidInput, sectionID, departmentID)
	}
	return entity.InSection(departmentID, sectionID), nil
}
