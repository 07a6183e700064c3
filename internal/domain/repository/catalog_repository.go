package repository

import (
	"context"

	"github.com/jhoicas/inventario-traslados/internal/domain/entity"
)

// ItemRepository lectura del catálogo maestro (el motor nunca modifica TotalQuantity).
type ItemRepository interface {
	GetByID(ctx context.Context, id string) (*entity.InventoryItem, error)
	// ListIDs devuelve los IDs de todos los ítems en orden estable.
	ListIDs(ctx context.Context) ([]string, error)
}

// DepartmentRepository lectura de departamentos y secciones.
type DepartmentRepository interface {
	GetDepartment(ctx context.Context, id string) (*entity.Department, error)
	GetSection(ctx context.Context, id string) (*entity.Section, error)
	// ListDepartments devuelve todos los departamentos ordenados por ID.
	ListDepartments(ctx context.Context) ([]*entity.Department, error)
}
