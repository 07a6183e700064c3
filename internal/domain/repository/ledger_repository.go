package repository

import (
	"context"

	"github.com/jhoicas/inventario-traslados/internal/domain/entity"
)

// LedgerRepository puerto de persistencia del libro de inventario por ubicación.
// Los métodos *ForUpdate bloquean la fila (SELECT FOR UPDATE) y solo tienen sentido dentro de una transacción.
// Las búsquedas devuelven (nil, nil) cuando no existe la fila.
type LedgerRepository interface {
	GetByID(ctx context.Context, id string) (*entity.LedgerRow, error)
	GetByKey(ctx context.Context, key entity.LedgerKey) (*entity.LedgerRow, error)
	GetForUpdate(ctx context.Context, id string) (*entity.LedgerRow, error)
	// GetOrCreateForUpdate inserta row si su clave no existe y devuelve la fila vigente bloqueada.
	GetOrCreateForUpdate(ctx context.Context, row *entity.LedgerRow) (*entity.LedgerRow, error)
	// Update persiste quantity, reserved y updated_at.
	Update(ctx context.Context, row *entity.LedgerRow) error
	// LockByItem bloquea y devuelve todas las filas de un ítem ordenadas por departamento y sección.
	LockByItem(ctx context.Context, itemID string) ([]*entity.LedgerRow, error)
	ListByItem(ctx context.Context, itemID string) ([]*entity.LedgerRow, error)
	ListByDepartment(ctx context.Context, departmentID string, limit, offset int) ([]*entity.LedgerRow, error)
}
