package repository

import (
	"context"

	"github.com/jhoicas/inventario-traslados/internal/domain/entity"
)

// MovementFilter filtros del log de movimientos; se aplica el primer campo no vacío
// en el orden Reference, ItemID, ServiceID.
type MovementFilter struct {
	Reference string
	ItemID    string
	ServiceID string
	Limit     int
	Offset    int
}

// MovementRepository log de movimientos: solo inserción y lectura.
type MovementRepository interface {
	Create(ctx context.Context, movement *entity.MovementRecord) error
	List(ctx context.Context, filter MovementFilter) ([]*entity.MovementRecord, error)
}
