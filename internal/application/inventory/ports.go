package inventory

import (
	"context"

	"github.com/jhoicas/inventario-traslados/internal/domain/repository"
)

// Repos agrupa los repositorios atados a una misma transacción (o al pool, para lecturas).
type Repos struct {
	Items       repository.ItemRepository
	Departments repository.DepartmentRepository
	Ledger      repository.LedgerRepository
	Services    repository.ServiceRepository
	Transfers   repository.TransferRepository
	Movements   repository.MovementRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Commit si fn devuelve nil, Rollback en cualquier otro caso: nunca persiste un estado parcial.
// Los fallos transaccionales sin causa de negocio (timeout, deadlock) llegan como domain.ErrOperationFailed.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context, repos Repos) error) error
}
