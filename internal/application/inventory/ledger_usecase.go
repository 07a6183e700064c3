package inventory

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jhoicas/inventario-traslados/internal/domain"
	"github.com/jhoicas/inventario-traslados/internal/domain/entity"
	"github.com/jhoicas/inventario-traslados/internal/domain/repository"
)

// LedgerUseCase expone el libro a colaboradores externos (cumplimiento de pedidos):
// reservas, liberaciones y consultas. Cada mutación corre en su propia transacción.
type LedgerUseCase struct {
	txRunner TxRunner
	repos    Repos
	log      zerolog.Logger
}

// NewLedgerUseCase construye el caso de uso. repos se usa solo para lecturas fuera de transacción.
func NewLedgerUseCase(txRunner TxRunner, repos Repos, log zerolog.Logger) *LedgerUseCase {
	return &LedgerUseCase{txRunner: txRunner, repos: repos, log: log}
}

// Reserve compromete amount de la fila sin moverlo.
func (uc *LedgerUseCase) Reserve(ctx context.Context, rowID string, amount int64) (*entity.LedgerRow, error) {
	var out *entity.LedgerRow
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		var err error
		out, err = NewLedgerStore(repos.Ledger).Reserve(ctx, rowID, amount)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.log.Debug().Str("ledger_row_id", rowID).Int64("amount", amount).Msg("reserva registrada")
	return out, nil
}

// Release libera amount de lo reservado en la fila.
func (uc *LedgerUseCase) Release(ctx context.Context, rowID string, amount int64) (*entity.LedgerRow, error) {
	var out *entity.LedgerRow
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		var err error
		out, err = NewLedgerStore(repos.Ledger).Release(ctx, rowID, amount)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.log.Debug().Str("ledger_row_id", rowID).Int64("amount", amount).Msg("reserva liberada")
	return out, nil
}

// GetRow obtiene una fila por ID.
func (uc *LedgerUseCase) GetRow(ctx context.Context, rowID string) (*entity.LedgerRow, error) {
	row, err := uc.repos.Ledger.GetByID(ctx, rowID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, fmt.Errorf("%w: fila %s", domain.ErrNotFound, rowID)
	}
	return row, nil
}

// ListByItem lista la distribución de un ítem.
func (uc *LedgerUseCase) ListByItem(ctx context.Context, itemID string) ([]*entity.LedgerRow, error) {
	return uc.repos.Ledger.ListByItem(ctx, itemID)
}

// ListByDepartment lista las filas de un departamento con paginación.
func (uc *LedgerUseCase) ListByDepartment(ctx context.Context, departmentID string, limit, offset int) ([]*entity.LedgerRow, error) {
	return uc.repos.Ledger.ListByDepartment(ctx, departmentID, limit, offset)
}

// ListMovements consulta el log de movimientos.
func (uc *LedgerUseCase) ListMovements(ctx context.Context, filter repository.MovementFilter) ([]*entity.MovementRecord, error) {
	if filter.Reference == "" && filter.ItemID == "" && filter.ServiceID == "" {
		return nil, fmt.Errorf("%w: se requiere reference, item_id o service_id", domain.ErrInvalidInput)
	}
	return uc.repos.Movements.List(ctx, filter)
}

// ListServices lista los servicios asignados a una ubicación (sectionID vacío = nivel departamento).
func (uc *LedgerUseCase) ListServices(ctx context.Context, departmentID, sectionID string) ([]*entity.ServiceOffering, error) {
	if departmentID == "" {
		return nil, fmt.Errorf("%w: departamento requerido", domain.ErrInvalidInput)
	}
	return uc.repos.Services.ListByLocation(ctx, entity.Location{DepartmentID: departmentID, SectionID: sectionID})
}
