package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-traslados/internal/domain"
	"github.com/jhoicas/inventario-traslados/internal/domain/entity"
	"github.com/jhoicas/inventario-traslados/internal/domain/ledger"
	"github.com/jhoicas/inventario-traslados/internal/domain/repository"
)

// LedgerStore operaciones sobre filas del libro. Debe usarse con un LedgerRepository
// atado a la transacción del llamador: bloquea la fila, aplica la aritmética de dominio y persiste.
// No escribe en el log de movimientos; eso le corresponde al orquestador.
type LedgerStore struct {
	repo repository.LedgerRepository
	now  func() time.Time
}

// NewLedgerStore construye el store sobre el repositorio de la transacción.
func NewLedgerStore(repo repository.LedgerRepository) *LedgerStore {
	return &LedgerStore{repo: repo, now: time.Now}
}

// GetOrCreate devuelve la fila de (ítem, ubicación) o crea una en cero con el precio indicado.
func (s *LedgerStore) GetOrCreate(ctx context.Context, itemID string, loc entity.Location, seedPrice decimal.Decimal) (*entity.LedgerRow, error) {
	if itemID == "" || loc.DepartmentID == "" {
		return nil, domain.ErrInvalidInput
	}
	now := s.now()
	return s.repo.GetOrCreateForUpdate(ctx, &entity.LedgerRow{
		ID:           uuid.New().String(),
		ItemID:       itemID,
		DepartmentID: loc.DepartmentID,
		SectionID:    loc.SectionID,
		UnitPrice:    seedPrice,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

// Decrement resta amount de la fila; ErrInsufficientQuantity si supera quantity - reserved.
func (s *LedgerStore) Decrement(ctx context.Context, rowID string, amount int64) (*entity.LedgerRow, error) {
	return s.mutate(ctx, rowID, func(row *entity.LedgerRow) error { return ledger.Decrement(row, amount) })
}

// Increment suma amount a una fila existente.
func (s *LedgerStore) Increment(ctx context.Context, rowID string, amount int64) (*entity.LedgerRow, error) {
	return s.mutate(ctx, rowID, func(row *entity.LedgerRow) error { return ledger.Increment(row, amount) })
}

// IncrementAt suma amount en (ítem, ubicación), creando la fila si no existe con seedPrice
// (el precio unitario de la fila origen al momento del traslado).
func (s *LedgerStore) IncrementAt(ctx context.Context, itemID string, loc entity.Location, amount int64, seedPrice decimal.Decimal) (*entity.LedgerRow, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: cantidad a sumar debe ser positiva", domain.ErrInvalidInput)
	}
	row, err := s.GetOrCreate(ctx, itemID, loc, seedPrice)
	if err != nil {
		return nil, err
	}
	if err := ledger.Increment(row, amount); err != nil {
		return nil, err
	}
	return row, s.save(ctx, row)
}

// Reserve compromete amount sin mover cantidad; ErrInsufficientAvailable si no alcanza.
func (s *LedgerStore) Reserve(ctx context.Context, rowID string, amount int64) (*entity.LedgerRow, error) {
	return s.mutate(ctx, rowID, func(row *entity.LedgerRow) error { return ledger.Reserve(row, amount) })
}

// Release libera amount de lo reservado.
func (s *LedgerStore) Release(ctx context.Context, rowID string, amount int64) (*entity.LedgerRow, error) {
	return s.mutate(ctx, rowID, func(row *entity.LedgerRow) error { return ledger.Release(row, amount) })
}

func (s *LedgerStore) mutate(ctx context.Context, rowID string, op func(*entity.LedgerRow) error) (*entity.LedgerRow, error) {
	if rowID == "" {
		return nil, domain.ErrInvalidInput
	}
	// Bloquea la fila (SELECT FOR UPDATE): la validación se hace contra el estado vigente.
	row, err := s.repo.GetForUpdate(ctx, rowID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, fmt.Errorf("%w: fila %s", domain.ErrNotFound, rowID)
	}
	if err := op(row); err != nil {
		return nil, err
	}
	return row, s.save(ctx, row)
}

func (s *LedgerStore) save(ctx context.Context, row *entity.LedgerRow) error {
	if err := ledger.CheckInvariants(row); err != nil {
		return err
	}
	row.UpdatedAt = s.now()
	return s.repo.Update(ctx, row)
}
