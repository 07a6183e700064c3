package ledger_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-traslados/internal/domain"
	"github.com/jhoicas/inventario-traslados/internal/domain/entity"
	"github.com/jhoicas/inventario-traslados/internal/domain/ledger"
)

func fila(qty, reserved int64) *entity.LedgerRow {
	return &entity.LedgerRow{ID: "row-1", ItemID: "item-x", DepartmentID: "dep-a", Quantity: qty, Reserved: reserved}
}

func TestDecrement_RespetaPisoDeReserva(t *testing.T) {
	row := fila(50, 10)

	require.NoError(t, ledger.Decrement(row, 40))
	assert.Equal(t, int64(10), row.Quantity)

	err := ledger.Decrement(row, 1)
	assert.ErrorIs(t, err, domain.ErrInsufficientQuantity)
	assert.Equal(t, int64(10), row.Quantity, "un fallo no debe mutar la fila")
	require.NoError(t, ledger.CheckInvariants(row))
}

func TestDecrement_CantidadNoPositiva(t *testing.T) {
	row := fila(5, 0)
	assert.ErrorIs(t, ledger.Decrement(row, 0), domain.ErrInvalidInput)
	assert.ErrorIs(t, ledger.Decrement(row, -3), domain.ErrInvalidInput)
	assert.Equal(t, int64(5), row.Quantity)
}

func TestIncrement_Desbordamiento(t *testing.T) {
	row := fila(math.MaxInt64-1, 0)
	require.NoError(t, ledger.Increment(row, 1))
	assert.ErrorIs(t, ledger.Increment(row, 1), domain.ErrInvalidInput)
}

func TestReserveRelease(t *testing.T) {
	row := fila(10, 0)

	require.NoError(t, ledger.Reserve(row, 7))
	assert.Equal(t, int64(3), row.Available())

	assert.ErrorIs(t, ledger.Reserve(row, 4), domain.ErrInsufficientAvailable)
	assert.Equal(t, int64(7), row.Reserved)

	require.NoError(t, ledger.Release(row, 7))
	assert.Equal(t, int64(0), row.Reserved)
	assert.ErrorIs(t, ledger.Release(row, 1), domain.ErrInvalidInput)
	assert.Equal(t, int64(10), row.Quantity, "reserve/release no tocan la cantidad")
}

func TestCheckInvariants(t *testing.T) {
	assert.NoError(t, ledger.CheckInvariants(fila(3, 3)))
	assert.Error(t, ledger.CheckInvariants(fila(2, 3)))
	assert.Error(t, ledger.CheckInvariants(fila(-1, 0)))
}
