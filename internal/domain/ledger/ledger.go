// Package ledger contiene la aritmética de una fila del libro de inventario
// (servicio de dominio sin I/O). Las funciones validan antes de mutar: si
// devuelven error, la fila queda intacta.
package ledger

import (
	"fmt"
	"math"

	"github.com/jhoicas/inventario-traslados/internal/domain"
	"github.com/jhoicas/inventario-traslados/internal/domain/entity"
)

// Decrement resta amount de la cantidad. Nunca deja la fila por debajo de lo reservado:
// falla con ErrInsufficientQuantity si amount > Quantity - Reserved.
func Decrement(row *entity.LedgerRow, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: cantidad a descontar debe ser positiva", domain.ErrInvalidInput)
	}
	if amount > row.Available() {
		return fmt.Errorf("%w: fila %s disponible %d, solicitado %d",
			domain.ErrInsufficientQuantity, row.ID, row.Available(), amount)
	}
	row.Quantity -= amount
	return nil
}

// Increment suma amount a la cantidad; solo falla por desbordamiento del tipo.
func Increment(row *entity.LedgerRow, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: cantidad a sumar debe ser positiva", domain.ErrInvalidInput)
	}
	if row.Quantity > math.MaxInt64-amount {
		return fmt.Errorf("%w: desbordamiento de cantidad en fila %s", domain.ErrInvalidInput, row.ID)
	}
	row.Quantity += amount
	return nil
}

// Reserve compromete amount sin mover cantidad; falla con ErrInsufficientAvailable
// si amount > Quantity - Reserved.
func Reserve(row *entity.LedgerRow, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: cantidad a reservar debe ser positiva", domain.ErrInvalidInput)
	}
	if amount > row.Available() {
		return fmt.Errorf("%w: fila %s disponible %d, solicitado %d",
			domain.ErrInsufficientAvailable, row.ID, row.Available(), amount)
	}
	row.Reserved += amount
	return nil
}

// Release libera amount de lo reservado.
func Release(row *entity.LedgerRow, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: cantidad a liberar debe ser positiva", domain.ErrInvalidInput)
	}
	if amount > row.Reserved {
		return fmt.Errorf("%w: fila %s reservado %d, se intenta liberar %d",
			domain.ErrInvalidInput, row.ID, row.Reserved, amount)
	}
	row.Reserved -= amount
	return nil
}

// CheckInvariants verifica 0 <= Reserved <= Quantity.
func CheckInvariants(row *entity.LedgerRow) error {
	if row.Quantity < 0 || row.Reserved < 0 || row.Reserved > row.Quantity {
		return fmt.Errorf("fila %s inconsistente: quantity=%d reserved=%d", row.ID, row.Quantity, row.Reserved)
	}
	return nil
}
