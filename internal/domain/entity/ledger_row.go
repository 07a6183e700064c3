package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerRow cantidad de un ítem en una ubicación (inventario por departamento).
// Invariantes: 0 <= Reserved <= Quantity.
// Una fila en cero no se elimina: conserva el historial de reservas y la sección.
type LedgerRow struct {
	ID           string
	ItemID       string
	DepartmentID string
	SectionID    string // vacío = nivel departamento
	Quantity     int64
	Reserved     int64
	UnitPrice    decimal.Decimal // precio unitario tomado al crear la fila
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Location devuelve la ubicación de la fila.
func (r *LedgerRow) Location() Location {
	return Location{DepartmentID: r.DepartmentID, SectionID: r.SectionID}
}

// Available cantidad que puede salir de la fila sin tocar lo reservado.
func (r *LedgerRow) Available() int64 {
	return r.Quantity - r.Reserved
}

// Key devuelve la clave única (ítem, departamento, sección).
func (r *LedgerRow) Key() LedgerKey {
	return LedgerKey{ItemID: r.ItemID, Location: r.Location()}
}

// LedgerKey clave natural de una fila del libro.
type LedgerKey struct {
	ItemID   string
	Location Location
}
