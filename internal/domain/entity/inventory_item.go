package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryItem entrada del catálogo con la cantidad maestra (TotalQuantity),
// independiente de cómo esté distribuida entre departamentos.
// Este motor solo la lee; el catálogo externo es quien la modifica.
type InventoryItem struct {
	ID            string
	Name          string
	Category      string
	TotalQuantity int64
	UnitPrice     decimal.Decimal
	UpdatedAt     time.Time
}
