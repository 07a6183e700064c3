package entity

import "time"

// Tipos de registro de movimiento.
const (
	MovementTransferOut          = "transfer-out"
	MovementTransferIn           = "transfer-in"
	MovementRelocation           = "relocation"
	MovementReconciliationAdjust = "reconciliation-adjust"
)

// MovementRecord entrada inmutable del log de movimientos. Nunca se actualiza ni se borra.
// Quantity: unidades movidas, positivas en transfer-out, transfer-in y relocation (el tipo da la
// dirección); solo reconciliation-adjust lleva signo. Cero para servicios.
// Reference apunta al traslado, a la reubicación o a la corrida de conciliación que lo causó.
type MovementRecord struct {
	ID                      string
	Type                    string
	ItemID                  string // vacío si es un servicio
	ServiceID               string // vacío si es un ítem
	LedgerRowID             string
	DepartmentID            string
	SectionID               string
	CounterpartDepartmentID string
	CounterpartSectionID    string
	Quantity                int64
	Reference               string
	CreatedBy               string
	CreatedAt               time.Time
}
