package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-traslados/internal/domain/entity"
)

// LedgerRowResponse fila del libro por ubicación.
type LedgerRowResponse struct {
	ID           string          `json:"id"`
	ItemID       string          `json:"item_id"`
	DepartmentID string          `json:"department_id"`
	SectionID    string          `json:"section_id,omitempty"`
	Quantity     int64           `json:"quantity"`
	Reserved     int64           `json:"reserved"`
	Available    int64           `json:"available"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ReservationRequest body para POST /api/ledger/:id/reserve y /release.
type ReservationRequest struct {
	Amount int64 `json:"amount"`
}

// MovementResponse entrada del log de movimientos.
type MovementResponse struct {
	ID                      string    `json:"id"`
	Type                    string    `json:"type"`
	ItemID                  string    `json:"item_id,omitempty"`
	ServiceID               string    `json:"service_id,omitempty"`
	LedgerRowID             string    `json:"ledger_row_id,omitempty"`
	DepartmentID            string    `json:"department_id"`
	SectionID               string    `json:"section_id,omitempty"`
	CounterpartDepartmentID string    `json:"counterpart_department_id,omitempty"`
	CounterpartSectionID    string    `json:"counterpart_section_id,omitempty"`
	Quantity                int64     `json:"quantity"`
	Reference               string    `json:"reference"`
	CreatedBy               string    `json:"created_by"`
	CreatedAt               time.Time `json:"created_at"`
}

// ToLedgerRowResponse mapea la fila al DTO.
func ToLedgerRowResponse(r *entity.LedgerRow) LedgerRowResponse {
	return LedgerRowResponse{
		ID:           r.ID,
		ItemID:       r.ItemID,
		DepartmentID: r.DepartmentID,
		SectionID:    r.SectionID,
		Quantity:     r.Quantity,
		Reserved:     r.Reserved,
		Available:    r.Available(),
		UnitPrice:    r.UnitPrice,
		UpdatedAt:    r.UpdatedAt,
	}
}

// ToLedgerRowResponses mapea una lista de filas.
func ToLedgerRowResponses(rows []*entity.LedgerRow) []LedgerRowResponse {
	out := make([]LedgerRowResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, ToLedgerRowResponse(r))
	}
	return out
}

// ToMovementResponse mapea un movimiento al DTO.
func ToMovementResponse(m *entity.MovementRecord) MovementResponse {
	return MovementResponse{
		ID:                      m.ID,
		Type:                    m.Type,
		ItemID:                  m.ItemID,
		ServiceID:               m.ServiceID,
		LedgerRowID:             m.LedgerRowID,
		DepartmentID:            m.DepartmentID,
		SectionID:               m.SectionID,
		CounterpartDepartmentID: m.CounterpartDepartmentID,
		CounterpartSectionID:    m.CounterpartSectionID,
		Quantity:                m.Quantity,
		Reference:               m.Reference,
		CreatedBy:               m.CreatedBy,
		CreatedAt:               m.CreatedAt,
	}
}

// ToMovementResponses mapea una lista de movimientos.
func ToMovementResponses(list []*entity.MovementRecord) []MovementResponse {
	out := make([]MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, ToMovementResponse(m))
	}
	return out
}
