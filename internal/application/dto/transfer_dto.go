package dto

import (
	"time"

	"github.com/jhoicas/inventario-traslados/internal/domain/entity"
)

// TransferLineRequest línea en el body de POST /api/transfers.
type TransferLineRequest struct {
	Kind          string `json:"kind"` // item | service
	ItemID        string `json:"item_id,omitempty"`
	ServiceID     string `json:"service_id,omitempty"`
	FromSectionID string `json:"from_section_id,omitempty"`
	ToSectionID   string `json:"to_section_id,omitempty"`
	Quantity      int64  `json:"quantity,omitempty"`
}

// CreateTransferRequest body para POST /api/transfers. El origen es el departamento del token.
type CreateTransferRequest struct {
	ToDepartmentID string                `json:"to_department_id"`
	Lines          []TransferLineRequest `json:"lines"`
}

// TransferLineResponse línea de un traslado.
type TransferLineResponse struct {
	ID            string `json:"id"`
	Kind          string `json:"kind"`
	ItemID        string `json:"item_id,omitempty"`
	SourceRowID   string `json:"source_row_id,omitempty"`
	ServiceID     string `json:"service_id,omitempty"`
	FromSectionID string `json:"from_section_id,omitempty"`
	ToSectionID   string `json:"to_section_id,omitempty"`
	Quantity      int64  `json:"quantity,omitempty"`
}

// TransferResponse solicitud de traslado con sus líneas.
type TransferResponse struct {
	ID               string                 `json:"id"`
	FromDepartmentID string                 `json:"from_department_id"`
	ToDepartmentID   string                 `json:"to_department_id"`
	Status           string                 `json:"status"`
	Lines            []TransferLineResponse `json:"lines"`
	CreatedBy        string                 `json:"created_by"`
	ProcessedBy      string                 `json:"processed_by,omitempty"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
	ProcessedAt      *time.Time             `json:"processed_at,omitempty"`
}

// TransferListResponse listado paginado de traslados.
type TransferListResponse struct {
	Items []TransferResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// ToTransferResponse mapea la entidad al DTO.
func ToTransferResponse(t *entity.TransferRequest) TransferResponse {
	out := TransferResponse{
		ID:               t.ID,
		FromDepartmentID: t.FromDepartmentID,
		ToDepartmentID:   t.ToDepartmentID,
		Status:           t.Status,
		Lines:            make([]TransferLineResponse, 0, len(t.Lines)),
		CreatedBy:        t.CreatedBy,
		ProcessedBy:      t.ProcessedBy,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
		ProcessedAt:      t.ProcessedAt,
	}
	for _, l := range t.Lines {
		line := TransferLineResponse{ID: l.ID, Kind: l.Kind()}
		switch p := l.Payload.(type) {
		case entity.ItemLine:
			line.ItemID, line.SourceRowID, line.Quantity = p.ItemID, p.SourceRowID, p.Quantity
			line.FromSectionID, line.ToSectionID = p.FromSectionID, p.ToSectionID
		case entity.ServiceLine:
			line.ServiceID = p.ServiceID
			line.FromSectionID, line.ToSectionID = p.FromSectionID, p.ToSectionID
		}
		out.Lines = append(out.Lines, line)
	}
	return out
}
