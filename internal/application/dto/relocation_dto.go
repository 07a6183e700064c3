package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-traslados/internal/domain/entity"
)

// RelocateItemRequest body para POST /api/relocations/items. El departamento es el del token.
type RelocateItemRequest struct {
	ItemID        string `json:"item_id"`
	FromSectionID string `json:"from_section_id,omitempty"`
	ToSectionID   string `json:"to_section_id,omitempty"`
	Quantity      int64  `json:"quantity"`
}

// RelocateServiceRequest body para POST /api/relocations/services.
type RelocateServiceRequest struct {
	ServiceID     string `json:"service_id"`
	FromSectionID string `json:"from_section_id,omitempty"`
	ToSectionID   string `json:"to_section_id,omitempty"`
}

// ItemRelocationResponse resultado de reubicar un ítem.
type ItemRelocationResponse struct {
	RelocationID string            `json:"relocation_id"`
	Source       LedgerRowResponse `json:"source"`
	Destination  LedgerRowResponse `json:"destination"`
	Movement     MovementResponse  `json:"movement"`
}

// ServiceRelocationResponse resultado de reubicar un servicio.
type ServiceRelocationResponse struct {
	RelocationID string           `json:"relocation_id"`
	ServiceID    string           `json:"service_id"`
	DepartmentID string           `json:"department_id"`
	SectionID    string           `json:"section_id,omitempty"`
	Movement     MovementResponse `json:"movement"`
}

// ServiceResponse servicio y su ubicación actual.
type ServiceResponse struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	PricingModel string          `json:"pricing_model"`
	Price        decimal.Decimal `json:"price"`
	DepartmentID string          `json:"department_id"`
	SectionID    string          `json:"section_id,omitempty"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ToServiceResponses mapea una lista de servicios.
func ToServiceResponses(list []*entity.ServiceOffering) []ServiceResponse {
	out := make([]ServiceResponse, 0, len(list))
	for _, s := range list {
		out = append(out, ServiceResponse{
			ID:           s.ID,
			Name:         s.Name,
			PricingModel: s.PricingModel,
			Price:        s.Price,
			DepartmentID: s.DepartmentID,
			SectionID:    s.SectionID,
			UpdatedAt:    s.UpdatedAt,
		})
	}
	return out
}
