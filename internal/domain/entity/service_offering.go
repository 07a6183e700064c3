package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Modelos de cobro de un servicio.
const (
	PricingPerCount = "per_count" // por uso
	PricingPerTime  = "per_time"  // por tiempo
)

// ServiceOffering servicio indivisible (una mesa de juego, un carril de piscina)
// asignado a exactamente una ubicación. No tiene cantidad: se reubica completo o no se mueve.
type ServiceOffering struct {
	ID           string
	Name         string
	PricingModel string
	Price        decimal.Decimal
	DepartmentID string
	SectionID    string
	UpdatedAt    time.Time
}

// Location devuelve la ubicación actual del servicio.
func (s *ServiceOffering) Location() Location {
	return Location{DepartmentID: s.DepartmentID, SectionID: s.SectionID}
}

// MoveTo reescribe el puntero de ubicación.
func (s *ServiceOffering) MoveTo(to Location, now time.Time) {
	s.DepartmentID = to.DepartmentID
	s.SectionID = to.SectionID
	s.UpdatedAt = now
}
