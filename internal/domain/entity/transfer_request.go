package entity

import "time"

// Estados del traslado. Solo pending -> completed | rejected; los terminales son inmutables.
const (
	TransferPending   = "pending"
	TransferCompleted = "completed"
	TransferRejected  = "rejected"
)

// Tipos de línea de traslado.
const (
	LineKindItem    = "item"
	LineKindService = "service"
)

// TransferRequest solicitud de traslado entre dos departamentos. La crea el departamento
// origen y solo el departamento destino puede aprobarla o rechazarla.
type TransferRequest struct {
	ID               string
	FromDepartmentID string
	ToDepartmentID   string
	Status           string
	Lines            []TransferLine
	CreatedBy        string
	ProcessedBy      string
	CreatedAt        time.Time
	UpdatedAt        time.Time
	ProcessedAt      *time.Time
}

// IsPending indica si la solicitud todavía admite aprobación o rechazo.
func (t *TransferRequest) IsPending() bool { return t.Status == TransferPending }

// Involves indica si el departamento es origen o destino del traslado.
func (t *TransferRequest) Involves(departmentID string) bool {
	return departmentID != "" && (t.FromDepartmentID == departmentID || t.ToDepartmentID == departmentID)
}

// TransferLine línea de un traslado. Payload es ItemLine o ServiceLine.
type TransferLine struct {
	ID         string
	TransferID string
	Payload    LinePayload
}

// Kind devuelve el tipo de la línea.
func (l TransferLine) Kind() string {
	if l.Payload == nil {
		return ""
	}
	return l.Payload.lineKind()
}

// LinePayload variante cerrada: solo ItemLine y ServiceLine la implementan.
type LinePayload interface {
	lineKind() string
}

// ItemLine mueve Quantity unidades desde la fila SourceRowID (ítem en la sección origen)
// hacia ToSectionID del departamento destino (vacío = nivel departamento).
type ItemLine struct {
	ItemID        string
	SourceRowID   string
	FromSectionID string
	ToSectionID   string
	Quantity      int64
}

func (ItemLine) lineKind() string { return LineKindItem }

// ServiceLine reubica el servicio completo; no lleva cantidad.
type ServiceLine struct {
	ServiceID     string
	FromSectionID string
	ToSectionID   string
}

func (ServiceLine) lineKind() string { return LineKindService }
