package transfer

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventario-traslados/internal/domain"
	"github.com/jhoicas/inventario-traslados/internal/domain/entity"
	"github.com/jhoicas/inventario-traslados/internal/domain/repository"
)

// Summary resumen de un traslado usado como payload de eventos.
type Summary struct {
	ID               string `json:"id"`
	FromDepartmentID string `json:"from_department_id"`
	ToDepartmentID   string `json:"to_department_id"`
	Status           string `json:"status"`
	Lines            int    `json:"lines"`
	ProcessedBy      string `json:"processed_by,omitempty"`
}

// Summarize construye el resumen del traslado.
func Summarize(t *entity.TransferRequest) Summary {
	return Summary{
		ID:               t.ID,
		FromDepartmentID: t.FromDepartmentID,
		ToDepartmentID:   t.ToDepartmentID,
		Status:           t.Status,
		Lines:            len(t.Lines),
		ProcessedBy:      t.ProcessedBy,
	}
}

// Get devuelve el traslado con sus líneas. Solo lo ven los departamentos origen y destino.
func (w *Workflow) Get(ctx context.Context, transferID, departmentID string) (*entity.TransferRequest, error) {
	if transferID == "" {
		return nil, domain.ErrInvalidInput
	}
	t, err := w.repos.Transfers.GetByID(ctx, transferID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("%w: traslado %s", domain.ErrNotFound, transferID)
	}
	if !t.Involves(departmentID) {
		return nil, fmt.Errorf("%w: el departamento no participa en el traslado", domain.ErrForbidden)
	}
	return t, nil
}

// List lista los traslados del departamento según dirección (in, out, all) y estado.
func (w *Workflow) List(ctx context.Context, filter repository.TransferFilter) ([]*entity.TransferRequest, error) {
	if filter.DepartmentID == "" {
		return nil, fmt.Errorf("%w: departamento requerido", domain.ErrInvalidInput)
	}
	switch filter.Direction {
	case "":
		filter.Direction = repository.DirectionAll
	case repository.DirectionIn, repository.DirectionOut, repository.DirectionAll:
	default:
		return nil, fmt.Errorf("%w: dirección %q", domain.ErrInvalidInput, filter.Direction)
	}
	switch filter.Status {
	case "", entity.TransferPending, entity.TransferCompleted, entity.TransferRejected:
	default:
		return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, filter.Status)
	}
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return w.repos.Transfers.List(ctx, filter)
}
