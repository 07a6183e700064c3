package transfer

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-traslados/internal/domain/entity"
)

// SlipRenderer genera el documento del acta de traslado (implementación en infrastructure/pdf).
type SlipRenderer interface {
	Render(ctx context.Context, slip *Slip) ([]byte, error)
}

// SlipLine fila del acta.
type SlipLine struct {
	Kind        string
	Reference   string
	Description string
	FromSection string
	ToSection   string
	Quantity    int64
	UnitPrice   decimal.Decimal
	Total       decimal.Decimal
}

// Slip datos del acta de traslado.
type Slip struct {
	TransferID     string
	Status         string
	FromDepartment string
	ToDepartment   string
	CreatedBy      string
	ProcessedBy    string
	CreatedAt      time.Time
	ProcessedAt    *time.Time
	Lines          []SlipLine
	Total          decimal.Decimal
}

// SlipUseCase arma y renderiza el acta de un traslado.
type SlipUseCase struct {
	workflow *Workflow
	renderer SlipRenderer
}

// NewSlipUseCase construye el caso de uso del acta.
func NewSlipUseCase(workflow *Workflow, renderer SlipRenderer) *SlipUseCase {
	return &SlipUseCase{workflow: workflow, renderer: renderer}
}

// Build arma los datos del acta. Requiere que departmentID sea origen o destino.
func (uc *SlipUseCase) Build(ctx context.Context, transferID, departmentID string) (*Slip, error) {
	t, err := uc.workflow.Get(ctx, transferID, departmentID)
	if err != nil {
		return nil, err
	}
	repos := uc.workflow.repos
	slip := &Slip{
		TransferID:     t.ID,
		Status:         t.Status,
		FromDepartment: uc.departmentName(ctx, t.FromDepartmentID),
		ToDepartment:   uc.departmentName(ctx, t.ToDepartmentID),
		CreatedBy:      t.CreatedBy,
		ProcessedBy:    t.ProcessedBy,
		CreatedAt:      t.CreatedAt,
		ProcessedAt:    t.ProcessedAt,
		Total:          decimal.Zero,
	}

	for _, line := range t.Lines {
		var sl SlipLine
		switch p := line.Payload.(type) {
		case entity.ItemLine:
			sl = SlipLine{Kind: entity.LineKindItem, Reference: p.ItemID, Description: p.ItemID,
				FromSection: p.FromSectionID, ToSection: p.ToSectionID, Quantity: p.Quantity, UnitPrice: decimal.Zero}
			item, err := repos.Items.GetByID(ctx, p.ItemID)
			if err != nil {
				return nil, err
			}
			if item != nil {
				sl.Description = item.Name
				sl.UnitPrice = item.UnitPrice
			}
			// El precio del acta es el de la fila origen (el que viaja con el traslado).
			row, err := repos.Ledger.GetByID(ctx, p.SourceRowID)
			if err != nil {
				return nil, err
			}
			if row != nil {
				sl.UnitPrice = row.UnitPrice
			}
		case entity.ServiceLine:
			sl = SlipLine{Kind: entity.LineKindService, Reference: p.ServiceID, Description: p.ServiceID,
				FromSection: p.FromSectionID, ToSection: p.ToSectionID, Quantity: 1, UnitPrice: decimal.Zero}
			svc, err := repos.Services.GetByID(ctx, p.ServiceID)
			if err != nil {
				return nil, err
			}
			if svc != nil {
				sl.Description = fmt.Sprintf("%s (%s)", svc.Name, svc.PricingModel)
				sl.UnitPrice = svc.Price
			}
		default:
			continue
		}
		sl.Total = sl.UnitPrice.Mul(decimal.NewFromInt(sl.Quantity))
		slip.Total = slip.Total.Add(sl.Total)
		slip.Lines = append(slip.Lines, sl)
	}
	return slip, nil
}

// Render arma el acta y la entrega renderizada.
func (uc *SlipUseCase) Render(ctx context.Context, transferID, departmentID string) ([]byte, error) {
	slip, err := uc.Build(ctx, transferID, departmentID)
	if err != nil {
		return nil, err
	}
	return uc.renderer.Render(ctx, slip)
}

func (uc *SlipUseCase) departmentName(ctx context.Context, id string) string {
	dep, err := uc.workflow.repos.Departments.GetDepartment(ctx, id)
	if err != nil || dep == nil {
		return id
	}
	return dep.Name
}
