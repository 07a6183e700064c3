package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/inventario-traslados/internal/application/events"
	"github.com/jhoicas/inventario-traslados/internal/domain"
	"github.com/jhoicas/inventario-traslados/internal/domain/entity"
)

// RelocationUseCase reubicación directa entre secciones del mismo departamento:
// una sola llamada, sin aprobación, en una transacción.
type RelocationUseCase struct {
	txRunner  TxRunner
	publisher events.Publisher
	log       zerolog.Logger
	now       func() time.Time
}

// NewRelocationUseCase construye el caso de uso.
func NewRelocationUseCase(txRunner TxRunner, publisher events.Publisher, log zerolog.Logger) *RelocationUseCase {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &RelocationUseCase{txRunner: txRunner, publisher: publisher, log: log, now: time.Now}
}

// RelocateItemInput mueve Quantity unidades del ítem entre dos secciones del departamento.
// FromSectionID / ToSectionID vacíos = nivel departamento.
type RelocateItemInput struct {
	ActorID       string
	DepartmentID  string
	ItemID        string
	FromSectionID string
	ToSectionID   string
	Quantity      int64
}

// RelocateServiceInput mueve un servicio entre dos secciones del departamento.
type RelocateServiceInput struct {
	ActorID       string
	DepartmentID  string
	ServiceID     string
	FromSectionID string
	ToSectionID   string
}

// ItemRelocation resultado de una reubicación de ítem.
type ItemRelocation struct {
	RelocationID string
	Source       *entity.LedgerRow
	Destination  *entity.LedgerRow
	Movement     *entity.MovementRecord
}

// ServiceRelocation resultado de una reubicación de servicio.
type ServiceRelocation struct {
	RelocationID string
	Service      *entity.ServiceOffering
	Movement     *entity.MovementRecord
}

// RelocateItem descuenta en la sección origen, suma en la destino (creando la fila si falta,
// con el precio unitario del origen) y registra un movimiento "relocation".
func (uc *RelocationUseCase) RelocateItem(ctx context.Context, in RelocateItemInput) (*ItemRelocation, error) {
	if in.ItemID == "" || in.DepartmentID == "" || in.Quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}
	if in.FromSectionID == in.ToSectionID {
		return nil, fmt.Errorf("%w: origen y destino son la misma ubicación", domain.ErrInvalidInput)
	}

	out := &ItemRelocation{RelocationID: uuid.New().String()}
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		from, to, err := uc.resolvePair(ctx, repos, in.DepartmentID, in.FromSectionID, in.ToSectionID)
		if err != nil {
			return err
		}
		src, err := repos.Ledger.GetByKey(ctx, entity.LedgerKey{ItemID: in.ItemID, Location: from})
		if err != nil {
			return err
		}
		if src == nil {
			return fmt.Errorf("%w: el ítem %s no tiene inventario en %s", domain.ErrNotFound, in.ItemID, from)
		}

		store := NewLedgerStore(repos.Ledger)
		if out.Source, err = store.Decrement(ctx, src.ID, in.Quantity); err != nil {
			return err
		}
		if out.Destination, err = store.IncrementAt(ctx, in.ItemID, to, in.Quantity, out.Source.UnitPrice); err != nil {
			return err
		}

		out.Movement = &entity.MovementRecord{
			ID:                      uuid.New().String(),
			Type:                    entity.MovementRelocation,
			ItemID:                  in.ItemID,
			LedgerRowID:             src.ID,
			DepartmentID:            from.DepartmentID,
			SectionID:               from.SectionID,
			CounterpartDepartmentID: to.DepartmentID,
			CounterpartSectionID:    to.SectionID,
			Quantity:                in.Quantity,
			Reference:               out.RelocationID,
			CreatedBy:               in.ActorID,
			CreatedAt:               uc.now(),
		}
		return repos.Movements.Create(ctx, out.Movement)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("relocation_id", out.RelocationID).
		Str("item_id", in.ItemID).
		Str("department_id", in.DepartmentID).
		Str("from_section_id", in.FromSectionID).
		Str("to_section_id", in.ToSectionID).
		Int64("quantity", in.Quantity).
		Msg("reubicación de ítem completada")
	uc.publish(ctx, out.RelocationID, out.Movement)
	return out, nil
}

// RelocateService reubica el servicio dentro del departamento. ErrAlreadyPresent (Conflict)
// si ya ocupa la sección destino; ErrNotFoundAtSource si no está en la sección origen.
func (uc *RelocationUseCase) RelocateService(ctx context.Context, in RelocateServiceInput) (*ServiceRelocation, error) {
	if in.ServiceID == "" || in.DepartmentID == "" {
		return nil, domain.ErrInvalidInput
	}

	out := &ServiceRelocation{RelocationID: uuid.New().String()}
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		from, to, err := uc.resolvePair(ctx, repos, in.DepartmentID, in.FromSectionID, in.ToSectionID)
		if err != nil {
			return err
		}
		if out.Service, err = NewServiceRegistry(repos.Services).Relocate(ctx, in.ServiceID, from, to); err != nil {
			return err
		}
		out.Movement = &entity.MovementRecord{
			ID:                      uuid.New().String(),
			Type:                    entity.MovementRelocation,
			ServiceID:               in.ServiceID,
			DepartmentID:            from.DepartmentID,
			SectionID:               from.SectionID,
			CounterpartDepartmentID: to.DepartmentID,
			CounterpartSectionID:    to.SectionID,
			Reference:               out.RelocationID,
			CreatedBy:               in.ActorID,
			CreatedAt:               uc.now(),
		}
		return repos.Movements.Create(ctx, out.Movement)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("relocation_id", out.RelocationID).
		Str("service_id", in.ServiceID).
		Str("department_id", in.DepartmentID).
		Str("to_section_id", in.ToSectionID).
		Msg("reubicación de servicio completada")
	uc.publish(ctx, out.RelocationID, out.Movement)
	return out, nil
}

// resolvePair valida ambas secciones contra el mismo departamento.
func (uc *RelocationUseCase) resolvePair(ctx context.Context, repos Repos, departmentID, fromSection, toSection string) (entity.Location, entity.Location, error) {
	from, err := ResolveLocation(ctx, repos.Departments, departmentID, fromSection)
	if err != nil {
		return entity.Location{}, entity.Location{}, err
	}
	to, err := ResolveLocation(ctx, repos.Departments, departmentID, toSection)
	if err != nil {
		return entity.Location{}, entity.Location{}, err
	}
	return from, to, nil
}

func (uc *RelocationUseCase) publish(ctx context.Context, relocationID string, mov *entity.MovementRecord) {
	ev := events.Event{
		Type:        events.RelocationCompleted,
		AggregateID: relocationID,
		OccurredAt:  mov.CreatedAt,
		Payload:     mov,
	}
	if err := uc.publisher.Publish(ctx, ev); err != nil {
		uc.log.Warn().Err(err).Str("relocation_id", relocationID).Msg("no se pudo publicar el evento de reubicación")
	}
}
