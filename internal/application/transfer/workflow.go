// Package transfer implementa el flujo de traslados entre departamentos:
// solicitud (pending) -> aprobación (completed) o rechazo (rejected).
package transfer

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-traslados/internal/application/events"
	"github.com/jhoicas/inventario-traslados/internal/application/inventory"
	"github.com/jhoicas/inventario-traslados/internal/domain"
	"github.com/jhoicas/inventario-traslados/internal/domain/entity"
)

// Workflow caso de uso del traslado entre departamentos.
type Workflow struct {
	txRunner  inventory.TxRunner
	repos     inventory.Repos
	publisher events.Publisher
	log       zerolog.Logger
	now       func() time.Time
}

// NewWorkflow construye el flujo. repos se usa para lecturas fuera de transacción.
func NewWorkflow(txRunner inventory.TxRunner, repos inventory.Repos, publisher events.Publisher, log zerolog.Logger) *Workflow {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Workflow{txRunner: txRunner, repos: repos, publisher: publisher, log: log, now: time.Now}
}

// LineInput línea solicitada. Kind "item" usa ItemID + Quantity; Kind "service" usa ServiceID.
// FromSectionID se refiere al departamento origen y ToSectionID al destino (vacío = nivel departamento).
type LineInput struct {
	Kind          string
	ItemID        string
	ServiceID     string
	FromSectionID string
	ToSectionID   string
	Quantity      int64
}

// CreateInput entrada para crear una solicitud de traslado.
type CreateInput struct {
	ActorID          string
	FromDepartmentID string
	ToDepartmentID   string
	Lines            []LineInput
}

// Create valida y persiste la solicitud en estado pending. La verificación de cantidad es
// optimista: no se reserva nada y la validación definitiva ocurre en Approve.
func (w *Workflow) Create(ctx context.Context, in CreateInput) (*entity.TransferRequest, error) {
	if in.FromDepartmentID == "" || in.ToDepartmentID == "" || len(in.Lines) == 0 {
		return nil, fmt.Errorf("%w: origen, destino y al menos una línea son requeridos", domain.ErrInvalidInput)
	}
	if in.FromDepartmentID == in.ToDepartmentID {
		return nil, fmt.Errorf("%w: origen y destino son el mismo departamento", domain.ErrInvalidInput)
	}

	now := w.now()
	t := &entity.TransferRequest{
		ID:               uuid.New().String(),
		FromDepartmentID: in.FromDepartmentID,
		ToDepartmentID:   in.ToDepartmentID,
		Status:           entity.TransferPending,
		CreatedBy:        in.ActorID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	err := w.txRunner.Run(ctx, func(ctx context.Context, repos inventory.Repos) error {
		for _, depID := range []string{in.FromDepartmentID, in.ToDepartmentID} {
			if _, err := inventory.ResolveLocation(ctx, repos.Departments, depID, ""); err != nil {
				return err
			}
		}
		seen := map[string]bool{}
		for i, li := range in.Lines {
			payload, err := w.buildLine(ctx, repos, in, li)
			if err != nil {
				return fmt.Errorf("línea %d: %w", i+1, err)
			}
			key := lineIdentity(payload)
			if seen[key] {
				return fmt.Errorf("línea %d: %w: origen repetido en el traslado", i+1, domain.ErrInvalidInput)
			}
			seen[key] = true
			t.Lines = append(t.Lines, entity.TransferLine{
				ID:         uuid.New().String(),
				TransferID: t.ID,
				Payload:    payload,
			})
		}
		return repos.Transfers.Create(ctx, t)
	})
	if err != nil {
		return nil, err
	}

	w.logTransition(t, "solicitud de traslado creada")
	w.publish(ctx, events.TransferCreated, t)
	return t, nil
}

// buildLine valida una línea contra el estado actual y la convierte en su variante tipada.
func (w *Workflow) buildLine(ctx context.Context, repos inventory.Repos, in CreateInput, li LineInput) (entity.LinePayload, error) {
	from, err := inventory.ResolveLocation(ctx, repos.Departments, in.FromDepartmentID, li.FromSectionID)
	if err != nil {
		return nil, err
	}
	if _, err := inventory.ResolveLocation(ctx, repos.Departments, in.ToDepartmentID, li.ToSectionID); err != nil {
		return nil, err
	}

	switch li.Kind {
	case entity.LineKindItem:
		if li.ItemID == "" || li.Quantity <= 0 {
			return nil, fmt.Errorf("%w: ítem y cantidad positiva requeridos", domain.ErrInvalidInput)
		}
		row, err := repos.Ledger.GetByKey(ctx, entity.LedgerKey{ItemID: li.ItemID, Location: from})
		if err != nil {
			return nil, err
		}
		if row == nil {
			return nil, fmt.Errorf("%w: el ítem %s no tiene inventario en %s", domain.ErrNotFound, li.ItemID, from)
		}
		if row.Quantity < li.Quantity {
			return nil, fmt.Errorf("%w: ítem %s en %s tiene %d, solicitado %d",
				domain.ErrInsufficientQuantity, li.ItemID, from, row.Quantity, li.Quantity)
		}
		return entity.ItemLine{
			ItemID:        li.ItemID,
			SourceRowID:   row.ID,
			FromSectionID: li.FromSectionID,
			ToSectionID:   li.ToSectionID,
			Quantity:      li.Quantity,
		}, nil

	case entity.LineKindService:
		if li.ServiceID == "" {
			return nil, fmt.Errorf("%w: servicio requerido", domain.ErrInvalidInput)
		}
		if li.Quantity != 0 {
			return nil, fmt.Errorf("%w: una línea de servicio no lleva cantidad", domain.ErrInvalidInput)
		}
		svc, err := repos.Services.GetByID(ctx, li.ServiceID)
		if err != nil {
			return nil, err
		}
		if svc == nil {
			return nil, fmt.Errorf("%w: servicio %s", domain.ErrNotFound, li.ServiceID)
		}
		if svc.Location() != from {
			return nil, fmt.Errorf("%w: servicio %s está en %s", domain.ErrNotFoundAtSource, li.ServiceID, svc.Location())
		}
		return entity.ServiceLine{
			ServiceID:     li.ServiceID,
			FromSectionID: li.FromSectionID,
			ToSectionID:   li.ToSectionID,
		}, nil
	}
	return nil, fmt.Errorf("%w: tipo de línea %q", domain.ErrInvalidInput, li.Kind)
}

// Approve ejecuta el traslado de forma atómica. Solo el departamento destino puede aprobar.
// Cualquier fallo (ej. ErrInsufficientQuantity contra el saldo vigente) revierte todas las líneas
// y la solicitud sigue en pending. Una segunda aprobación falla con ErrAlreadyProcessed.
func (w *Workflow) Approve(ctx context.Context, transferID, approverDepartmentID, actorID string) (*entity.TransferRequest, error) {
	var t *entity.TransferRequest
	var movements []*entity.MovementRecord

	err := w.txRunner.Run(ctx, func(ctx context.Context, repos inventory.Repos) error {
		var err error
		// Bloquea la solicitud: la aprobación concurrente espera y luego ve status != pending.
		if t, err = w.lockPending(ctx, repos, transferID, approverDepartmentID); err != nil {
			return err
		}
		if movements, err = w.execute(ctx, repos, t, actorID); err != nil {
			return err
		}
		now := w.now()
		t.Status = entity.TransferCompleted
		t.ProcessedBy = actorID
		t.ProcessedAt = &now
		t.UpdatedAt = now
		return repos.Transfers.UpdateStatus(ctx, t)
	})
	if err != nil {
		w.log.Warn().Err(err).
			Str("transfer_id", transferID).
			Str("approver_department_id", approverDepartmentID).
			Bool("retryable", domain.IsRetryable(err)).
			Msg("aprobación de traslado fallida")
		return nil, err
	}

	w.log.Info().Int("movements", len(movements)).
		Str("transfer_id", t.ID).
		Str("from_department_id", t.FromDepartmentID).
		Str("to_department_id", t.ToDepartmentID).
		Str("status", t.Status).
		Msg("traslado aprobado y ejecutado")
	w.publish(ctx, events.TransferCompleted, t)
	return t, nil
}

// Reject pasa la solicitud a rejected sin mover inventario. Misma regla de autorización que Approve.
func (w *Workflow) Reject(ctx context.Context, transferID, approverDepartmentID, actorID string) (*entity.TransferRequest, error) {
	var t *entity.TransferRequest
	err := w.txRunner.Run(ctx, func(ctx context.Context, repos inventory.Repos) error {
		var err error
		if t, err = w.lockPending(ctx, repos, transferID, approverDepartmentID); err != nil {
			return err
		}
		now := w.now()
		t.Status = entity.TransferRejected
		t.ProcessedBy = actorID
		t.ProcessedAt = &now
		t.UpdatedAt = now
		return repos.Transfers.UpdateStatus(ctx, t)
	})
	if err != nil {
		return nil, err
	}
	w.logTransition(t, "traslado rechazado")
	w.publish(ctx, events.TransferRejected, t)
	return t, nil
}

// lockPending bloquea la solicitud y verifica existencia, autorización y estado, en ese orden.
func (w *Workflow) lockPending(ctx context.Context, repos inventory.Repos, transferID, approverDepartmentID string) (*entity.TransferRequest, error) {
	if transferID == "" || approverDepartmentID == "" {
		return nil, domain.ErrInvalidInput
	}
	t, err := repos.Transfers.GetForUpdate(ctx, transferID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("%w: traslado %s", domain.ErrNotFound, transferID)
	}
	if approverDepartmentID != t.ToDepartmentID {
		return nil, fmt.Errorf("%w: solo el departamento destino puede procesar el traslado", domain.ErrForbidden)
	}
	if !t.IsPending() {
		return nil, fmt.Errorf("%w: traslado %s en estado %s", domain.ErrAlreadyProcessed, t.ID, t.Status)
	}
	return t, nil
}

// execute aplica todas las líneas dentro de la transacción del llamador.
func (w *Workflow) execute(ctx context.Context, repos inventory.Repos, t *entity.TransferRequest, actorID string) ([]*entity.MovementRecord, error) {
	store := inventory.NewLedgerStore(repos.Ledger)
	registry := inventory.NewServiceRegistry(repos.Services)

	if err := lockRows(ctx, repos, store, t); err != nil {
		return nil, err
	}

	now := w.now()
	var movements []*entity.MovementRecord
	for _, line := range t.Lines {
		from := entity.DepartmentLevel(t.FromDepartmentID)
		to := entity.DepartmentLevel(t.ToDepartmentID)
		out := &entity.MovementRecord{Type: entity.MovementTransferOut, Reference: t.ID, CreatedBy: actorID, CreatedAt: now}
		in := &entity.MovementRecord{Type: entity.MovementTransferIn, Reference: t.ID, CreatedBy: actorID, CreatedAt: now}

		switch p := line.Payload.(type) {
		case entity.ItemLine:
			from.SectionID, to.SectionID = p.FromSectionID, p.ToSectionID
			src, err := store.Decrement(ctx, p.SourceRowID, p.Quantity)
			if err != nil {
				return nil, fmt.Errorf("ítem %s: %w", p.ItemID, err)
			}
			dst, err := store.IncrementAt(ctx, p.ItemID, to, p.Quantity, src.UnitPrice)
			if err != nil {
				return nil, fmt.Errorf("ítem %s: %w", p.ItemID, err)
			}
			out.ItemID, out.LedgerRowID, out.Quantity = p.ItemID, src.ID, p.Quantity
			in.ItemID, in.LedgerRowID, in.Quantity = p.ItemID, dst.ID, p.Quantity

		case entity.ServiceLine:
			from.SectionID, to.SectionID = p.FromSectionID, p.ToSectionID
			if _, err := registry.Relocate(ctx, p.ServiceID, from, to); err != nil {
				return nil, fmt.Errorf("servicio %s: %w", p.ServiceID, err)
			}
			out.ServiceID, in.ServiceID = p.ServiceID, p.ServiceID

		default:
			return nil, fmt.Errorf("%w: línea %s sin tipo", domain.ErrInvalidInput, line.ID)
		}

		out.ID, in.ID = uuid.New().String(), uuid.New().String()
		out.DepartmentID, out.SectionID = from.DepartmentID, from.SectionID
		out.CounterpartDepartmentID, out.CounterpartSectionID = to.DepartmentID, to.SectionID
		in.DepartmentID, in.SectionID = to.DepartmentID, to.SectionID
		in.CounterpartDepartmentID, in.CounterpartSectionID = from.DepartmentID, from.SectionID
		for _, m := range []*entity.MovementRecord{out, in} {
			if err := repos.Movements.Create(ctx, m); err != nil {
				return nil, err
			}
			movements = append(movements, m)
		}
	}
	return movements, nil
}

// lockRows bloquea en una sola pasada las filas origen y destino de todas las líneas de ítem,
// ordenadas por (ítem, departamento, sección). Dos traslados cruzados (A→B y B→A del mismo ítem)
// toman los bloqueos en el mismo orden. Las filas destino que faltan se crean aquí con el precio
// de su fila origen.
func lockRows(ctx context.Context, repos inventory.Repos, store *inventory.LedgerStore, t *entity.TransferRequest) error {
	type target struct {
		key       entity.LedgerKey
		rowID     string // fila origen existente
		seedPrice decimal.Decimal
	}
	targets := map[string]target{}
	for _, line := range t.Lines {
		item, ok := line.Payload.(entity.ItemLine)
		if !ok {
			continue
		}
		// Lectura sin bloqueo: solo se usan la clave y el precio, que no cambian después de crear la fila.
		src, err := repos.Ledger.GetByID(ctx, item.SourceRowID)
		if err != nil {
			return err
		}
		if src == nil {
			return fmt.Errorf("%w: fila origen %s", domain.ErrNotFound, item.SourceRowID)
		}
		dstKey := entity.LedgerKey{ItemID: item.ItemID, Location: entity.InSection(t.ToDepartmentID, item.ToSectionID)}
		targets[lockOrder(src.Key())] = target{key: src.Key(), rowID: src.ID}
		if _, seen := targets[lockOrder(dstKey)]; !seen {
			targets[lockOrder(dstKey)] = target{key: dstKey, seedPrice: src.UnitPrice}
		}
	}

	order := make([]string, 0, len(targets))
	for k := range targets {
		order = append(order, k)
	}
	sort.Strings(order)
	for _, k := range order {
		tg := targets[k]
		if tg.rowID == "" {
			if _, err := store.GetOrCreate(ctx, tg.key.ItemID, tg.key.Location, tg.seedPrice); err != nil {
				return err
			}
			continue
		}
		row, err := repos.Ledger.GetForUpdate(ctx, tg.rowID)
		if err != nil {
			return err
		}
		if row == nil {
			return fmt.Errorf("%w: fila origen %s", domain.ErrNotFound, tg.rowID)
		}
	}
	return nil
}

func lockOrder(k entity.LedgerKey) string {
	return k.ItemID + "\x00" + k.Location.DepartmentID + "\x00" + k.Location.SectionID
}

func lineIdentity(p entity.LinePayload) string {
	switch v := p.(type) {
	case entity.ItemLine:
		return "item:" + v.SourceRowID
	case entity.ServiceLine:
		return "service:" + v.ServiceID
	}
	return ""
}

func (w *Workflow) logTransition(t *entity.TransferRequest, msg string) {
	w.log.Info().
		Str("transfer_id", t.ID).
		Str("from_department_id", t.FromDepartmentID).
		Str("to_department_id", t.ToDepartmentID).
		Str("status", t.Status).
		Int("lines", len(t.Lines)).
		Msg(msg)
}

func (w *Workflow) publish(ctx context.Context, eventType string, t *entity.TransferRequest) {
	ev := events.Event{Type: eventType, AggregateID: t.ID, OccurredAt: t.UpdatedAt, Payload: Summarize(t)}
	if err := w.publisher.Publish(ctx, ev); err != nil {
		w.log.Warn().Err(err).Str("transfer_id", t.ID).Str("event", eventType).Msg("no se pudo publicar el evento")
	}
}
