// Package reconcile corrige la deriva entre la cantidad maestra del catálogo y la
// suma de las filas distribuidas por departamento. Corre en lote, un ítem por transacción.
package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/inventario-traslados/internal/application/events"
	"github.com/jhoicas/inventario-traslados/internal/application/inventory"
	"github.com/jhoicas/inventario-traslados/internal/domain"
	"github.com/jhoicas/inventario-traslados/internal/domain/entity"
)

// Actor con el que se firman los movimientos de conciliación.
const Actor = "reconciler"

// Options parámetros de una corrida.
type Options struct {
	DryRun bool   // calcula los ajustes sin escribir
	ItemID string // vacío = todos los ítems
}

// Config reintentos ante fallos transaccionales (domain.ErrOperationFailed).
type Config struct {
	MaxRetries      int
	InitialInterval time.Duration
}

// Adjustment ajuste aplicado (o planeado, en dry-run) sobre una fila.
type Adjustment struct {
	ItemID       string `json:"item_id"`
	LedgerRowID  string `json:"ledger_row_id,omitempty"`
	DepartmentID string `json:"department_id"`
	SectionID    string `json:"section_id,omitempty"`
	Delta        int64  `json:"delta"`
	Created      bool   `json:"created,omitempty"`
}

// Issue ítem que no pudo conciliarse por completo.
type Issue struct {
	ItemID     string `json:"item_id"`
	Unresolved int64  `json:"unresolved,omitempty"`
	Reason     string `json:"reason"`
}

// Report resumen de la corrida.
type Report struct {
	RunID       string       `json:"run_id"`
	DryRun      bool         `json:"dry_run"`
	StartedAt   time.Time    `json:"started_at"`
	FinishedAt  time.Time    `json:"finished_at"`
	Checked     int          `json:"checked"`
	Adjusted    int          `json:"adjusted"`
	Skipped     int          `json:"skipped"`
	Adjustments []Adjustment `json:"adjustments"`
	Issues      []Issue      `json:"issues"`
}

// Reconciler herramienta de conciliación.
type Reconciler struct {
	txRunner  inventory.TxRunner
	repos     inventory.Repos
	publisher events.Publisher
	log       zerolog.Logger
	cfg       Config
	now       func() time.Time
}

// NewReconciler construye la herramienta. repos se usa para listar ítems y en dry-run.
func NewReconciler(txRunner inventory.TxRunner, repos inventory.Repos, publisher events.Publisher, log zerolog.Logger, cfg Config) *Reconciler {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = 200 * time.Millisecond
	}
	return &Reconciler{txRunner: txRunner, repos: repos, publisher: publisher, log: log, cfg: cfg, now: time.Now}
}

// Run recorre los ítems en secuencia. Un ítem que no puede conciliarse queda en Issues y la
// corrida continúa; solo devuelve error si no puede listar los ítems o el contexto se cancela.
func (r *Reconciler) Run(ctx context.Context, opts Options) (*Report, error) {
	report := &Report{
		RunID:       uuid.New().String(),
		DryRun:      opts.DryRun,
		StartedAt:   r.now(),
		Adjustments: []Adjustment{},
		Issues:      []Issue{},
	}
	ids := []string{opts.ItemID}
	if opts.ItemID == "" {
		var err error
		if ids, err = r.repos.Items.ListIDs(ctx); err != nil {
			return nil, fmt.Errorf("listar ítems: %w", err)
		}
	}

	log := r.log.With().Str("run_id", report.RunID).Bool("dry_run", opts.DryRun).Logger()
	log.Info().Int("items", len(ids)).Msg("conciliación iniciada")

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("%w: %v", domain.ErrOperationFailed, err)
		}
		report.Checked++

		plan, applied, err := r.reconcileWithRetry(ctx, report.RunID, id, opts.DryRun)
		if err != nil {
			log.Error().Err(err).Str("item_id", id).Msg("no se pudo conciliar el ítem")
			report.Issues = append(report.Issues, Issue{ItemID: id, Reason: err.Error()})
			continue
		}
		if plan.NoOp() {
			report.Skipped++
			continue
		}
		if len(applied) > 0 {
			report.Adjusted++
			report.Adjustments = append(report.Adjustments, applied...)
			for _, a := range applied {
				log.Info().Str("item_id", a.ItemID).
					Str("department_id", a.DepartmentID).
					Str("section_id", a.SectionID).
					Int64("delta", a.Delta).
					Bool("created", a.Created).
					Msg("ajuste de conciliación")
			}
		}
		if plan.Unresolved != 0 {
			issue := Issue{ItemID: id, Unresolved: plan.Unresolved, Reason: unresolvedReason(plan)}
			log.Warn().Str("item_id", id).Int64("unresolved", plan.Unresolved).Msg(issue.Reason)
			report.Issues = append(report.Issues, issue)
		}
		if !opts.DryRun && len(applied) > 0 {
			r.publish(ctx, report.RunID, id, plan, applied)
		}
	}

	report.FinishedAt = r.now()
	log.Info().
		Int("checked", report.Checked).
		Int("adjusted", report.Adjusted).
		Int("skipped", report.Skipped).
		Int("issues", len(report.Issues)).
		Msg("conciliación finalizada")
	return report, nil
}

// reconcileWithRetry reintenta el ítem con backoff exponencial solo ante fallos transaccionales.
func (r *Reconciler) reconcileWithRetry(ctx context.Context, runID, itemID string, dryRun bool) (Plan, []Adjustment, error) {
	var plan Plan
	var applied []Adjustment

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = r.cfg.InitialInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(r.cfg.MaxRetries)), ctx)

	op := func() error {
		var err error
		if dryRun {
			plan, applied, err = r.preview(ctx, itemID)
		} else {
			plan, applied, err = r.apply(ctx, runID, itemID)
		}
		if err != nil && !domain.IsRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		r.log.Warn().Err(err).Str("item_id", itemID).Dur("retry_in", wait).Msg("reintentando conciliación del ítem")
	}
	err := backoff.RetryNotify(op, policy, notify)
	return plan, applied, err
}

// preview calcula el plan sin transacción ni escrituras.
func (r *Reconciler) preview(ctx context.Context, itemID string) (Plan, []Adjustment, error) {
	item, rows, deps, err := load(ctx, r.repos, itemID, false)
	if err != nil {
		return Plan{}, nil, err
	}
	plan := Build(item, rows, deps)
	out := make([]Adjustment, 0, len(plan.Steps))
	for _, s := range plan.Steps {
		out = append(out, Adjustment{
			ItemID: itemID, LedgerRowID: s.RowID, DepartmentID: s.Location.DepartmentID,
			SectionID: s.Location.SectionID, Delta: s.Delta, Created: s.RowID == "",
		})
	}
	return plan, out, nil
}

// apply bloquea las filas del ítem, recalcula el plan contra el estado vigente y lo aplica
// en una transacción corta. Cada ajuste deja un movimiento reconciliation-adjust.
func (r *Reconciler) apply(ctx context.Context, runID, itemID string) (Plan, []Adjustment, error) {
	var plan Plan
	var applied []Adjustment
	err := r.txRunner.Run(ctx, func(ctx context.Context, repos inventory.Repos) error {
		applied = nil
		item, rows, deps, err := load(ctx, repos, itemID, true)
		if err != nil {
			return err
		}
		plan = Build(item, rows, deps)
		store := inventory.NewLedgerStore(repos.Ledger)

		for _, s := range plan.Steps {
			var row *entity.LedgerRow
			switch {
			case s.RowID == "":
				row, err = store.IncrementAt(ctx, itemID, s.Location, s.Delta, item.UnitPrice)
			case s.Delta > 0:
				row, err = store.Increment(ctx, s.RowID, s.Delta)
			default:
				row, err = store.Decrement(ctx, s.RowID, -s.Delta)
			}
			if err != nil {
				return err
			}
			mov := &entity.MovementRecord{
				ID:           uuid.New().String(),
				Type:         entity.MovementReconciliationAdjust,
				ItemID:       itemID,
				LedgerRowID:  row.ID,
				DepartmentID: row.DepartmentID,
				SectionID:    row.SectionID,
				Quantity:     s.Delta,
				Reference:    runID,
				CreatedBy:    Actor,
				CreatedAt:    r.now(),
			}
			if err := repos.Movements.Create(ctx, mov); err != nil {
				return err
			}
			applied = append(applied, Adjustment{
				ItemID: itemID, LedgerRowID: row.ID, DepartmentID: row.DepartmentID,
				SectionID: row.SectionID, Delta: s.Delta, Created: s.RowID == "",
			})
		}
		return nil
	})
	if err != nil {
		return Plan{}, nil, err
	}
	return plan, applied, nil
}

func load(ctx context.Context, repos inventory.Repos, itemID string, lock bool) (*entity.InventoryItem, []*entity.LedgerRow, []*entity.Department, error) {
	item, err := repos.Items.GetByID(ctx, itemID)
	if err != nil {
		return nil, nil, nil, err
	}
	if item == nil {
		return nil, nil, nil, fmt.Errorf("%w: ítem %s", domain.ErrNotFound, itemID)
	}
	var rows []*entity.LedgerRow
	if lock {
		rows, err = repos.Ledger.LockByItem(ctx, itemID)
	} else {
		rows, err = repos.Ledger.ListByItem(ctx, itemID)
	}
	if err != nil {
		return nil, nil, nil, err
	}
	deps, err := repos.Departments.ListDepartments(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	return item, rows, deps, nil
}

func unresolvedReason(p Plan) string {
	if p.Unresolved > 0 && p.Delta > 0 {
		return "sobrante sin departamento donde asignarlo"
	}
	return fmt.Sprintf("faltante de %d unidades sin filas disponibles para absorberlo", p.Unresolved)
}

func (r *Reconciler) publish(ctx context.Context, runID, itemID string, plan Plan, applied []Adjustment) {
	ev := events.Event{
		Type:        events.ReconciliationAdjusted,
		AggregateID: itemID,
		OccurredAt:  r.now(),
		Payload: map[string]any{
			"run_id":      runID,
			"delta":       plan.Delta,
			"unresolved":  plan.Unresolved,
			"adjustments": applied,
		},
	}
	if err := r.publisher.Publish(ctx, ev); err != nil {
		r.log.Warn().Err(err).Str("item_id", itemID).Msg("no se pudo publicar el evento de conciliación")
	}
}
