package transfer_test

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-traslados/internal/application/events"
	"github.com/jhoicas/inventario-traslados/internal/application/inventory"
	"github.com/jhoicas/inventario-traslados/internal/application/transfer"
	"github.com/jhoicas/inventario-traslados/internal/domain"
	"github.com/jhoicas/inventario-traslados/internal/domain/entity"
	"github.com/jhoicas/inventario-traslados/internal/domain/repository"
	"github.com/jhoicas/inventario-traslados/internal/infrastructure/memory"
)

type fixture struct {
	store    *memory.Store
	recorder *events.Recorder
	wf       *transfer.Workflow
}

// newFixture: departamentos A (sección a1) y B (sección b1), ítem X con 50 unidades en A,
// ítem Z con 10 en A/a1 y el servicio S en A/a1.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	store.PutDepartment(entity.Department{ID: "A", Name: "Bodega", Category: "Bebidas"})
	store.PutDepartment(entity.Department{ID: "B", Name: "Bar", Category: "Bebidas"})
	store.PutSection(entity.Section{ID: "a1", DepartmentID: "A", Name: "Estante 1"})
	store.PutSection(entity.Section{ID: "b1", DepartmentID: "B", Name: "Barra"})
	store.PutItem(entity.InventoryItem{ID: "X", Name: "Gaseosa", Category: "Bebidas", TotalQuantity: 50, UnitPrice: decimal.NewFromInt(2500)})
	store.PutItem(entity.InventoryItem{ID: "Z", Name: "Agua", Category: "Bebidas", TotalQuantity: 10, UnitPrice: decimal.NewFromInt(1800)})
	store.PutLedgerRow(entity.LedgerRow{ID: "row-x-a", ItemID: "X", DepartmentID: "A", Quantity: 50, UnitPrice: decimal.NewFromInt(2000)})
	store.PutLedgerRow(entity.LedgerRow{ID: "row-z-a1", ItemID: "Z", DepartmentID: "A", SectionID: "a1", Quantity: 10, UnitPrice: decimal.NewFromInt(1500)})
	store.PutService(entity.ServiceOffering{ID: "S", Name: "Mesa de billar", PricingModel: entity.PricingPerTime,
		Price: decimal.NewFromInt(12000), DepartmentID: "A", SectionID: "a1"})

	recorder := &events.Recorder{}
	return &fixture{
		store:    store,
		recorder: recorder,
		wf:       transfer.NewWorkflow(store, store.Repos(), recorder, zerolog.Nop()),
	}
}

func (f *fixture) row(t *testing.T, itemID string, loc entity.Location) *entity.LedgerRow {
	t.Helper()
	row, err := f.store.Repos().Ledger.GetByKey(context.Background(), entity.LedgerKey{ItemID: itemID, Location: loc})
	require.NoError(t, err)
	return row
}

func itemLine(itemID, fromSection, toSection string, qty int64) transfer.LineInput {
	return transfer.LineInput{Kind: entity.LineKindItem, ItemID: itemID, FromSectionID: fromSection, ToSectionID: toSection, Quantity: qty}
}

func (f *fixture) create(t *testing.T, lines ...transfer.LineInput) *entity.TransferRequest {
	t.Helper()
	tr, err := f.wf.Create(context.Background(), transfer.CreateInput{
		ActorID: "u-a", FromDepartmentID: "A", ToDepartmentID: "B", Lines: lines,
	})
	require.NoError(t, err)
	return tr
}

func TestApprove_TrasladoCompleto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tr := f.create(t, itemLine("X", "", "", 20))
	assert.Equal(t, entity.TransferPending, tr.Status)
	assert.Nil(t, f.row(t, "X", entity.DepartmentLevel("B")), "crear no mueve inventario")

	done, err := f.wf.Approve(ctx, tr.ID, "B", "u-b")
	require.NoError(t, err)
	assert.Equal(t, entity.TransferCompleted, done.Status)
	assert.Equal(t, "u-b", done.ProcessedBy)
	require.NotNil(t, done.ProcessedAt)

	src := f.row(t, "X", entity.DepartmentLevel("A"))
	dst := f.row(t, "X", entity.DepartmentLevel("B"))
	require.NotNil(t, dst)
	assert.Equal(t, int64(30), src.Quantity)
	assert.Equal(t, int64(20), dst.Quantity)
	assert.True(t, decimal.NewFromInt(2000).Equal(dst.UnitPrice), "la fila nueva toma el precio de la fila origen")
	assert.Equal(t, int64(50), f.store.SumByItem("X"))

	movs := f.store.Movements()
	require.Len(t, movs, 2)
	assert.Equal(t, entity.MovementTransferOut, movs[0].Type)
	assert.Equal(t, int64(20), movs[0].Quantity, "la dirección la da el tipo, no el signo")
	assert.Equal(t, "A", movs[0].DepartmentID)
	assert.Equal(t, entity.MovementTransferIn, movs[1].Type)
	assert.Equal(t, int64(20), movs[1].Quantity)
	assert.Equal(t, "B", movs[1].DepartmentID)
	assert.Equal(t, tr.ID, movs[0].Reference)
	assert.Equal(t, tr.ID, movs[1].Reference)

	stored, err := f.wf.Get(ctx, tr.ID, "A")
	require.NoError(t, err)
	assert.Equal(t, entity.TransferCompleted, stored.Status)

	assert.Equal(t, []string{events.TransferCreated, events.TransferCompleted}, f.recorder.Types())
}

func TestCreate_CantidadMayorAlSaldo(t *testing.T) {
	f := newFixture(t)

	_, err := f.wf.Create(context.Background(), transfer.CreateInput{
		ActorID: "u-a", FromDepartmentID: "A", ToDepartmentID: "B", Lines: []transfer.LineInput{itemLine("X", "", "", 80)},
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientQuantity)
	assert.Equal(t, int64(50), f.row(t, "X", entity.DepartmentLevel("A")).Quantity)
	assert.Nil(t, f.row(t, "X", entity.DepartmentLevel("B")))
}

func TestApprove_SaldoInsuficienteAlEjecutar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// La verificación de create es optimista: el saldo cambia antes de aprobar.
	tr := f.create(t, itemLine("X", "", "", 40))
	other := f.create(t, itemLine("X", "", "", 30))
	_, err := f.wf.Approve(ctx, other.ID, "B", "u-b")
	require.NoError(t, err)

	_, err = f.wf.Approve(ctx, tr.ID, "B", "u-b")
	assert.ErrorIs(t, err, domain.ErrInsufficientQuantity)
	assert.False(t, domain.IsRetryable(err))

	assert.Equal(t, int64(20), f.row(t, "X", entity.DepartmentLevel("A")).Quantity)
	assert.Equal(t, int64(30), f.row(t, "X", entity.DepartmentLevel("B")).Quantity)

	stored, err := f.wf.Get(ctx, tr.ID, "B")
	require.NoError(t, err)
	assert.Equal(t, entity.TransferPending, stored.Status, "la solicitud sigue pendiente")

	_, err = f.wf.Reject(ctx, tr.ID, "B", "u-b")
	require.NoError(t, err)
}

func TestApprove_TodoONada(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tr := f.create(t,
		itemLine("X", "", "b1", 10),
		transfer.LineInput{Kind: entity.LineKindService, ServiceID: "S", FromSectionID: "a1", ToSectionID: "b1"},
		itemLine("Z", "a1", "", 10),
	)
	// Z se reserva después de crear: la tercera línea ya no puede salir.
	f.store.PutLedgerRow(entity.LedgerRow{ID: "row-z-a1", ItemID: "Z", DepartmentID: "A", SectionID: "a1",
		Quantity: 10, Reserved: 5, UnitPrice: decimal.NewFromInt(1500)})

	_, err := f.wf.Approve(ctx, tr.ID, "B", "u-b")
	require.ErrorIs(t, err, domain.ErrInsufficientQuantity)

	assert.Equal(t, int64(50), f.row(t, "X", entity.DepartmentLevel("A")).Quantity)
	assert.Nil(t, f.row(t, "X", entity.InSection("B", "b1")))
	assert.Nil(t, f.row(t, "Z", entity.DepartmentLevel("B")))
	svc, err := f.store.Repos().Services.GetByID(ctx, "S")
	require.NoError(t, err)
	assert.Equal(t, entity.InSection("A", "a1"), svc.Location(), "el servicio no se movió")
	assert.Empty(t, f.store.Movements())
}

func TestApprove_ConServicio(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tr := f.create(t, transfer.LineInput{Kind: entity.LineKindService, ServiceID: "S", FromSectionID: "a1", ToSectionID: "b1"})
	_, err := f.wf.Approve(ctx, tr.ID, "B", "u-b")
	require.NoError(t, err)

	svc, err := f.store.Repos().Services.GetByID(ctx, "S")
	require.NoError(t, err)
	assert.Equal(t, entity.InSection("B", "b1"), svc.Location())

	movs := f.store.Movements()
	require.Len(t, movs, 2)
	for _, m := range movs {
		assert.Equal(t, "S", m.ServiceID)
		assert.Zero(t, m.Quantity)
	}
}

func TestApprove_SoloDestino(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tr := f.create(t, itemLine("X", "", "", 5))

	_, err := f.wf.Approve(ctx, tr.ID, "A", "u-a")
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.wf.Reject(ctx, tr.ID, "C", "u-c")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.wf.Approve(ctx, "no-existe", "B", "u-b")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, int64(50), f.row(t, "X", entity.DepartmentLevel("A")).Quantity)
}

func TestApprove_DosVeces(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tr := f.create(t, itemLine("X", "", "", 5))

	_, err := f.wf.Approve(ctx, tr.ID, "B", "u-b")
	require.NoError(t, err)
	_, err = f.wf.Approve(ctx, tr.ID, "B", "u-b")
	assert.ErrorIs(t, err, domain.ErrAlreadyProcessed)
	assert.ErrorIs(t, err, domain.ErrConflict)
	_, err = f.wf.Reject(ctx, tr.ID, "B", "u-b")
	assert.ErrorIs(t, err, domain.ErrAlreadyProcessed)

	assert.Equal(t, int64(45), f.row(t, "X", entity.DepartmentLevel("A")).Quantity)
	assert.Len(t, f.store.Movements(), 2)
}

func TestApprove_Concurrente(t *testing.T) {
	f := newFixture(t)
	tr := f.create(t, itemLine("X", "", "", 20))

	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.wf.Approve(context.Background(), tr.ID, "B", "u-b")
		}(i)
	}
	wg.Wait()

	var ok, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case assert.ErrorIs(t, err, domain.ErrConflict):
			conflicts++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, callers-1, conflicts)
	assert.Equal(t, int64(30), f.row(t, "X", entity.DepartmentLevel("A")).Quantity)
	assert.Equal(t, int64(20), f.row(t, "X", entity.DepartmentLevel("B")).Quantity)
}

func TestApprove_TrasladosConcurrentesSobreLaMismaFila(t *testing.T) {
	f := newFixture(t)
	const n = 7 // 7 x 10 sobre 50: exactamente 5 pueden completarse
	ids := make([]string, n)
	for i := range ids {
		ids[i] = f.create(t, itemLine("X", "", "", 10)).ID
	}

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, errs[i] = f.wf.Approve(context.Background(), id, "B", "u-b")
		}(i, id)
	}
	wg.Wait()

	var ok, insufficient int
	for _, err := range errs {
		if err == nil {
			ok++
		} else if assert.ErrorIs(t, err, domain.ErrInsufficientQuantity) {
			insufficient++
		}
	}
	assert.Equal(t, 5, ok)
	assert.Equal(t, 2, insufficient)
	assert.Zero(t, f.row(t, "X", entity.DepartmentLevel("A")).Quantity)
	assert.Equal(t, int64(50), f.store.SumByItem("X"))
}

func TestReject(t *testing.T) {
	f := newFixture(t)
	tr := f.create(t, itemLine("X", "", "", 5))

	rejected, err := f.wf.Reject(context.Background(), tr.ID, "B", "u-b")
	require.NoError(t, err)
	assert.Equal(t, entity.TransferRejected, rejected.Status)
	assert.Equal(t, int64(50), f.row(t, "X", entity.DepartmentLevel("A")).Quantity)
	assert.Empty(t, f.store.Movements())

	_, err = f.wf.Approve(context.Background(), tr.ID, "B", "u-b")
	assert.ErrorIs(t, err, domain.ErrAlreadyProcessed)
}

func TestCreate_Validaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svcLine := transfer.LineInput{Kind: entity.LineKindService, ServiceID: "S", FromSectionID: "a1"}

	cases := []struct {
		name string
		in   transfer.CreateInput
		want error
	}{
		{"mismo departamento", transfer.CreateInput{FromDepartmentID: "A", ToDepartmentID: "A", Lines: []transfer.LineInput{itemLine("X", "", "", 1)}}, domain.ErrInvalidInput},
		{"sin líneas", transfer.CreateInput{FromDepartmentID: "A", ToDepartmentID: "B"}, domain.ErrInvalidInput},
		{"cantidad cero", transfer.CreateInput{FromDepartmentID: "A", ToDepartmentID: "B", Lines: []transfer.LineInput{itemLine("X", "", "", 0)}}, domain.ErrInvalidInput},
		{"departamento inexistente", transfer.CreateInput{FromDepartmentID: "A", ToDepartmentID: "Q", Lines: []transfer.LineInput{itemLine("X", "", "", 1)}}, domain.ErrNotFound},
		{"sección de otro departamento", transfer.CreateInput{FromDepartmentID: "A", ToDepartmentID: "B", Lines: []transfer.LineInput{itemLine("X", "", "a1", 1)}}, domain.ErrInvalidInput},
		{"ítem sin fila en origen", transfer.CreateInput{FromDepartmentID: "A", ToDepartmentID: "B", Lines: []transfer.LineInput{itemLine("Z", "", "", 1)}}, domain.ErrNotFound},
		{"fila repetida", transfer.CreateInput{FromDepartmentID: "A", ToDepartmentID: "B", Lines: []transfer.LineInput{itemLine("X", "", "", 1), itemLine("X", "", "b1", 1)}}, domain.ErrInvalidInput},
		{"servicio repetido", transfer.CreateInput{FromDepartmentID: "A", ToDepartmentID: "B", Lines: []transfer.LineInput{svcLine, svcLine}}, domain.ErrInvalidInput},
		{"servicio fuera del origen", transfer.CreateInput{FromDepartmentID: "A", ToDepartmentID: "B", Lines: []transfer.LineInput{{Kind: entity.LineKindService, ServiceID: "S"}}}, domain.ErrNotFoundAtSource},
		{"tipo desconocido", transfer.CreateInput{FromDepartmentID: "A", ToDepartmentID: "B", Lines: []transfer.LineInput{{Kind: "combo", ItemID: "X", Quantity: 1}}}, domain.ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.wf.Create(ctx, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	list, err := f.wf.List(ctx, repository.TransferFilter{DepartmentID: "A"})
	require.NoError(t, err)
	assert.Empty(t, list, "ninguna solicitud inválida se persiste")
	assert.Empty(t, f.recorder.Events)
}

func TestGetYList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tr := f.create(t, itemLine("X", "", "", 5))
	f.create(t, itemLine("Z", "a1", "", 1))
	_, err := f.wf.Reject(ctx, tr.ID, "B", "u-b")
	require.NoError(t, err)

	_, err = f.wf.Get(ctx, tr.ID, "C")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	out, err := f.wf.List(ctx, repository.TransferFilter{DepartmentID: "A", Direction: repository.DirectionOut})
	require.NoError(t, err)
	assert.Len(t, out, 2)

	in, err := f.wf.List(ctx, repository.TransferFilter{DepartmentID: "A", Direction: repository.DirectionIn})
	require.NoError(t, err)
	assert.Empty(t, in)

	pending, err := f.wf.List(ctx, repository.TransferFilter{DepartmentID: "B", Status: entity.TransferPending})
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	_, err = f.wf.List(ctx, repository.TransferFilter{DepartmentID: "B", Direction: "lateral"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// lockRecorder registra el orden en que la aprobación bloquea filas del libro.
type lockRecorder struct {
	repository.LedgerRepository
	locked *[]string
}

func (r lockRecorder) GetForUpdate(ctx context.Context, id string) (*entity.LedgerRow, error) {
	row, err := r.LedgerRepository.GetForUpdate(ctx, id)
	if row != nil {
		*r.locked = append(*r.locked, row.Location().String())
	}
	return row, err
}

func (r lockRecorder) GetOrCreateForUpdate(ctx context.Context, row *entity.LedgerRow) (*entity.LedgerRow, error) {
	out, err := r.LedgerRepository.GetOrCreateForUpdate(ctx, row)
	if out != nil {
		*r.locked = append(*r.locked, out.Location().String())
	}
	return out, err
}

// recordingRunner envuelve el store en memoria y sustituye el repositorio del libro de cada transacción.
type recordingRunner struct {
	store  *memory.Store
	locked []string
}

func (r *recordingRunner) Run(ctx context.Context, fn func(ctx context.Context, repos inventory.Repos) error) error {
	return r.store.Run(ctx, func(ctx context.Context, repos inventory.Repos) error {
		repos.Ledger = lockRecorder{LedgerRepository: repos.Ledger, locked: &r.locked}
		return fn(ctx, repos)
	})
}

func TestApprove_TrasladosCruzadosBloqueanEnElMismoOrden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.PutLedgerRow(entity.LedgerRow{ID: "row-x-b", ItemID: "X", DepartmentID: "B", Quantity: 10, UnitPrice: decimal.NewFromInt(2000)})

	runner := &recordingRunner{store: f.store}
	wf := transfer.NewWorkflow(runner, f.store.Repos(), nil, zerolog.Nop())

	aToB, err := wf.Create(ctx, transfer.CreateInput{ActorID: "u-a", FromDepartmentID: "A", ToDepartmentID: "B",
		Lines: []transfer.LineInput{itemLine("X", "", "", 5)}})
	require.NoError(t, err)
	bToA, err := wf.Create(ctx, transfer.CreateInput{ActorID: "u-b", FromDepartmentID: "B", ToDepartmentID: "A",
		Lines: []transfer.LineInput{itemLine("X", "", "", 5)}})
	require.NoError(t, err)

	lockPrefix := func(transferID, approver string) []string {
		runner.locked = nil
		_, err := wf.Approve(ctx, transferID, approver, "u-"+approver)
		require.NoError(t, err)
		return runner.locked[:2]
	}

	// Ambas aprobaciones toman A antes que B, sin importar cuál es el origen.
	assert.Equal(t, []string{"A", "B"}, lockPrefix(aToB.ID, "B"))
	assert.Equal(t, []string{"A", "B"}, lockPrefix(bToA.ID, "A"))

	assert.Equal(t, int64(50), f.row(t, "X", entity.DepartmentLevel("A")).Quantity)
	assert.Equal(t, int64(10), f.row(t, "X", entity.DepartmentLevel("B")).Quantity)
}
