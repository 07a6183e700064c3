//go:build integration

package postgres_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jhoicas/inventario-traslados/internal/application/events"
	"github.com/jhoicas/inventario-traslados/internal/application/inventory"
	"github.com/jhoicas/inventario-traslados/internal/application/reconcile"
	"github.com/jhoicas/inventario-traslados/internal/application/transfer"
	"github.com/jhoicas/inventario-traslados/internal/domain"
	"github.com/jhoicas/inventario-traslados/internal/domain/entity"
	"github.com/jhoicas/inventario-traslados/internal/domain/repository"
	"github.com/jhoicas/inventario-traslados/internal/infrastructure/postgres"
	"github.com/jhoicas/inventario-traslados/pkg/config"
)

func setupDatabase(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("traslados"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, container.Terminate(ctx)) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, postgres.Migrate(dsn, "up", zerolog.Nop()))
	require.NoError(t, postgres.Migrate(dsn, "up", zerolog.Nop()), "sin cambios pendientes no es error")

	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: dsn, MaxConns: 10})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `
		INSERT INTO departments (id, name, category) VALUES ('A', 'Bodega', 'Bebidas'), ('B', 'Bar', 'Bebidas');
		INSERT INTO sections (id, department_id, name) VALUES ('a1', 'A', 'Estante'), ('b1', 'B', 'Barra');
		INSERT INTO inventory_items (id, name, category, total_quantity, unit_price)
			VALUES ('X', 'Gaseosa', 'Bebidas', 50, 2500), ('Y', 'Jugo', 'Bebidas', 100, 3000);
		INSERT INTO ledger_rows (id, item_id, department_id, section_id, quantity, unit_price)
			VALUES ('x-a', 'X', 'A', NULL, 50, 2000), ('y-a', 'Y', 'A', 'a1', 90, 3000);
		INSERT INTO service_offerings (id, name, pricing_model, price, department_id, section_id)
			VALUES ('S', 'Mesa de billar', 'per_time', 12000, 'A', 'a1');`)
	require.NoError(t, err)
	return pool
}

func TestIntegration_TrasladoCompletoYConcurrencia(t *testing.T) {
	pool := setupDatabase(t)
	ctx := context.Background()
	runner := postgres.NewTxRunner(pool, 5*time.Second)
	repos := postgres.ReposFor(pool)
	wf := transfer.NewWorkflow(runner, repos, events.NopPublisher{}, zerolog.Nop())

	tr, err := wf.Create(ctx, transfer.CreateInput{
		ActorID: "u-a", FromDepartmentID: "A", ToDepartmentID: "B",
		Lines: []transfer.LineInput{
			{Kind: entity.LineKindItem, ItemID: "X", Quantity: 20},
			{Kind: entity.LineKindService, ServiceID: "S", FromSectionID: "a1", ToSectionID: "b1"},
		},
	})
	require.NoError(t, err)

	loaded, err := wf.Get(ctx, tr.ID, "B")
	require.NoError(t, err)
	require.Len(t, loaded.Lines, 2)
	assert.IsType(t, entity.ItemLine{}, loaded.Lines[0].Payload)
	assert.IsType(t, entity.ServiceLine{}, loaded.Lines[1].Payload)

	const callers = 5
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = wf.Approve(ctx, tr.ID, "B", "u-b")
		}(i)
	}
	wg.Wait()
	var ok int
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrAlreadyProcessed)
	}
	assert.Equal(t, 1, ok)

	src, err := repos.Ledger.GetByID(ctx, "x-a")
	require.NoError(t, err)
	assert.Equal(t, int64(30), src.Quantity)
	dst, err := repos.Ledger.GetByKey(ctx, entity.LedgerKey{ItemID: "X", Location: entity.DepartmentLevel("B")})
	require.NoError(t, err)
	require.NotNil(t, dst)
	assert.Equal(t, int64(20), dst.Quantity)
	assert.True(t, decimal.NewFromInt(2000).Equal(dst.UnitPrice))

	svc, err := repos.Services.GetByID(ctx, "S")
	require.NoError(t, err)
	assert.Equal(t, entity.InSection("B", "b1"), svc.Location())

	movs, err := repos.Movements.List(ctx, repository.MovementFilter{Reference: tr.ID})
	require.NoError(t, err)
	assert.Len(t, movs, 4)
	for _, m := range movs {
		if m.ItemID == "X" {
			assert.Equal(t, int64(20), m.Quantity, "transfer-out y transfer-in registran la cantidad movida")
		}
	}

	_, err = pool.Exec(ctx, `INSERT INTO movement_records (id, type, item_id, department_id, quantity, reference, created_by)
		VALUES ('neg', 'transfer-out', 'X', 'A', -1, 'r', 'u')`)
	assert.Error(t, err, "solo reconciliation-adjust admite cantidades negativas")

	_, err = pool.Exec(ctx, `DELETE FROM movement_records`)
	assert.Error(t, err, "el log es de solo inserción")
}

func TestIntegration_GetOrCreateSeccionNula(t *testing.T) {
	pool := setupDatabase(t)
	ctx := context.Background()
	runner := postgres.NewTxRunner(pool, 0)

	var first, second string
	err := runner.Run(ctx, func(ctx context.Context, repos inventory.Repos) error {
		ls := inventory.NewLedgerStore(repos.Ledger)
		a, err := ls.GetOrCreate(ctx, "X", entity.DepartmentLevel("B"), decimal.NewFromInt(1))
		if err != nil {
			return err
		}
		b, err := ls.GetOrCreate(ctx, "X", entity.DepartmentLevel("B"), decimal.NewFromInt(2))
		if err != nil {
			return err
		}
		first, second = a.ID, b.ID
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, first, second, "NULLS NOT DISTINCT: una sola fila a nivel departamento")
}

func TestIntegration_InsuficienteRevierte(t *testing.T) {
	pool := setupDatabase(t)
	ctx := context.Background()
	runner := postgres.NewTxRunner(pool, 0)

	err := runner.Run(ctx, func(ctx context.Context, repos inventory.Repos) error {
		ls := inventory.NewLedgerStore(repos.Ledger)
		if _, err := ls.IncrementAt(ctx, "X", entity.DepartmentLevel("B"), 5, decimal.Zero); err != nil {
			return err
		}
		_, err := ls.Decrement(ctx, "x-a", 51)
		return err
	})
	require.ErrorIs(t, err, domain.ErrInsufficientQuantity)

	row, err := postgres.ReposFor(pool).Ledger.GetByKey(ctx, entity.LedgerKey{ItemID: "X", Location: entity.DepartmentLevel("B")})
	require.NoError(t, err)
	assert.Nil(t, row)
}

func TestIntegration_Timeout(t *testing.T) {
	pool := setupDatabase(t)
	runner := postgres.NewTxRunner(pool, 50*time.Millisecond)

	err := runner.Run(context.Background(), func(ctx context.Context, repos inventory.Repos) error {
		_, err := pool.Exec(ctx, `SELECT pg_sleep(1)`)
		return err
	})
	assert.ErrorIs(t, err, domain.ErrOperationFailed)
}

func TestIntegration_Conciliacion(t *testing.T) {
	pool := setupDatabase(t)
	ctx := context.Background()
	repos := postgres.ReposFor(pool)
	r := reconcile.NewReconciler(postgres.NewTxRunner(pool, 0), repos, nil, zerolog.Nop(),
		reconcile.Config{MaxRetries: 1, InitialInterval: time.Millisecond})

	report, err := r.Run(ctx, reconcile.Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Adjusted)
	require.Len(t, report.Adjustments, 1)
	assert.Equal(t, "y-a", report.Adjustments[0].LedgerRowID)
	assert.Equal(t, int64(10), report.Adjustments[0].Delta)

	again, err := r.Run(ctx, reconcile.Options{})
	require.NoError(t, err)
	assert.Zero(t, again.Adjusted)
	assert.Equal(t, 2, again.Skipped)
}

func TestIntegration_TrasladosCruzadosSinInterbloqueo(t *testing.T) {
	pool := setupDatabase(t)
	ctx := context.Background()
	_, err := pool.Exec(ctx, `UPDATE ledger_rows SET quantity = 30 WHERE id = 'x-a';
		INSERT INTO ledger_rows (id, item_id, department_id, section_id, quantity, unit_price)
			VALUES ('x-b', 'X', 'B', NULL, 20, 2000);`)
	require.NoError(t, err)

	wf := transfer.NewWorkflow(postgres.NewTxRunner(pool, 5*time.Second), postgres.ReposFor(pool), events.NopPublisher{}, zerolog.Nop())
	create := func(from, to string) string {
		tr, err := wf.Create(ctx, transfer.CreateInput{ActorID: "u-" + from, FromDepartmentID: from, ToDepartmentID: to,
			Lines: []transfer.LineInput{{Kind: entity.LineKindItem, ItemID: "X", Quantity: 1}}})
		require.NoError(t, err)
		return tr.ID
	}

	// A→B y B→A del mismo ítem aprobados a la vez: ambos bloquean x-a antes que x-b.
	for round := 0; round < 20; round++ {
		aToB, bToA := create("A", "B"), create("B", "A")
		var wg sync.WaitGroup
		errs := make([]error, 2)
		wg.Add(2)
		go func() { defer wg.Done(); _, errs[0] = wf.Approve(ctx, aToB, "B", "u-b") }()
		go func() { defer wg.Done(); _, errs[1] = wf.Approve(ctx, bToA, "A", "u-a") }()
		wg.Wait()
		require.NoError(t, errs[0], "ronda %d", round)
		require.NoError(t, errs[1], "ronda %d", round)
	}

	repos := postgres.ReposFor(pool)
	a, err := repos.Ledger.GetByID(ctx, "x-a")
	require.NoError(t, err)
	b, err := repos.Ledger.GetByID(ctx, "x-b")
	require.NoError(t, err)
	assert.Equal(t, int64(30), a.Quantity)
	assert.Equal(t, int64(20), b.Quantity)
}
