package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/inventario-traslados/internal/application/inventory"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// DefaultTxTimeout tope de una transacción si no se configura otro.
const DefaultTxTimeout = 10 * time.Second

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL (READ COMMITTED + SELECT FOR UPDATE).
type TxRunner struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

// NewTxRunner construye el runner con el pool. timeout <= 0 usa DefaultTxTimeout.
func NewTxRunner(pool *pgxpool.Pool, timeout time.Duration) *TxRunner {
	if timeout <= 0 {
		timeout = DefaultTxTimeout
	}
	return &TxRunner{pool: pool, timeout: timeout}
}

// Run inicia una transacción con timeout, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Timeout, deadlock y fallos de serialización se devuelven como domain.ErrOperationFailed.
func (r *TxRunner) Run(ctx context.Context, fn func(ctx context.Context, repos inventory.Repos) error) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return classify("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	if err := fn(ctx, ReposFor(tx)); err != nil {
		return classify("transacción", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return classify("commit transaction", err)
	}
	return nil
}

// ReposFor construye los repositorios sobre un pool o una tx.
func ReposFor(q Querier) inventory.Repos {
	return inventory.Repos{
		Items:       NewItemRepository(q),
		Departments: NewDepartmentRepository(q),
		Ledger:      NewLedgerRepository(q),
		Services:    NewServiceRepository(q),
		Transfers:   NewTransferRepository(q),
		Movements:   NewMovementRepository(q),
	}
}
