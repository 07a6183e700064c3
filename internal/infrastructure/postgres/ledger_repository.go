package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-traslados/internal/domain/entity"
	"github.com/jhoicas/inventario-traslados/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

const ledgerColumns = `id, item_id, department_id, section_id, quantity, reserved, unit_price, created_at, updated_at`

// LedgerRepo libro por ubicación sobre PostgreSQL (usable con pool o tx).
// section_id NULL = nivel departamento; la clave única usa NULLS NOT DISTINCT.
type LedgerRepo struct {
	q Querier
}

// NewLedgerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLedgerRepository(q Querier) *LedgerRepo {
	return &LedgerRepo{q: q}
}

func scanLedgerRow(row pgx.Row) (*entity.LedgerRow, error) {
	var r entity.LedgerRow
	var section *string
	if err := row.Scan(&r.ID, &r.ItemID, &r.DepartmentID, &section, &r.Quantity, &r.Reserved,
		&r.UnitPrice, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	r.SectionID = deref(section)
	return &r, nil
}

func (r *LedgerRepo) one(ctx context.Context, op, query string, args ...any) (*entity.LedgerRow, error) {
	row, err := scanLedgerRow(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, classify(op, err)
	}
	return row, nil
}

func (r *LedgerRepo) many(ctx context.Context, op, query string, args ...any) ([]*entity.LedgerRow, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, classify(op, err)
	}
	defer rows.Close()
	var out []*entity.LedgerRow
	for rows.Next() {
		row, err := scanLedgerRow(rows)
		if err != nil {
			return nil, classify(op, err)
		}
		out = append(out, row)
	}
	return out, classify(op, rows.Err())
}

func (r *LedgerRepo) GetByID(ctx context.Context, id string) (*entity.LedgerRow, error) {
	return r.one(ctx, "get ledger row", `SELECT `+ledgerColumns+` FROM ledger_rows WHERE id = $1`, id)
}

func (r *LedgerRepo) GetByKey(ctx context.Context, key entity.LedgerKey) (*entity.LedgerRow, error) {
	return r.one(ctx, "get ledger row by key", `
		SELECT `+ledgerColumns+` FROM ledger_rows
		WHERE item_id = $1 AND department_id = $2 AND section_id IS NOT DISTINCT FROM $3`,
		key.ItemID, key.Location.DepartmentID, nullable(key.Location.SectionID))
}

// GetForUpdate obtiene la fila y la bloquea (SELECT FOR UPDATE).
func (r *LedgerRepo) GetForUpdate(ctx context.Context, id string) (*entity.LedgerRow, error) {
	return r.one(ctx, "get ledger row for update",
		`SELECT `+ledgerColumns+` FROM ledger_rows WHERE id = $1 FOR UPDATE`, id)
}

// GetOrCreateForUpdate inserta la fila si la clave no existe (sin error si otra tx la creó antes)
// y devuelve la fila vigente bloqueada.
func (r *LedgerRepo) GetOrCreateForUpdate(ctx context.Context, row *entity.LedgerRow) (*entity.LedgerRow, error) {
	insert := `
		INSERT INTO ledger_rows (` + ledgerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT ON CONSTRAINT ledger_rows_location_key DO NOTHING`
	if _, err := r.q.Exec(ctx, insert, row.ID, row.ItemID, row.DepartmentID, nullable(row.SectionID),
		row.Quantity, row.Reserved, row.UnitPrice, row.CreatedAt, row.UpdatedAt); err != nil {
		return nil, classify("insert ledger row", err)
	}
	return r.one(ctx, "lock ledger row by key", `
		SELECT `+ledgerColumns+` FROM ledger_rows
		WHERE item_id = $1 AND department_id = $2 AND section_id IS NOT DISTINCT FROM $3
		FOR UPDATE`,
		row.ItemID, row.DepartmentID, nullable(row.SectionID))
}

func (r *LedgerRepo) Update(ctx context.Context, row *entity.LedgerRow) error {
	_, err := r.q.Exec(ctx, `
		UPDATE ledger_rows SET quantity = $2, reserved = $3, updated_at = $4 WHERE id = $1`,
		row.ID, row.Quantity, row.Reserved, row.UpdatedAt)
	return classify("update ledger row", err)
}

// LockByItem bloquea todas las filas del ítem en orden estable (evita interbloqueos entre corridas).
func (r *LedgerRepo) LockByItem(ctx context.Context, itemID string) ([]*entity.LedgerRow, error) {
	return r.many(ctx, "lock ledger rows by item", `
		SELECT `+ledgerColumns+` FROM ledger_rows WHERE item_id = $1
		ORDER BY department_id, section_id NULLS FIRST, id
		FOR UPDATE`, itemID)
}

func (r *LedgerRepo) ListByItem(ctx context.Context, itemID string) ([]*entity.LedgerRow, error) {
	return r.many(ctx, "list ledger rows by item", `
		SELECT `+ledgerColumns+` FROM ledger_rows WHERE item_id = $1
		ORDER BY department_id, section_id NULLS FIRST, id`, itemID)
}

func (r *LedgerRepo) ListByDepartment(ctx context.Context, departmentID string, limit, offset int) ([]*entity.LedgerRow, error) {
	return r.many(ctx, "list ledger rows by department", `
		SELECT `+ledgerColumns+` FROM ledger_rows WHERE department_id = $1
		ORDER BY item_id, section_id NULLS FIRST
		LIMIT $2 OFFSET $3`, departmentID, limit, offset)
}
