package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-traslados/internal/domain/entity"
	"github.com/jhoicas/inventario-traslados/internal/domain/repository"
)

var _ repository.TransferRepository = (*TransferRepo)(nil)

const transferColumns = `id, from_department_id, to_department_id, status, created_by, processed_by, created_at, updated_at, processed_at`

// TransferRepo solicitudes de traslado (transfer_requests) y sus líneas (transfer_lines).
type TransferRepo struct {
	q Querier
}

// NewTransferRepository construye el adaptador.
func NewTransferRepository(q Querier) *TransferRepo {
	return &TransferRepo{q: q}
}

// Create inserta la cabecera y las líneas; debe correr dentro de la transacción del caso de uso.
func (r *TransferRepo) Create(ctx context.Context, t *entity.TransferRequest) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO transfer_requests (`+transferColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		t.ID, t.FromDepartmentID, t.ToDepartmentID, t.Status, t.CreatedBy, nullable(t.ProcessedBy),
		t.CreatedAt, t.UpdatedAt, t.ProcessedAt)
	if err != nil {
		return classify("insert transfer", err)
	}

	insertLine := `
		INSERT INTO transfer_lines
			(id, transfer_id, position, kind, item_id, source_row_id, service_id, from_section_id, to_section_id, quantity)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	for i, l := range t.Lines {
		var itemID, sourceRowID, serviceID, fromSection, toSection string
		var qty int64
		switch p := l.Payload.(type) {
		case entity.ItemLine:
			itemID, sourceRowID, qty = p.ItemID, p.SourceRowID, p.Quantity
			fromSection, toSection = p.FromSectionID, p.ToSectionID
		case entity.ServiceLine:
			serviceID = p.ServiceID
			fromSection, toSection = p.FromSectionID, p.ToSectionID
		default:
			return fmt.Errorf("insert transfer line %d: línea sin tipo", i+1)
		}
		if _, err := r.q.Exec(ctx, insertLine, l.ID, t.ID, i, l.Kind(), nullable(itemID), nullable(sourceRowID),
			nullable(serviceID), nullable(fromSection), nullable(toSection), qty); err != nil {
			return classify("insert transfer line", err)
		}
	}
	return nil
}

func scanTransfer(row pgx.Row) (*entity.TransferRequest, error) {
	var t entity.TransferRequest
	var processedBy *string
	if err := row.Scan(&t.ID, &t.FromDepartmentID, &t.ToDepartmentID, &t.Status, &t.CreatedBy, &processedBy,
		&t.CreatedAt, &t.UpdatedAt, &t.ProcessedAt); err != nil {
		return nil, err
	}
	t.ProcessedBy = deref(processedBy)
	return &t, nil
}

func (r *TransferRepo) get(ctx context.Context, op, query, id string) (*entity.TransferRequest, error) {
	t, err := scanTransfer(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, classify(op, err)
	}
	if err := r.loadLines(ctx, []*entity.TransferRequest{t}); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *TransferRepo) GetByID(ctx context.Context, id string) (*entity.TransferRequest, error) {
	return r.get(ctx, "get transfer", `SELECT `+transferColumns+` FROM transfer_requests WHERE id = $1`, id)
}

// GetForUpdate bloquea la cabecera: una segunda aprobación espera y luego ve el nuevo estado.
func (r *TransferRepo) GetForUpdate(ctx context.Context, id string) (*entity.TransferRequest, error) {
	return r.get(ctx, "get transfer for update",
		`SELECT `+transferColumns+` FROM transfer_requests WHERE id = $1 FOR UPDATE`, id)
}

func (r *TransferRepo) UpdateStatus(ctx context.Context, t *entity.TransferRequest) error {
	_, err := r.q.Exec(ctx, `
		UPDATE transfer_requests
		SET status = $2, processed_by = $3, processed_at = $4, updated_at = $5
		WHERE id = $1`,
		t.ID, t.Status, nullable(t.ProcessedBy), t.ProcessedAt, t.UpdatedAt)
	return classify("update transfer status", err)
}

func (r *TransferRepo) List(ctx context.Context, f repository.TransferFilter) ([]*entity.TransferRequest, error) {
	query := `SELECT ` + transferColumns + ` FROM transfer_requests WHERE `
	switch f.Direction {
	case repository.DirectionIn:
		query += `to_department_id = $1`
	case repository.DirectionOut:
		query += `from_department_id = $1`
	default:
		query += `(from_department_id = $1 OR to_department_id = $1)`
	}
	query += ` AND ($2 = '' OR status = $2) ORDER BY created_at DESC, id LIMIT $3 OFFSET $4`

	rows, err := r.q.Query(ctx, query, f.DepartmentID, f.Status, f.Limit, f.Offset)
	if err != nil {
		return nil, classify("list transfers", err)
	}
	var out []*entity.TransferRequest
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			rows.Close()
			return nil, classify("scan transfer", err)
		}
		out = append(out, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, classify("list transfers", err)
	}
	if err := r.loadLines(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// loadLines carga las líneas de varios traslados en una sola consulta.
func (r *TransferRepo) loadLines(ctx context.Context, transfers []*entity.TransferRequest) error {
	if len(transfers) == 0 {
		return nil
	}
	byID := make(map[string]*entity.TransferRequest, len(transfers))
	ids := make([]string, 0, len(transfers))
	for _, t := range transfers {
		byID[t.ID] = t
		ids = append(ids, t.ID)
	}

	rows, err := r.q.Query(ctx, `
		SELECT id, transfer_id, kind, item_id, source_row_id, service_id, from_section_id, to_section_id, quantity
		FROM transfer_lines WHERE transfer_id = ANY($1)
		ORDER BY transfer_id, position`, ids)
	if err != nil {
		return classify("list transfer lines", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id, transferID, kind string
		var itemID, sourceRowID, serviceID, fromSection, toSection *string
		var qty int64
		if err := rows.Scan(&id, &transferID, &kind, &itemID, &sourceRowID, &serviceID, &fromSection, &toSection, &qty); err != nil {
			return classify("scan transfer line", err)
		}
		line := entity.TransferLine{ID: id, TransferID: transferID}
		switch kind {
		case entity.LineKindItem:
			line.Payload = entity.ItemLine{
				ItemID: deref(itemID), SourceRowID: deref(sourceRowID),
				FromSectionID: deref(fromSection), ToSectionID: deref(toSection), Quantity: qty,
			}
		case entity.LineKindService:
			line.Payload = entity.ServiceLine{
				ServiceID: deref(serviceID), FromSectionID: deref(fromSection), ToSectionID: deref(toSection),
			}
		default:
			return fmt.Errorf("transfer line %s: tipo desconocido %q", id, kind)
		}
		if t := byID[transferID]; t != nil {
			t.Lines = append(t.Lines, line)
		}
	}
	return classify("list transfer lines", rows.Err())
}
