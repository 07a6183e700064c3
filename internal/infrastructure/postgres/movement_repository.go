package postgres

import (
	"context"

	"github.com/jhoicas/inventario-traslados/internal/domain/entity"
	"github.com/jhoicas/inventario-traslados/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo log de movimientos (solo INSERT; un trigger rechaza UPDATE y DELETE).
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador.
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

func (r *MovementRepo) Create(ctx context.Context, m *entity.MovementRecord) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO movement_records
			(id, type, item_id, service_id, ledger_row_id, department_id, section_id,
			 counterpart_department_id, counterpart_section_id, quantity, reference, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		m.ID, m.Type, nullable(m.ItemID), nullable(m.ServiceID), nullable(m.LedgerRowID),
		m.DepartmentID, nullable(m.SectionID), nullable(m.CounterpartDepartmentID), nullable(m.CounterpartSectionID),
		m.Quantity, m.Reference, m.CreatedBy, m.CreatedAt)
	return classify("insert movement", err)
}

func (r *MovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.MovementRecord, error) {
	column, value := "reference", f.Reference
	switch {
	case f.Reference != "":
	case f.ItemID != "":
		column, value = "item_id", f.ItemID
	case f.ServiceID != "":
		column, value = "service_id", f.ServiceID
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.q.Query(ctx, `
		SELECT id, type, item_id, service_id, ledger_row_id, department_id, section_id,
		       counterpart_department_id, counterpart_section_id, quantity, reference, created_by, created_at
		FROM movement_records WHERE `+column+` = $1
		ORDER BY seq
		LIMIT $2 OFFSET $3`, value, limit, f.Offset)
	if err != nil {
		return nil, classify("list movements", err)
	}
	defer rows.Close()
	var out []*entity.MovementRecord
	for rows.Next() {
		var m entity.MovementRecord
		var itemID, serviceID, rowID, section, cpDept, cpSection *string
		if err := rows.Scan(&m.ID, &m.Type, &itemID, &serviceID, &rowID, &m.DepartmentID, &section,
			&cpDept, &cpSection, &m.Quantity, &m.Reference, &m.CreatedBy, &m.CreatedAt); err != nil {
			return nil, classify("scan movement", err)
		}
		m.ItemID, m.ServiceID, m.LedgerRowID = deref(itemID), deref(serviceID), deref(rowID)
		m.SectionID, m.CounterpartDepartmentID, m.CounterpartSectionID = deref(section), deref(cpDept), deref(cpSection)
		out = append(out, &m)
	}
	return out, classify("list movements", rows.Err())
}
