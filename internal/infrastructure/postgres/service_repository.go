package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-traslados/internal/domain/entity"
	"github.com/jhoicas/inventario-traslados/internal/domain/repository"
)

var _ repository.ServiceRepository = (*ServiceRepo)(nil)

const serviceColumns = `id, name, pricing_model, price, department_id, section_id, updated_at`

// ServiceRepo registro de servicios; la PK garantiza una sola ubicación por servicio.
type ServiceRepo struct {
	q Querier
}

// NewServiceRepository construye el adaptador.
func NewServiceRepository(q Querier) *ServiceRepo {
	return &ServiceRepo{q: q}
}

func scanService(row pgx.Row) (*entity.ServiceOffering, error) {
	var s entity.ServiceOffering
	var section *string
	if err := row.Scan(&s.ID, &s.Name, &s.PricingModel, &s.Price, &s.DepartmentID, &section, &s.UpdatedAt); err != nil {
		return nil, err
	}
	s.SectionID = deref(section)
	return &s, nil
}

func (r *ServiceRepo) get(ctx context.Context, op, query, id string) (*entity.ServiceOffering, error) {
	s, err := scanService(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, classify(op, err)
	}
	return s, nil
}

func (r *ServiceRepo) GetByID(ctx context.Context, id string) (*entity.ServiceOffering, error) {
	return r.get(ctx, "get service", `SELECT `+serviceColumns+` FROM service_offerings WHERE id = $1`, id)
}

func (r *ServiceRepo) GetForUpdate(ctx context.Context, id string) (*entity.ServiceOffering, error) {
	return r.get(ctx, "get service for update",
		`SELECT `+serviceColumns+` FROM service_offerings WHERE id = $1 FOR UPDATE`, id)
}

func (r *ServiceRepo) UpdateLocation(ctx context.Context, s *entity.ServiceOffering) error {
	_, err := r.q.Exec(ctx, `
		UPDATE service_offerings SET department_id = $2, section_id = $3, updated_at = $4 WHERE id = $1`,
		s.ID, s.DepartmentID, nullable(s.SectionID), s.UpdatedAt)
	return classify("update service location", err)
}

func (r *ServiceRepo) ListByLocation(ctx context.Context, loc entity.Location) ([]*entity.ServiceOffering, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+serviceColumns+` FROM service_offerings
		WHERE department_id = $1 AND section_id IS NOT DISTINCT FROM $2
		ORDER BY id`, loc.DepartmentID, nullable(loc.SectionID))
	if err != nil {
		return nil, classify("list services", err)
	}
	defer rows.Close()
	var out []*entity.ServiceOffering
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, classify("scan service", err)
		}
		out = append(out, s)
	}
	return out, classify("list services", rows.Err())
}
