package postgres

import (
	"context"

	"github.com/jhoicas/inventario-traslados/internal/domain/entity"
	"github.com/jhoicas/inventario-traslados/internal/domain/repository"
)

var (
	_ repository.ItemRepository       = (*ItemRepo)(nil)
	_ repository.DepartmentRepository = (*DepartmentRepo)(nil)
)

// ItemRepo lectura del catálogo de ítems.
type ItemRepo struct {
	q Querier
}

// NewItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewItemRepository(q Querier) *ItemRepo {
	return &ItemRepo{q: q}
}

func (r *ItemRepo) GetByID(ctx context.Context, id string) (*entity.InventoryItem, error) {
	query := `
		SELECT id, name, category, total_quantity, unit_price, updated_at
		FROM inventory_items WHERE id = $1`
	var it entity.InventoryItem
	err := r.q.QueryRow(ctx, query, id).Scan(&it.ID, &it.Name, &it.Category, &it.TotalQuantity, &it.UnitPrice, &it.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, classify("get item", err)
	}
	return &it, nil
}

func (r *ItemRepo) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := r.q.Query(ctx, `SELECT id FROM inventory_items ORDER BY id`)
	if err != nil {
		return nil, classify("list items", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, classify("scan item", err)
		}
		ids = append(ids, id)
	}
	return ids, classify("list items", rows.Err())
}

// DepartmentRepo lectura de departamentos y secciones.
type DepartmentRepo struct {
	q Querier
}

// NewDepartmentRepository construye el adaptador.
func NewDepartmentRepository(q Querier) *DepartmentRepo {
	return &DepartmentRepo{q: q}
}

func (r *DepartmentRepo) GetDepartment(ctx context.Context, id string) (*entity.Department, error) {
	var d entity.Department
	err := r.q.QueryRow(ctx, `SELECT id, name, category, created_at FROM departments WHERE id = $1`, id).
		Scan(&d.ID, &d.Name, &d.Category, &d.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, classify("get department", err)
	}
	return &d, nil
}

func (r *DepartmentRepo) GetSection(ctx context.Context, id string) (*entity.Section, error) {
	var s entity.Section
	err := r.q.QueryRow(ctx, `SELECT id, department_id, name, created_at FROM sections WHERE id = $1`, id).
		Scan(&s.ID, &s.DepartmentID, &s.Name, &s.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, classify("get section", err)
	}
	return &s, nil
}

func (r *DepartmentRepo) ListDepartments(ctx context.Context) ([]*entity.Department, error) {
	rows, err := r.q.Query(ctx, `SELECT id, name, category, created_at FROM departments ORDER BY id`)
	if err != nil {
		return nil, classify("list departments", err)
	}
	defer rows.Close()
	var out []*entity.Department
	for rows.Next() {
		var d entity.Department
		if err := rows.Scan(&d.ID, &d.Name, &d.Category, &d.CreatedAt); err != nil {
			return nil, classify("scan department", err)
		}
		out = append(out, &d)
	}
	return out, classify("list departments", rows.Err())
}
