package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/inventario-traslados/internal/domain"
	"github.com/jhoicas/inventario-traslados/internal/domain/entity"
	"github.com/jhoicas/inventario-traslados/internal/domain/repository"
)

var (
	_ repository.ItemRepository       = (*ItemRepo)(nil)
	_ repository.DepartmentRepository = (*DepartmentRepo)(nil)
	_ repository.LedgerRepository     = (*LedgerRepo)(nil)
	_ repository.ServiceRepository    = (*ServiceRepo)(nil)
	_ repository.TransferRepository   = (*TransferRepo)(nil)
	_ repository.MovementRepository   = (*MovementRepo)(nil)
)

// ItemRepo catálogo en memoria.
type ItemRepo struct{ v *view }

func (r *ItemRepo) GetByID(_ context.Context, id string) (out *entity.InventoryItem, err error) {
	err = r.v.read(func(st *state) error {
		if it, ok := st.items[id]; ok {
			out = &it
		}
		return nil
	})
	return out, err
}

func (r *ItemRepo) ListIDs(_ context.Context) (out []string, err error) {
	err = r.v.read(func(st *state) error {
		for id := range st.items {
			out = append(out, id)
		}
		return nil
	})
	sort.Strings(out)
	return out, err
}

// DepartmentRepo departamentos y secciones en memoria.
type DepartmentRepo struct{ v *view }

func (r *DepartmentRepo) GetDepartment(_ context.Context, id string) (out *entity.Department, err error) {
	err = r.v.read(func(st *state) error {
		if d, ok := st.departments[id]; ok {
			out = &d
		}
		return nil
	})
	return out, err
}

func (r *DepartmentRepo) GetSection(_ context.Context, id string) (out *entity.Section, err error) {
	err = r.v.read(func(st *state) error {
		if s, ok := st.sections[id]; ok {
			out = &s
		}
		return nil
	})
	return out, err
}

func (r *DepartmentRepo) ListDepartments(_ context.Context) (out []*entity.Department, err error) {
	err = r.v.read(func(st *state) error {
		for _, d := range st.departments {
			d := d
			out = append(out, &d)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

// LedgerRepo libro en memoria. Los bloqueos son implícitos: la transacción ya tiene el mutex.
type LedgerRepo struct{ v *view }

func (r *LedgerRepo) GetByID(_ context.Context, id string) (out *entity.LedgerRow, err error) {
	err = r.v.read(func(st *state) error {
		if row, ok := st.ledger[id]; ok {
			out = &row
		}
		return nil
	})
	return out, err
}

func (r *LedgerRepo) GetByKey(_ context.Context, key entity.LedgerKey) (out *entity.LedgerRow, err error) {
	err = r.v.read(func(st *state) error {
		out = findByKey(st, key)
		return nil
	})
	return out, err
}

func (r *LedgerRepo) GetForUpdate(ctx context.Context, id string) (*entity.LedgerRow, error) {
	return r.GetByID(ctx, id)
}

func (r *LedgerRepo) GetOrCreateForUpdate(_ context.Context, row *entity.LedgerRow) (out *entity.LedgerRow, err error) {
	err = r.v.read(func(st *state) error {
		if existing := findByKey(st, row.Key()); existing != nil {
			out = existing
			return nil
		}
		st.ledger[row.ID] = *row
		cp := *row
		out = &cp
		return nil
	})
	return out, err
}

func (r *LedgerRepo) Update(_ context.Context, row *entity.LedgerRow) error {
	return r.v.read(func(st *state) error {
		cur, ok := st.ledger[row.ID]
		if !ok {
			return domain.ErrNotFound
		}
		cur.Quantity = row.Quantity
		cur.Reserved = row.Reserved
		cur.UpdatedAt = row.UpdatedAt
		st.ledger[row.ID] = cur
		return nil
	})
}

func (r *LedgerRepo) LockByItem(ctx context.Context, itemID string) ([]*entity.LedgerRow, error) {
	return r.ListByItem(ctx, itemID)
}

func (r *LedgerRepo) ListByItem(_ context.Context, itemID string) (out []*entity.LedgerRow, err error) {
	err = r.v.read(func(st *state) error {
		for _, row := range st.ledger {
			if row.ItemID == itemID {
				row := row
				out = append(out, &row)
			}
		}
		return nil
	})
	sortRows(out)
	return out, err
}

func (r *LedgerRepo) ListByDepartment(_ context.Context, departmentID string, limit, offset int) (out []*entity.LedgerRow, err error) {
	err = r.v.read(func(st *state) error {
		for _, row := range st.ledger {
			if row.DepartmentID == departmentID {
				row := row
				out = append(out, &row)
			}
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ItemID != out[j].ItemID {
			return out[i].ItemID < out[j].ItemID
		}
		return out[i].SectionID < out[j].SectionID
	})
	return page(out, limit, offset), err
}

func findByKey(st *state, key entity.LedgerKey) *entity.LedgerRow {
	for _, row := range st.ledger {
		if row.Key() == key {
			return &row
		}
	}
	return nil
}

// ServiceRepo registro de servicios en memoria.
type ServiceRepo struct{ v *view }

func (r *ServiceRepo) GetByID(_ context.Context, id string) (out *entity.ServiceOffering, err error) {
	err = r.v.read(func(st *state) error {
		if s, ok := st.services[id]; ok {
			out = &s
		}
		return nil
	})
	return out, err
}

func (r *ServiceRepo) GetForUpdate(ctx context.Context, id string) (*entity.ServiceOffering, error) {
	return r.GetByID(ctx, id)
}

func (r *ServiceRepo) UpdateLocation(_ context.Context, svc *entity.ServiceOffering) error {
	return r.v.read(func(st *state) error {
		cur, ok := st.services[svc.ID]
		if !ok {
			return domain.ErrNotFound
		}
		cur.DepartmentID = svc.DepartmentID
		cur.SectionID = svc.SectionID
		cur.UpdatedAt = svc.UpdatedAt
		st.services[svc.ID] = cur
		return nil
	})
}

func (r *ServiceRepo) ListByLocation(_ context.Context, loc entity.Location) (out []*entity.ServiceOffering, err error) {
	err = r.v.read(func(st *state) error {
		for _, s := range st.services {
			if s.Location() == loc {
				s := s
				out = append(out, &s)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

// TransferRepo traslados en memoria.
type TransferRepo struct{ v *view }

func (r *TransferRepo) Create(_ context.Context, t *entity.TransferRequest) error {
	return r.v.read(func(st *state) error {
		if _, ok := st.transfers[t.ID]; ok {
			return domain.ErrConflict
		}
		cp := *t
		cp.Lines = append([]entity.TransferLine(nil), t.Lines...)
		st.transfers[t.ID] = cp
		return nil
	})
}

func (r *TransferRepo) GetByID(_ context.Context, id string) (out *entity.TransferRequest, err error) {
	err = r.v.read(func(st *state) error {
		if t, ok := st.transfers[id]; ok {
			t.Lines = append([]entity.TransferLine(nil), t.Lines...)
			out = &t
		}
		return nil
	})
	return out, err
}

func (r *TransferRepo) GetForUpdate(ctx context.Context, id string) (*entity.TransferRequest, error) {
	return r.GetByID(ctx, id)
}

func (r *TransferRepo) UpdateStatus(_ context.Context, t *entity.TransferRequest) error {
	return r.v.read(func(st *state) error {
		cur, ok := st.transfers[t.ID]
		if !ok {
			return domain.ErrNotFound
		}
		cur.Status = t.Status
		cur.ProcessedBy = t.ProcessedBy
		cur.ProcessedAt = t.ProcessedAt
		cur.UpdatedAt = t.UpdatedAt
		st.transfers[t.ID] = cur
		return nil
	})
}

func (r *TransferRepo) List(_ context.Context, f repository.TransferFilter) (out []*entity.TransferRequest, err error) {
	err = r.v.read(func(st *state) error {
		for _, t := range st.transfers {
			if !matchesDirection(&t, f) || (f.Status != "" && t.Status != f.Status) {
				continue
			}
			t := t
			t.Lines = append([]entity.TransferLine(nil), t.Lines...)
			out = append(out, &t)
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return page(out, f.Limit, f.Offset), err
}

func matchesDirection(t *entity.TransferRequest, f repository.TransferFilter) bool {
	if f.DepartmentID == "" {
		return true
	}
	switch f.Direction {
	case repository.DirectionIn:
		return t.ToDepartmentID == f.DepartmentID
	case repository.DirectionOut:
		return t.FromDepartmentID == f.DepartmentID
	default:
		return t.Involves(f.DepartmentID)
	}
}

// MovementRepo log de movimientos en memoria (solo append).
type MovementRepo struct{ v *view }

func (r *MovementRepo) Create(_ context.Context, m *entity.MovementRecord) error {
	return r.v.read(func(st *state) error {
		st.movements = append(st.movements, *m)
		return nil
	})
}

func (r *MovementRepo) List(_ context.Context, f repository.MovementFilter) (out []*entity.MovementRecord, err error) {
	err = r.v.read(func(st *state) error {
		for _, m := range st.movements {
			if !matchesMovement(&m, f) {
				continue
			}
			m := m
			out = append(out, &m)
		}
		return nil
	})
	return page(out, f.Limit, f.Offset), err
}

func matchesMovement(m *entity.MovementRecord, f repository.MovementFilter) bool {
	switch {
	case f.Reference != "":
		return m.Reference == f.Reference
	case f.ItemID != "":
		return m.ItemID == f.ItemID
	case f.ServiceID != "":
		return m.ServiceID == f.ServiceID
	}
	return true
}
