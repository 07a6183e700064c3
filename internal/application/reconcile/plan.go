package reconcile

import (
	"sort"

	"github.com/jhoicas/inventario-traslados/internal/domain/catalog"
	"github.com/jhoicas/inventario-traslados/internal/domain/entity"
)

// Step ajuste planeado sobre una fila. RowID vacío: la fila no existe y se crea en Location.
type Step struct {
	RowID    string
	Location entity.Location
	Delta    int64
}

// Plan resultado de comparar la cantidad maestra con lo distribuido.
type Plan struct {
	ItemID      string
	Master      int64
	Distributed int64
	Delta       int64 // Master - Distributed
	Steps       []Step
	Unresolved  int64 // faltante que ninguna fila pudo absorber
}

// NoOp indica que el ítem ya está conciliado.
func (p Plan) NoOp() bool { return p.Delta == 0 }

// Build calcula los ajustes para llevar las filas del ítem hacia TotalQuantity.
// Sobrante: se suma a la primera candidata (o a una fila nueva a nivel departamento).
// Faltante: se descuenta candidata por candidata respetando lo reservado.
// Orden de candidatas: departamentos de la misma categoría del ítem, luego por departamento y sección.
func Build(item *entity.InventoryItem, rows []*entity.LedgerRow, departments []*entity.Department) Plan {
	p := Plan{ItemID: item.ID, Master: item.TotalQuantity}
	for _, r := range rows {
		p.Distributed += r.Quantity
	}
	p.Delta = p.Master - p.Distributed
	if p.Delta == 0 {
		return p
	}

	matches := map[string]bool{}
	for _, d := range departments {
		matches[d.ID] = catalog.SameCategory(d.Category, item.Category)
	}
	candidates := append([]*entity.LedgerRow(nil), rows...)
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if matches[a.DepartmentID] != matches[b.DepartmentID] {
			return matches[a.DepartmentID]
		}
		if a.DepartmentID != b.DepartmentID {
			return a.DepartmentID < b.DepartmentID
		}
		return a.SectionID < b.SectionID
	})

	if p.Delta > 0 {
		if len(candidates) > 0 {
			c := candidates[0]
			p.Steps = append(p.Steps, Step{RowID: c.ID, Location: c.Location(), Delta: p.Delta})
			return p
		}
		if dep := homeDepartment(item, departments); dep != "" {
			p.Steps = append(p.Steps, Step{Location: entity.DepartmentLevel(dep), Delta: p.Delta})
			return p
		}
		p.Unresolved = p.Delta
		return p
	}

	remaining := -p.Delta
	for _, c := range candidates {
		if remaining == 0 {
			break
		}
		take := min(c.Available(), remaining)
		if take <= 0 {
			continue
		}
		p.Steps = append(p.Steps, Step{RowID: c.ID, Location: c.Location(), Delta: -take})
		remaining -= take
	}
	p.Unresolved = remaining
	return p
}

// homeDepartment primer departamento (por ID) de la categoría del ítem; si no hay, el primero.
func homeDepartment(item *entity.InventoryItem, departments []*entity.Department) string {
	deps := append([]*entity.Department(nil), departments...)
	sort.Slice(deps, func(i, j int) bool { return deps[i].ID < deps[j].ID })
	for _, d := range deps {
		if catalog.SameCategory(d.Category, item.Category) {
			return d.ID
		}
	}
	if len(deps) > 0 {
		return deps[0].ID
	}
	return ""
}
