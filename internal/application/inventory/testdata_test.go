package inventory_test

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-traslados/internal/domain/entity"
	"github.com/jhoicas/inventario-traslados/internal/infrastructure/memory"
)

// seedStore: departamento A con secciones s1 y s2, departamento B con sección b1.
// Ítem X con 30 unidades en A/s1; servicio S en A/s1.
func seedStore() *memory.Store {
	store := memory.NewStore()
	store.PutDepartment(entity.Department{ID: "A", Name: "Recreación", Category: "Juegos"})
	store.PutDepartment(entity.Department{ID: "B", Name: "Piscina", Category: "Deportes"})
	store.PutSection(entity.Section{ID: "s1", DepartmentID: "A", Name: "Salón 1"})
	store.PutSection(entity.Section{ID: "s2", DepartmentID: "A", Name: "Salón 2"})
	store.PutSection(entity.Section{ID: "b1", DepartmentID: "B", Name: "Carril 1"})
	store.PutItem(entity.InventoryItem{ID: "X", Name: "Taco de billar", TotalQuantity: 30, UnitPrice: decimal.NewFromInt(45000)})
	store.PutLedgerRow(entity.LedgerRow{ID: "x-s1", ItemID: "X", DepartmentID: "A", SectionID: "s1",
		Quantity: 30, UnitPrice: decimal.NewFromInt(40000)})
	store.PutService(entity.ServiceOffering{ID: "S", Name: "Mesa de billar", PricingModel: entity.PricingPerTime,
		Price: decimal.NewFromInt(15000), DepartmentID: "A", SectionID: "s1"})
	return store
}
