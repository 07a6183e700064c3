package entity

import "time"

// Department unidad organizacional dueña de inventario. Category se usa en la
// conciliación para preferir departamentos afines a la categoría del ítem.
type Department struct {
	ID        string
	Name      string
	Category  string
	CreatedAt time.Time
}

// Section subdivisión de un departamento (ej. una zona de la bodega, una mesa, un carril).
type Section struct {
	ID           string
	DepartmentID string
	Name         string
	CreatedAt    time.Time
}
