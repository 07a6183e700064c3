package entity

// Location identifica una ubicación de inventario: un departamento y, opcionalmente,
// una de sus secciones. SectionID vacío significa "nivel departamento, sin sección".
type Location struct {
	DepartmentID string
	SectionID    string
}

// DepartmentLevel construye la ubicación a nivel departamento.
func DepartmentLevel(departmentID string) Location {
	return Location{DepartmentID: departmentID}
}

// InSection construye la ubicación de una sección del departamento.
func InSection(departmentID, sectionID string) Location {
	return Location{DepartmentID: departmentID, SectionID: sectionID}
}

// IsDepartmentLevel indica si la ubicación no está asignada a ninguna sección.
func (l Location) IsDepartmentLevel() bool { return l.SectionID == "" }

func (l Location) String() string {
	if l.SectionID == "" {
		return l.DepartmentID
	}
	return l.DepartmentID + "/" + l.SectionID
}
