// Package memory implementa los repositorios sobre memoria con semántica transaccional:
// cada transacción trabaja sobre una copia del estado que solo reemplaza al original en el commit.
// Las transacciones se serializan con un único mutex (equivale a bloquear todas las filas).
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jhoicas/inventario-traslados/internal/application/inventory"
	"github.com/jhoicas/inventario-traslados/internal/domain"
	"github.com/jhoicas/inventario-traslados/internal/domain/entity"
)

var _ inventory.TxRunner = (*Store)(nil)

type state struct {
	items       map[string]entity.InventoryItem
	departments map[string]entity.Department
	sections    map[string]entity.Section
	ledger      map[string]entity.LedgerRow
	services    map[string]entity.ServiceOffering
	transfers   map[string]entity.TransferRequest
	movements   []entity.MovementRecord
}

func newState() *state {
	return &state{
		items:       map[string]entity.InventoryItem{},
		departments: map[string]entity.Department{},
		sections:    map[string]entity.Section{},
		ledger:      map[string]entity.LedgerRow{},
		services:    map[string]entity.ServiceOffering{},
		transfers:   map[string]entity.TransferRequest{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.items {
		c.items[k] = v
	}
	for k, v := range s.departments {
		c.departments[k] = v
	}
	for k, v := range s.sections {
		c.sections[k] = v
	}
	for k, v := range s.ledger {
		c.ledger[k] = v
	}
	for k, v := range s.services {
		c.services[k] = v
	}
	for k, v := range s.transfers {
		v.Lines = append([]entity.TransferLine(nil), v.Lines...)
		c.transfers[k] = v
	}
	c.movements = append([]entity.MovementRecord(nil), s.movements...)
	return c
}

// Store estado en memoria compartido por repositorios y transacciones.
type Store struct {
	mu sync.Mutex
	st *state
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{st: newState()}
}

// Run ejecuta fn sobre una copia del estado; la copia reemplaza al estado solo si fn no falla.
func (s *Store) Run(ctx context.Context, fn func(ctx context.Context, repos inventory.Repos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrOperationFailed, err)
	}
	tx := s.st.clone()
	if err := fn(ctx, reposFor(&view{tx: tx})); err != nil {
		return err
	}
	// Un contexto vencido durante fn equivale a un timeout de la transacción: rollback.
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrOperationFailed, err)
	}
	s.st = tx
	return nil
}

// Repos devuelve repositorios fuera de transacción: cada llamada toma el mutex.
func (s *Store) Repos() inventory.Repos {
	return reposFor(&view{store: s})
}

// view resuelve el estado a usar: el de la transacción o el del store bajo mutex.
type view struct {
	store *Store
	tx    *state
}

func (v *view) read(fn func(st *state) error) error {
	if v.tx != nil {
		return fn(v.tx)
	}
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	return fn(v.store.st)
}

func reposFor(v *view) inventory.Repos {
	return inventory.Repos{
		Items:       &ItemRepo{v: v},
		Departments: &DepartmentRepo{v: v},
		Ledger:      &LedgerRepo{v: v},
		Services:    &ServiceRepo{v: v},
		Transfers:   &TransferRepo{v: v},
		Movements:   &MovementRepo{v: v},
	}
}

// ── Carga de datos (seed) ─────────────────────────────────────────────────────

// PutItem registra o reemplaza un ítem del catálogo.
func (s *Store) PutItem(item entity.InventoryItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.items[item.ID] = item
}

// PutDepartment registra un departamento.
func (s *Store) PutDepartment(dep entity.Department) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.departments[dep.ID] = dep
}

// PutSection registra una sección.
func (s *Store) PutSection(sec entity.Section) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.sections[sec.ID] = sec
}

// PutLedgerRow registra o reemplaza una fila del libro.
func (s *Store) PutLedgerRow(row entity.LedgerRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.ledger[row.ID] = row
}

// PutService registra o reemplaza un servicio.
func (s *Store) PutService(svc entity.ServiceOffering) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.services[svc.ID] = svc
}

// Movements devuelve una copia del log de movimientos.
func (s *Store) Movements() []entity.MovementRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.MovementRecord(nil), s.st.movements...)
}

// SumByItem suma las cantidades distribuidas de un ítem.
func (s *Store) SumByItem(itemID string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var sum int64
	for _, r := range s.st.ledger {
		if r.ItemID == itemID {
			sum += r.Quantity
		}
	}
	return sum
}

// RowCount cantidad de filas del libro.
func (s *Store) RowCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.st.ledger)
}

func sortRows(rows []*entity.LedgerRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].DepartmentID != rows[j].DepartmentID {
			return rows[i].DepartmentID < rows[j].DepartmentID
		}
		if rows[i].SectionID != rows[j].SectionID {
			return rows[i].SectionID < rows[j].SectionID
		}
		return rows[i].ID < rows[j].ID
	})
}

func page[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return []T{}
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
