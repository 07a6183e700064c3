package repository

import (
	"context"

	"github.com/jhoicas/inventario-traslados/internal/domain/entity"
)

// Dirección del listado de traslados respecto al departamento consultado.
const (
	DirectionIn  = "in"
	DirectionOut = "out"
	DirectionAll = "all"
)

// TransferFilter filtros para listar traslados.
type TransferFilter struct {
	DepartmentID string
	Direction    string // in, out, all
	Status       string // vacío = todos
	Limit        int
	Offset       int
}

// TransferRepository puerto de persistencia de solicitudes de traslado y sus líneas.
type TransferRepository interface {
	// Create persiste la solicitud y todas sus líneas.
	Create(ctx context.Context, transfer *entity.TransferRequest) error
	GetByID(ctx context.Context, id string) (*entity.TransferRequest, error)
	// GetForUpdate bloquea la solicitud; serializa aprobaciones concurrentes.
	GetForUpdate(ctx context.Context, id string) (*entity.TransferRequest, error)
	// UpdateStatus persiste status, processed_by, processed_at y updated_at.
	UpdateStatus(ctx context.Context, transfer *entity.TransferRequest) error
	List(ctx context.Context, filter TransferFilter) ([]*entity.TransferRequest, error)
}
