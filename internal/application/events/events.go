// Package events define las notificaciones que el motor emite después de cada commit.
package events

import (
	"context"
	"sync"
	"time"
)

// Tipos de evento (se usan como routing key).
const (
	TransferCreated        = "transfer.created"
	TransferCompleted      = "transfer.completed"
	TransferRejected       = "transfer.rejected"
	RelocationCompleted    = "relocation.completed"
	ReconciliationAdjusted = "reconciliation.adjusted"
)

// Event notificación de un hecho ya confirmado en base de datos.
type Event struct {
	Type        string    `json:"type"`
	AggregateID string    `json:"aggregate_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Payload     any       `json:"payload,omitempty"`
}

// Publisher publica eventos. Un fallo de publicación nunca revierte la operación ya confirmada.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher descarta los eventos (mensajería no configurada).
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

// Recorder guarda los eventos en memoria; útil en pruebas.
type Recorder struct {
	mu     sync.Mutex
	Events []Event
}

func (r *Recorder) Publish(_ context.Context, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, event)
	return nil
}

// Types devuelve los tipos publicados en orden.
func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.Events))
	for _, e := range r.Events {
		out = append(out, e.Type)
	}
	return out
}
