// Package rabbitmq publica los eventos del motor en un exchange topic (routing key = tipo de evento).
package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/jhoicas/inventario-traslados/internal/application/events"
)

var _ events.Publisher = (*Publisher)(nil)

// Channel subconjunto de *amqp.Channel que usa el publicador.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher publicador sobre un canal AMQP. Un canal no se comparte entre goroutines, de ahí el mutex.
type Publisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       Channel
	exchange string
	appID    string
}

// Dial conecta al broker y declara el exchange topic durable.
func Dial(url, exchange, appID string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq: conectar: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq: abrir canal: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq: declarar exchange %s: %w", exchange, err)
	}
	p := NewPublisher(ch, exchange, appID)
	p.conn = conn
	return p, nil
}

// NewPublisher construye el publicador sobre un canal ya abierto.
func NewPublisher(ch Channel, exchange, appID string) *Publisher {
	return &Publisher{ch: ch, exchange: exchange, appID: appID}
}

// Publish serializa el evento a JSON y lo publica como mensaje persistente.
func (p *Publisher) Publish(ctx context.Context, ev events.Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("rabbitmq: serializar %s: %w", ev.Type, err)
	}
	occurred := ev.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now()
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.Type + ":" + ev.AggregateID + ":" + occurred.UTC().Format(time.RFC3339Nano),
		Timestamp:    occurred,
		Type:         ev.Type,
		AppId:        p.appID,
		Body:         body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ch.PublishWithContext(ctx, p.exchange, ev.Type, false, false, msg); err != nil {
		return fmt.Errorf("rabbitmq: publicar %s: %w", ev.Type, err)
	}
	return nil
}

// Close cierra canal y conexión.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var err error
	if p.ch != nil {
		err = p.ch.Close()
	}
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
