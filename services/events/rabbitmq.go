package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"ambulink/models"
	"ambulink/utils"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// ExchangeName is the topic exchange booking events are published on.
const ExchangeName = "ambulink.events"

// RoutingKey returns the routing key used for an event name.
func RoutingKey(eventName string) string {
	return "booking." + eventName
}

// RabbitPublisher forwards events to a RabbitMQ topic exchange.
type RabbitPublisher struct {
	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewRabbitPublisher dials url and declares the exchange.
func NewRabbitPublisher(url string) (*RabbitPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq: dial failed: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("rabbitmq: open channel failed: %w", err)
	}
	if err := ch.ExchangeDeclare(ExchangeName, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("rabbitmq: declare exchange failed: %w", err)
	}
	utils.GetLogger().Info("rabbitmq publisher ready", zap.String("exchange", ExchangeName))
	return &RabbitPublisher{conn: conn, ch: ch}, nil
}

// Publish sends the event as a persistent JSON message.
func (p *RabbitPublisher) Publish(ctx context.Context, event models.Event) error {
	body, err := json.Marshal(envelope(event))
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil || p.conn.IsClosed() || p.ch == nil || p.ch.IsClosed() {
		return errors.New("rabbitmq: connection is not open")
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return p.ch.PublishWithContext(ctx, ExchangeName, RoutingKey(event.Name), false, false,
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Timestamp:    event.At,
			Body:         body,
		})
}

// Close releases the channel and connection.
func (p *RabbitPublisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

// message is the wire form of an event on the bus.
type message struct {
	Event   string      `json:"event"`
	Scope   string      `json:"scope"`
	At      time.Time   `json:"at"`
	Payload interface{} `json:"data"`
}

func envelope(event models.Event) message {
	at := event.At
	if at.IsZero() {
		at = time.Now()
	}
	return message{Event: event.Name, Scope: event.Scope(), At: at, Payload: event.Payload}
}
