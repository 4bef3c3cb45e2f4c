package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

const DefaultExchange = "order_events"

type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type ChannelOpener interface {
	Channel() (Channel, error)
	Close() error
}

type amqpConnection struct {
	mu   sync.RWMutex
	conn *amqp.Connection
}

func DialRabbitMQ(url string) (ChannelOpener, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	return &amqpConnection{conn: conn}, nil
}

func (c *amqpConnection) Channel() (Channel, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.conn.IsClosed() {
		return nil, fmt.Errorf("connection is closed")
	}
	ch, err := c.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	return ch, nil
}

func (c *amqpConnection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil && !c.conn.IsClosed() {
		return c.conn.Close()
	}
	return nil
}

// RabbitMQPublisher mengirim event ke fanout exchange, setiap consumer
// (email worker, dashboard, dll) bind queue sendiri.
type RabbitMQPublisher struct {
	conn     ChannelOpener
	exchange string
}

func NewRabbitMQPublisher(conn ChannelOpener, exchange string) *RabbitMQPublisher {
	if exchange == "" {
		exchange = DefaultExchange
	}
	return &RabbitMQPublisher{conn: conn, exchange: exchange}
}

func (p *RabbitMQPublisher) Publish(ctx context.Context, evt OrderEvent) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(p.exchange, "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = ch.PublishWithContext(ctx, p.exchange, evt.Type, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Type:         evt.Type,
		MessageId:    fmt.Sprintf("%s-%d-%s", evt.Code, evt.OccurredAt.UnixNano(), evt.ToStatus),
		Timestamp:    evt.OccurredAt,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", evt.Type, err)
	}
	return nil
}

func (p *RabbitMQPublisher) Close() error {
	return p.conn.Close()
}
