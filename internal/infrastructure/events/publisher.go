package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"estate-marketplace/internal/application/listings"

	amqp "github.com/rabbitmq/amqp091-go"
)

// RoutingListingPublished is the routing key of listing.published events.
const RoutingListingPublished = "listing.published"

// DefaultExchange is used when no exchange name is configured.
const DefaultExchange = "marketplace.events"

// channel is the part of *amqp.Channel the publisher needs.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPPublisher publishes listing events to a topic exchange.
type AMQPPublisher struct {
	Exchange string

	conn *amqp.Connection
	ch   channel
}

// Dial connects to RabbitMQ and declares the exchange.
func Dial(url, exchange string) (*AMQPPublisher, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("events: dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("events: open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("events: declare exchange %q: %w", exchange, err)
	}
	return &AMQPPublisher{Exchange: exchange, conn: conn, ch: ch}, nil
}

// ListingPublished sends ev as a persistent JSON message.
func (p *AMQPPublisher) ListingPublished(ctx context.Context, ev listings.ListingPublishedEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         RoutingListingPublished,
		MessageId:    fmt.Sprintf("%s:%d", ev.ListingID, ev.PropertyID),
		Body:         body,
	}
	if err := p.ch.PublishWithContext(ctx, p.Exchange, RoutingListingPublished, false, false, msg); err != nil {
		return fmt.Errorf("events: publish %s: %w", RoutingListingPublished, err)
	}
	return nil
}

// Close releases the channel and connection.
func (p *AMQPPublisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// Noop drops every event. Used when RABBITMQ_URL is not set.
type Noop struct{}

func (Noop) ListingPublished(context.Context, listings.ListingPublishedEvent) error { return nil }

func (Noop) Close() error { return nil }
