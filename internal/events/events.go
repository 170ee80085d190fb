// Package events announces completed ingestion batches to other services.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// RoutingKey is the topic used for completed uploads.
const RoutingKey = "upload.completed"

// UploadCompleted describes one finished ingestion batch.
type UploadCompleted struct {
	BatchID    string    `json:"batch_id"`
	UserID     int64     `json:"user_id"`
	Filename   string    `json:"filename"`
	FileType   string    `json:"file_type"`
	Total      int       `json:"total"`
	Processed  int       `json:"processed"`
	Failed     int       `json:"failed"`
	Status     string    `json:"status"`
	FinishedAt time.Time `json:"finished_at"`
}

// Publisher delivers batch events.
type Publisher interface {
	Publish(ctx context.Context, ev UploadCompleted) error
	Close() error
}

// Nop discards every event. It is used when no broker is configured.
type Nop struct{}

// Publish does nothing.
func (Nop) Publish(context.Context, UploadCompleted) error { return nil }

// Close does nothing.
func (Nop) Close() error { return nil }

// AMQPPublisher publishes events to a RabbitMQ topic exchange.
type AMQPPublisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

// NewAMQPPublisher dials url and declares a durable topic exchange.
func NewAMQPPublisher(url, exchange string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connecting to broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("opening channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declaring exchange %s: %w", exchange, err)
	}

	return &AMQPPublisher{conn: conn, channel: ch, exchange: exchange}, nil
}

// Publish sends ev as a persistent JSON message.
func (p *AMQPPublisher) Publish(ctx context.Context, ev UploadCompleted) error {
	body, err := Encode(ev)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.channel.PublishWithContext(ctx,
		p.exchange,
		RoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    ev.BatchID,
			Timestamp:    ev.FinishedAt,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publishing %s: %w", ev.BatchID, err)
	}
	return nil
}

// Close shuts down the channel and connection.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	chErr := p.channel.Close()
	connErr := p.conn.Close()
	if chErr != nil {
		return fmt.Errorf("closing channel: %w", chErr)
	}
	if connErr != nil {
		return fmt.Errorf("closing connection: %w", connErr)
	}
	return nil
}

// Encode renders ev as the JSON message body.
func Encode(ev UploadCompleted) ([]byte, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("encoding event: %w", err)
	}
	return body, nil
}
