package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/streadway/amqp"
)

const UpdatesExchange = "interview_updates"

const (
	EventSaved    = "record.saved"
	EventDeleted  = "record.deleted"
	EventAnalyzed = "record.analyzed"
	EventAnalysis = "record.analysis"
)

const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

type Update struct {
	RecordID  string    `json:"record_id"`
	Event     string    `json:"event"`
	Status    string    `json:"status,omitempty"`
	Message   string    `json:"message,omitempty"`
	UserID    string    `json:"user_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type Publisher interface {
	Publish(ctx context.Context, u Update) error
}

// RoutingKey is the topic a record's updates are published under.
func RoutingKey(recordID string) string {
	return fmt.Sprintf("record.%s", recordID)
}

type AMQPPublisher struct {
	open Opener
	now  func() time.Time
}

// NewAMQPPublisher declares the updates exchange and returns a publisher
// on it.
func NewAMQPPublisher(open Opener) (*AMQPPublisher, error) {
	ch, err := open()
	if err != nil {
		return nil, fmt.Errorf("error connecting to rabbitmq channel: %w", err)
	}
	defer ch.Close()
	if err := ch.ExchangeDeclare(
		UpdatesExchange, // name
		"topic",         // kind
		true,            // durable
		false,           // auto-delete
		false,           // internal
		false,           // no-wait
		nil,             // arguments
	); err != nil {
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}
	return &AMQPPublisher{open: open, now: time.Now}, nil
}

func (p *AMQPPublisher) Publish(_ context.Context, u Update) error {
	if u.Timestamp.IsZero() {
		u.Timestamp = p.now()
	}
	ch, err := p.open()
	if err != nil {
		return err
	}
	defer ch.Close()

	body, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return ch.Publish(
		UpdatesExchange, // exchange
		RoutingKey(u.RecordID),
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

// NopPublisher drops every update. It stands in when RabbitMQ is not
// configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Update) error { return nil }
