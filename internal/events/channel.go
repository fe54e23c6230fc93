// Package events publishes record updates and queues analysis jobs on
// RabbitMQ.
package events

import (
	"github.com/streadway/amqp"
)

// Channel is the part of *amqp.Channel used for publishing.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Opener opens a fresh channel. One channel is used per publish, so an
// Opener is safe to share between goroutines.
type Opener func() (Channel, error)

func ConnOpener(conn *amqp.Connection) Opener {
	return func() (Channel, error) {
		return conn.Channel()
	}
}
