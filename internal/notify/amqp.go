// Package notify publishes the "curation pending" notification the
// pipeline orchestrator emits whenever a run enters a WAIT_* stage
// (spec §4.1). It is grounded directly on queue/rabbit.go's
// RabbitMQService: connection/channel lifecycle, a durable queue
// declare, and JSON-body publish, narrowed from an injectable
// FlowProcessMessage to Minerva's CurationPendingNotification.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/streadway/amqp"

	"github.com/alexelgier/minerva/internal/model"
)

// CurationPendingNotification is the message body published whenever a
// run parks at a human gate.
type CurationPendingNotification struct {
	RunUUID   string      `json:"run_uuid"`
	Stage     model.Stage `json:"stage"`
	EmittedAt time.Time   `json:"emitted_at"`
}

// Publisher publishes curation-pending notifications. Its method shape
// matches orchestrator.Notifier exactly so an *AMQPPublisher can be
// wired in as the orchestrator's Notifier without an adapter.
type Publisher interface {
	NotifyCurationPending(ctx context.Context, runUUID string, stage model.Stage) error
	Close() error
}

// AMQPPublisher is the production Publisher backed by a durable RabbitMQ
// queue, same connection/channel/queue-declare shape as
// queue/rabbit.go's RabbitMQService.
type AMQPPublisher struct {
	connection *amqp.Connection
	channel    *amqp.Channel
	queueName  string
	now        func() time.Time
}

// NewAMQPPublisher dials url, opens a channel, and declares queueName as
// durable.
func NewAMQPPublisher(url, queueName string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("notify: dial amqp: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("notify: open channel: %w", err)
	}

	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("notify: declare queue: %w", err)
	}

	return &AMQPPublisher{connection: conn, channel: ch, queueName: queueName, now: time.Now}, nil
}

// NotifyCurationPending publishes a CurationPendingNotification to the
// configured queue.
func (p *AMQPPublisher) NotifyCurationPending(ctx context.Context, runUUID string, stage model.Stage) error {
	now := p.now
	if now == nil {
		now = time.Now
	}
	body, err := json.Marshal(CurationPendingNotification{
		RunUUID:   runUUID,
		Stage:     stage,
		EmittedAt: now(),
	})
	if err != nil {
		return fmt.Errorf("notify: marshal notification: %w", err)
	}

	err = p.channel.Publish("", p.queueName, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
	if err != nil {
		return fmt.Errorf("notify: publish: %w", err)
	}
	return nil
}

// Close releases the channel and connection.
func (p *AMQPPublisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.connection != nil {
		p.connection.Close()
	}
	return nil
}
